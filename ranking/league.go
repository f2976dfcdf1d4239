package ranking

import (
	"sort"

	"github.com/arenastack/ranking-engine/models"
)

const (
	pointsPerWin  = 3
	pointsPerDraw = 1
)

// League ranks participants by an accumulated points table: 3 points per
// win, 1 per draw. Ties break by goal difference, then goals for, then
// participant id ascending.
type League struct{}

func NewLeague() Strategy {
	return &League{}
}

func (s *League) Name() string {
	return "league"
}

type tally struct {
	participantID int
	points        float64
	wins          int
	losses        int
	draws         int
	goalsFor      int
	goalsAgainst  int
}

// applyMatch folds one match outcome into both participants' tallies.
func applyMatch(tallies map[int]*tally, match models.MatchResult) {
	p1 := getTally(tallies, match.P1ID)
	p2 := getTally(tallies, match.P2ID)

	p1.goalsFor += match.P1Score
	p1.goalsAgainst += match.P2Score
	p2.goalsFor += match.P2Score
	p2.goalsAgainst += match.P1Score

	switch {
	case match.WinnerID == nil:
		p1.draws++
		p2.draws++
		p1.points += pointsPerDraw
		p2.points += pointsPerDraw
	case *match.WinnerID == match.P1ID:
		p1.wins++
		p2.losses++
		p1.points += pointsPerWin
	default:
		p2.wins++
		p1.losses++
		p2.points += pointsPerWin
	}
}

func getTally(tallies map[int]*tally, participantID int) *tally {
	t, ok := tallies[participantID]
	if !ok {
		t = &tally{participantID: participantID}
		tallies[participantID] = t
	}
	return t
}

func collectMatches(sessions []*models.CompletedSession) []models.MatchResult {
	var matches []models.MatchResult
	for _, session := range sessions {
		matches = append(matches, session.Results.Matches...)
	}
	return matches
}

func (s *League) Calculate(input CalculationInput) ([]Row, error) {
	matches := collectMatches(input.Sessions)
	if len(matches) == 0 {
		return nil, ErrNoCompletedResults
	}

	tallies := make(map[int]*tally)
	for _, match := range matches {
		applyMatch(tallies, match)
	}
	if len(tallies) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	return rankTallies(tallies, participantTypes(input)), nil
}

// rankTallies sorts a points table into ranked rows. The sort order is
// the league tie-break chain; participant id last keeps it total.
func rankTallies(tallies map[int]*tally, types map[int]models.ParticipantType) []Row {
	ordered := make([]*tally, 0, len(tallies))
	for _, t := range tallies {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.points != b.points {
			return a.points > b.points
		}
		diffA := a.goalsFor - a.goalsAgainst
		diffB := b.goalsFor - b.goalsAgainst
		if diffA != diffB {
			return diffA > diffB
		}
		if a.goalsFor != b.goalsFor {
			return a.goalsFor > b.goalsFor
		}
		return a.participantID < b.participantID
	})

	rows := make([]Row, len(ordered))
	for i, t := range ordered {
		rows[i] = Row{
			ParticipantID:   t.participantID,
			ParticipantType: typeOf(types, t.participantID),
			Rank:            i + 1,
			Points:          t.points,
			Wins:            t.wins,
			Losses:          t.losses,
			Draws:           t.draws,
			GoalsFor:        t.goalsFor,
			GoalsAgainst:    t.goalsAgainst,
		}
	}
	return rows
}
