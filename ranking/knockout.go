package ranking

import (
	"fmt"
	"sort"

	"github.com/arenastack/ranking-engine/models"
)

// Knockout derives ranks from bracket position rather than accumulated
// points: the final's winner is rank 1, its loser rank 2, and losers of
// earlier rounds follow grouped by the round they were eliminated in
// (later round ranks higher). Within the semifinal losers a third-place
// playoff result decides ranks 3 and 4 when one was played; without a
// playoff, and within all earlier rounds, participants order by id
// ascending. Points accumulate as 3 per match won.
type Knockout struct{}

func NewKnockout() Strategy {
	return &Knockout{}
}

func (s *Knockout) Name() string {
	return "knockout"
}

func (s *Knockout) Calculate(input CalculationInput) ([]Row, error) {
	matches := collectMatches(input.Sessions)
	if len(matches) == 0 {
		return nil, ErrNoCompletedResults
	}

	var bracket []models.MatchResult
	var playoff *models.MatchResult
	for i, match := range matches {
		if match.WinnerID == nil {
			return nil, fmt.Errorf("%w: knockout match between %d and %d has no winner",
				ErrMissingResults, match.P1ID, match.P2ID)
		}
		if match.ThirdPlacePlayoff {
			if playoff != nil {
				return nil, fmt.Errorf("%w: more than one third-place playoff", ErrMissingResults)
			}
			playoff = &matches[i]
			continue
		}
		bracket = append(bracket, match)
	}
	if len(bracket) == 0 {
		return nil, fmt.Errorf("%w: no bracket matches", ErrMissingResults)
	}

	// Round numbering is taken as-is from the ingested results; brackets
	// may start at 0 or 1.
	finalRound := bracket[0].Round
	firstRound := bracket[0].Round
	for _, match := range bracket {
		if match.Round > finalRound {
			finalRound = match.Round
		}
		if match.Round < firstRound {
			firstRound = match.Round
		}
	}
	var finals []models.MatchResult
	for _, match := range bracket {
		if match.Round == finalRound {
			finals = append(finals, match)
		}
	}
	if len(finals) != 1 {
		return nil, fmt.Errorf("%w: expected a single final, found %d matches in round %d",
			ErrMissingResults, len(finals), finalRound)
	}
	final := finals[0]

	tallies := make(map[int]*tally)
	for _, match := range matches {
		applyMatch(tallies, match)
	}
	if len(tallies) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	// Each participant loses at most once in the bracket; record where.
	eliminatedAt := make(map[int]int)
	for _, match := range bracket {
		eliminatedAt[matchLoser(match)] = match.Round
	}

	order := []int{*final.WinnerID, matchLoser(final)}
	placed := map[int]bool{order[0]: true, order[1]: true}

	for round := finalRound - 1; round >= firstRound; round-- {
		var losers []int
		for participantID, lostIn := range eliminatedAt {
			if lostIn == round && !placed[participantID] {
				losers = append(losers, participantID)
			}
		}
		if round == finalRound-1 && playoff != nil {
			ordered, err := orderByPlayoff(losers, playoff)
			if err != nil {
				return nil, err
			}
			losers = ordered
		} else {
			sort.Ints(losers)
		}
		for _, participantID := range losers {
			placed[participantID] = true
			order = append(order, participantID)
		}
	}

	// Every participant that played must have been placed exactly once;
	// a gap means the bracket structure is inconsistent.
	if len(order) != len(tallies) {
		return nil, fmt.Errorf("%w: placed %d of %d bracket participants",
			ErrMissingResults, len(order), len(tallies))
	}

	types := participantTypes(input)
	rows := make([]Row, len(order))
	for i, participantID := range order {
		t := tallies[participantID]
		rows[i] = Row{
			ParticipantID:   participantID,
			ParticipantType: typeOf(types, participantID),
			Rank:            i + 1,
			Points:          t.points,
			Wins:            t.wins,
			Losses:          t.losses,
			Draws:           t.draws,
			GoalsFor:        t.goalsFor,
			GoalsAgainst:    t.goalsAgainst,
		}
	}
	return rows, nil
}

func matchLoser(match models.MatchResult) int {
	if *match.WinnerID == match.P1ID {
		return match.P2ID
	}
	return match.P1ID
}

// orderByPlayoff places the playoff winner before its loser among the
// semifinal losers. Both playoff participants must actually have lost a
// semifinal; anything else is inconsistent input.
func orderByPlayoff(losers []int, playoff *models.MatchResult) ([]int, error) {
	isLoser := make(map[int]bool, len(losers))
	for _, participantID := range losers {
		isLoser[participantID] = true
	}
	if !isLoser[playoff.P1ID] || !isLoser[playoff.P2ID] {
		return nil, fmt.Errorf("%w: third-place playoff participants %d and %d must both be semifinal losers",
			ErrMissingResults, playoff.P1ID, playoff.P2ID)
	}

	ordered := []int{*playoff.WinnerID, matchLoser(*playoff)}
	var rest []int
	for _, participantID := range losers {
		if participantID != ordered[0] && participantID != ordered[1] {
			rest = append(rest, participantID)
		}
	}
	sort.Ints(rest)
	return append(ordered, rest...), nil
}
