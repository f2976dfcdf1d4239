package ranking

import (
	"fmt"

	"github.com/arenastack/ranking-engine/models"
)

// GroupKnockout consumes two session phases. Group-stage sessions must
// form a complete round-robin; they seed the bracket but final rank is
// computed purely from the knockout phase. Participants eliminated at
// the group stage rank strictly below every bracket participant, ordered
// among themselves by their group points table.
type GroupKnockout struct {
	knockout *Knockout
}

func NewGroupKnockout() Strategy {
	return &GroupKnockout{knockout: &Knockout{}}
}

func (s *GroupKnockout) Name() string {
	return "group_knockout"
}

func (s *GroupKnockout) Calculate(input CalculationInput) ([]Row, error) {
	var groupSessions, knockoutSessions []*models.CompletedSession
	for _, session := range input.Sessions {
		if session.Phase == nil {
			return nil, fmt.Errorf("%w: session %d has no phase in a group+knockout tournament",
				ErrMissingResults, session.ID)
		}
		switch *session.Phase {
		case models.PhaseGroupStage:
			groupSessions = append(groupSessions, session)
		case models.PhaseKnockout:
			knockoutSessions = append(knockoutSessions, session)
		default:
			return nil, fmt.Errorf("%w: session %d has unknown phase %q",
				ErrMissingResults, session.ID, *session.Phase)
		}
	}

	groupMatches := collectMatches(groupSessions)
	if len(groupMatches) == 0 {
		return nil, fmt.Errorf("%w: no group stage results", ErrMissingResults)
	}
	if len(collectMatches(knockoutSessions)) == 0 {
		return nil, fmt.Errorf("%w: no knockout phase results", ErrMissingResults)
	}

	groupTallies := make(map[int]*tally)
	for _, match := range groupMatches {
		applyMatch(groupTallies, match)
	}
	if len(groupTallies) < 2 {
		return nil, ErrNotEnoughParticipants
	}
	if err := verifyRoundRobinComplete(groupTallies, groupMatches); err != nil {
		return nil, err
	}

	bracketRows, err := s.knockout.Calculate(CalculationInput{
		Sessions:     knockoutSessions,
		Participants: input.Participants,
	})
	if err != nil {
		return nil, err
	}

	// Whole-tournament tallies: group results plus bracket results.
	combined := make(map[int]*tally)
	for _, match := range groupMatches {
		applyMatch(combined, match)
	}
	for _, match := range collectMatches(knockoutSessions) {
		applyMatch(combined, match)
	}

	inBracket := make(map[int]bool, len(bracketRows))
	rows := make([]Row, 0, len(combined))
	for _, row := range bracketRows {
		inBracket[row.ParticipantID] = true
		t := combined[row.ParticipantID]
		row.Points = t.points
		row.Wins = t.wins
		row.Losses = t.losses
		row.Draws = t.draws
		row.GoalsFor = t.goalsFor
		row.GoalsAgainst = t.goalsAgainst
		rows = append(rows, row)
	}

	// Group-stage casualties follow the bracket, ordered by their group
	// standing.
	eliminated := make(map[int]*tally)
	for participantID, t := range groupTallies {
		if !inBracket[participantID] {
			eliminated[participantID] = t
		}
	}
	for _, row := range rankTallies(eliminated, participantTypes(input)) {
		row.Rank = len(rows) + 1
		rows = append(rows, row)
	}
	return rows, nil
}

// verifyRoundRobinComplete checks that every pair of group participants
// has met at least once before the bracket result is accepted.
func verifyRoundRobinComplete(tallies map[int]*tally, matches []models.MatchResult) error {
	met := make(map[[2]int]bool, len(matches))
	for _, match := range matches {
		met[pairKey(match.P1ID, match.P2ID)] = true
	}

	participants := make([]int, 0, len(tallies))
	for participantID := range tallies {
		participants = append(participants, participantID)
	}
	missing := 0
	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			if !met[pairKey(participants[i], participants[j])] {
				missing++
			}
		}
	}
	if missing > 0 {
		return fmt.Errorf("%w: group stage round-robin incomplete, %d pairings unplayed",
			ErrMissingResults, missing)
	}
	return nil
}

func pairKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}
