package ranking

import (
	"errors"

	"github.com/arenastack/ranking-engine/models"
)

var (
	// ErrUnknownStrategy means no ranking algorithm is registered for a
	// (format, type code) pair. This is a configuration error and is
	// never silently defaulted to another strategy.
	ErrUnknownStrategy = errors.New("no ranking strategy for tournament configuration")

	// ErrNoCompletedResults means the selected sessions carry no raw
	// results at all.
	ErrNoCompletedResults = errors.New("no completed results to rank")

	// ErrNotEnoughParticipants means fewer than two participants have
	// any recorded result.
	ErrNotEnoughParticipants = errors.New("not enough participants with results")

	// ErrMissingResults means a session or phase expected to contribute
	// an outcome has none.
	ErrMissingResults = errors.New("required results are missing")
)

// Row is one computed leaderboard entry. Ranks are 1-based, contiguous
// and unique; every tie-break chain ends in participant id so two rows
// can never share a rank.
type Row struct {
	ParticipantID   int
	ParticipantType models.ParticipantType
	Rank            int
	Points          float64
	Wins            int
	Losses          int
	Draws           int
	GoalsFor        int
	GoalsAgainst    int
}

// CalculationInput is everything a strategy may consume. Strategies are
// pure functions over this value: no I/O, no shared state.
type CalculationInput struct {
	Sessions     []*models.CompletedSession
	Participants []*models.Participant
	Direction    models.RankingDirection
}

type Strategy interface {
	Calculate(input CalculationInput) ([]Row, error)
	Name() string
}

// participantTypes indexes enrolled participants so rows carry the right
// type in the composite uniqueness key. Unknown ids default to
// individual.
func participantTypes(input CalculationInput) map[int]models.ParticipantType {
	types := make(map[int]models.ParticipantType, len(input.Participants))
	for _, p := range input.Participants {
		types[p.ID] = p.Type()
	}
	return types
}

func typeOf(types map[int]models.ParticipantType, participantID int) models.ParticipantType {
	if t, ok := types[participantID]; ok {
		return t
	}
	return models.ParticipantIndividual
}
