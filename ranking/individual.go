package ranking

import (
	"sort"

	"github.com/arenastack/ranking-engine/models"
)

// IndividualAggregator ranks participants of measured-value tournaments.
// Each participant's values across all scored rounds reduce to one final
// value: the value of their last round, with round keys ordered
// lexicographically ascending (the deciding round wins; zero-pad numeric
// keys upstream). Sorting follows the tournament's ranking direction:
// ascending for lower-is-better metrics such as elapsed time, descending
// for higher-is-better ones such as distance. Exactly equal final values
// break by participant id ascending. A participant with no recorded
// value in any round is excluded from the leaderboard entirely.
type IndividualAggregator struct{}

func NewIndividualAggregator() Strategy {
	return &IndividualAggregator{}
}

func (s *IndividualAggregator) Name() string {
	return "individual"
}

type aggregate struct {
	participantID int
	finalValue    float64
	lastRound     string
}

func (s *IndividualAggregator) Calculate(input CalculationInput) ([]Row, error) {
	aggregates := make(map[int]*aggregate)
	for _, session := range input.Sessions {
		roundKeys := make([]string, 0, len(session.Results.Rounds))
		for key := range session.Results.Rounds {
			roundKeys = append(roundKeys, key)
		}
		sort.Strings(roundKeys)

		for _, key := range roundKeys {
			for participantID, value := range session.Results.Rounds[key] {
				agg, ok := aggregates[participantID]
				if !ok {
					agg = &aggregate{participantID: participantID}
					aggregates[participantID] = agg
				}
				if agg.lastRound == "" || key >= agg.lastRound {
					agg.lastRound = key
					agg.finalValue = value
				}
			}
		}
	}
	if len(aggregates) == 0 {
		return nil, ErrNoCompletedResults
	}
	if len(aggregates) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	ordered := make([]*aggregate, 0, len(aggregates))
	for _, agg := range aggregates {
		ordered = append(ordered, agg)
	}
	ascending := input.Direction != models.DirectionDesc
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.finalValue != b.finalValue {
			if ascending {
				return a.finalValue < b.finalValue
			}
			return a.finalValue > b.finalValue
		}
		return a.participantID < b.participantID
	})

	types := participantTypes(input)
	rows := make([]Row, len(ordered))
	for i, agg := range ordered {
		rows[i] = Row{
			ParticipantID:   agg.participantID,
			ParticipantType: typeOf(types, agg.participantID),
			Rank:            i + 1,
			Points:          agg.finalValue,
		}
	}
	return rows, nil
}
