package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenastack/ranking-engine/models"
)

func matchWon(winner, loser, winnerScore, loserScore, round int) models.MatchResult {
	return models.MatchResult{
		P1ID:     winner,
		P2ID:     loser,
		P1Score:  winnerScore,
		P2Score:  loserScore,
		WinnerID: &winner,
		Round:    round,
	}
}

func matchDrawn(p1, p2, score, round int) models.MatchResult {
	return models.MatchResult{
		P1ID:    p1,
		P2ID:    p2,
		P1Score: score,
		P2Score: score,
		Round:   round,
	}
}

func sessionWithMatches(id int, phase *models.SessionPhase, matches ...models.MatchResult) *models.CompletedSession {
	return &models.CompletedSession{
		ID:           id,
		TournamentID: 1,
		Phase:        phase,
		Status:       models.SessionCompleted,
		Results:      models.SessionResults{Matches: matches},
	}
}

func TestLeagueFullRoundRobin(t *testing.T) {
	// Four participants: 1 wins all, 2 wins two, 3 wins one, 4 none.
	input := CalculationInput{
		Sessions: []*models.CompletedSession{
			sessionWithMatches(1, nil,
				matchWon(1, 2, 2, 0, 1),
				matchWon(1, 3, 3, 1, 1),
				matchWon(1, 4, 1, 0, 1),
				matchWon(2, 3, 2, 1, 1),
				matchWon(2, 4, 2, 0, 1),
				matchWon(3, 4, 1, 0, 1),
			),
		},
	}

	rows, err := NewLeague().Calculate(input)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	wantOrder := []int{1, 2, 3, 4}
	wantPoints := []float64{9, 6, 3, 0}
	for i, row := range rows {
		assert.Equal(t, wantOrder[i], row.ParticipantID)
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, wantPoints[i], row.Points)
	}
	assert.Equal(t, 3, rows[0].Wins)
	assert.Equal(t, 0, rows[0].Losses)
	assert.Equal(t, 3, rows[3].Losses)
}

func TestLeagueRankContiguity(t *testing.T) {
	input := CalculationInput{
		Sessions: []*models.CompletedSession{
			sessionWithMatches(1, nil,
				matchDrawn(5, 6, 1, 1),
				matchDrawn(6, 7, 0, 1),
				matchDrawn(5, 7, 2, 1),
			),
		},
	}

	rows, err := NewLeague().Calculate(input)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
		assert.False(t, seen[row.Rank])
		seen[row.Rank] = true
	}
}

func TestLeagueTieBreakChain(t *testing.T) {
	// 1 and 2 finish on equal points; 1 has the better goal difference.
	input := CalculationInput{
		Sessions: []*models.CompletedSession{
			sessionWithMatches(1, nil,
				matchWon(1, 3, 4, 0, 1),
				matchWon(2, 3, 1, 0, 1),
				matchDrawn(1, 2, 1, 1),
			),
		},
	}

	rows, err := NewLeague().Calculate(input)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].ParticipantID, rows[1].ParticipantID, rows[2].ParticipantID})
	assert.Equal(t, rows[0].Points, rows[1].Points)
	assert.Greater(t, rows[0].GoalsFor-rows[0].GoalsAgainst, rows[1].GoalsFor-rows[1].GoalsAgainst)
}

func TestLeagueIdenticalRecordsBreakByParticipantID(t *testing.T) {
	// Two drawn legs: every column identical, id decides.
	input := CalculationInput{
		Sessions: []*models.CompletedSession{
			sessionWithMatches(1, nil,
				matchDrawn(9, 4, 1, 1),
				matchDrawn(4, 9, 1, 1),
			),
		},
	}

	rows, err := NewLeague().Calculate(input)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].ParticipantID)
	assert.Equal(t, 9, rows[1].ParticipantID)
}

func TestLeagueFailsWithoutResults(t *testing.T) {
	_, err := NewLeague().Calculate(CalculationInput{
		Sessions: []*models.CompletedSession{sessionWithMatches(1, nil)},
	})
	assert.ErrorIs(t, err, ErrNoCompletedResults)
}

func TestLeagueParticipantTypesFromEnrollment(t *testing.T) {
	teamID := 77
	input := CalculationInput{
		Sessions: []*models.CompletedSession{
			sessionWithMatches(1, nil, matchWon(1, 2, 1, 0, 1)),
		},
		Participants: []*models.Participant{
			{ID: 1, TeamID: &teamID},
			{ID: 2},
		},
	}

	rows, err := NewLeague().Calculate(input)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantTeam, rows[0].ParticipantType)
	assert.Equal(t, models.ParticipantIndividual, rows[1].ParticipantType)
}
