package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenastack/ranking-engine/models"
	"github.com/arenastack/ranking-engine/ranking"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func won(winner, loser, winnerScore, loserScore int) models.MatchResult {
	return models.MatchResult{
		P1ID:     winner,
		P2ID:     loser,
		P1Score:  winnerScore,
		P2Score:  loserScore,
		WinnerID: &winner,
		Round:    1,
	}
}

func leagueTypeCode() *models.TournamentTypeCode {
	code := models.TypeLeague
	return &code
}

type finalizerFixture struct {
	service     FinalizerService
	tournaments *fakeTournamentRepo
	store       *fakeRankingStore
}

func newFinalizerFixture(status models.TournamentStatus) *finalizerFixture {
	tournaments := &fakeTournamentRepo{tournaments: map[int]*models.Tournament{
		1: {ID: 1, Name: "Spring League", Format: models.FormatHeadToHead, TypeCode: leagueTypeCode(), OrganizerID: 50, Status: status},
	}}
	sessions := &fakeSessionRepo{sessions: []*models.CompletedSession{
		{
			ID: 10, TournamentID: 1, Status: models.SessionCompleted,
			Results: models.SessionResults{Matches: []models.MatchResult{
				won(1, 2, 2, 0),
				won(1, 3, 1, 0),
				won(2, 3, 3, 1),
			}},
		},
		{ID: 11, TournamentID: 1, Status: models.SessionScheduled},
		{ID: 12, TournamentID: 2, Status: models.SessionCompleted},
	}}
	participants := &fakeParticipantRepo{participants: []*models.Participant{
		{ID: 1, TournamentID: 1}, {ID: 2, TournamentID: 1}, {ID: 3, TournamentID: 1},
	}}
	store := &fakeRankingStore{}

	service := NewFinalizerService(&fakeTxManager{}, tournaments, sessions, participants, store, nil, testLogger())
	return &finalizerFixture{service: service, tournaments: tournaments, store: store}
}

func TestFinalizeSessionWritesRankings(t *testing.T) {
	fx := newFinalizerFixture(models.StatusCompleted)

	count, err := fx.service.FinalizeSession(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	rows, err := fx.store.ListByTournament(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
	}
	assert.Equal(t, 1, rows[0].ParticipantID)
	assert.Equal(t, float64(6), rows[0].Points)

	assert.Equal(t, models.StatusResultsAvailable, fx.tournaments.tournaments[1].Status)
}

func TestFinalizeSessionRunsOncePerTournament(t *testing.T) {
	fx := newFinalizerFixture(models.StatusActive)

	_, err := fx.service.FinalizeSession(context.Background(), 1, 10)
	require.NoError(t, err)
	before, err := fx.store.ListByTournament(context.Background(), nil, 1)
	require.NoError(t, err)

	_, err = fx.service.FinalizeSession(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrTournamentAlreadyFinalized)

	after, err := fx.store.ListByTournament(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFinalizeSessionValidation(t *testing.T) {
	tests := []struct {
		name         string
		tournamentID int
		sessionID    int
		wantErr      error
	}{
		{"unknown tournament", 99, 10, ErrTournamentNotFound},
		{"unknown session", 1, 99, ErrSessionNotFound},
		{"session of another tournament", 1, 12, ErrSessionTournamentMismatch},
		{"session not completed", 1, 11, ErrSessionNotCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFinalizerFixture(models.StatusCompleted)
			_, err := fx.service.FinalizeSession(context.Background(), tt.tournamentID, tt.sessionID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFinalizeSessionRejectsLifecycleStates(t *testing.T) {
	fx := newFinalizerFixture(models.StatusRegistration)
	_, err := fx.service.FinalizeSession(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrTournamentNotFinalizable)

	fx = newFinalizerFixture(models.StatusResultsAvailable)
	_, err = fx.service.FinalizeSession(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrTournamentAlreadyFinalized)
}

func TestFinalizeSessionFailsClosedOnUnknownStrategy(t *testing.T) {
	fx := newFinalizerFixture(models.StatusCompleted)
	swiss := models.TournamentTypeCode("swiss")
	fx.tournaments.tournaments[1].TypeCode = &swiss

	_, err := fx.service.FinalizeSession(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ranking.ErrUnknownStrategy)

	rows, _ := fx.store.ListByTournament(context.Background(), nil, 1)
	assert.Empty(t, rows)
}

func TestFinalizeSessionSurfacesConstraintViolation(t *testing.T) {
	fx := newFinalizerFixture(models.StatusCompleted)
	fx.store.createErr = errFakeDuplicate()

	_, err := fx.service.FinalizeSession(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrRankingConstraintViolation)
}
