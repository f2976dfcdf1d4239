package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenastack/ranking-engine/handlers"
	"github.com/arenastack/ranking-engine/models"
	"github.com/arenastack/ranking-engine/services"
)

const testSecret = "test-secret"

type stubRecomputeService struct {
	calls int
}

func (s *stubRecomputeService) RecomputeRankings(ctx context.Context, tournamentID, actorID int) ([]*models.Ranking, error) {
	s.calls++
	return []*models.Ranking{}, nil
}

type stubQueryService struct{}

func (s *stubQueryService) GetTournamentRankings(ctx context.Context, tournamentID int) (*services.TournamentRankingsView, error) {
	return &services.TournamentRankingsView{TournamentID: tournamentID}, nil
}

func newRouter(recompute services.RecomputeService) http.Handler {
	router := chi.NewRouter()
	rankingHandler := handlers.NewRankingHandler(recompute, &stubQueryService{})
	SetupRoutes(router, nil, testSecret, rankingHandler, nil)
	return router
}

func signedToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": float64(42),
		"role":    role,
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestRecomputeRouteRoleFilter(t *testing.T) {
	tests := []struct {
		role       string
		wantStatus int
		wantCalls  int
	}{
		{"organizer", http.StatusOK, 1},
		{"admin", http.StatusOK, 1},
		{"player", http.StatusForbidden, 0},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			recompute := &stubRecomputeService{}
			router := newRouter(recompute)

			req := httptest.NewRequest(http.MethodPost, "/tournaments/1/calculate-rankings", nil)
			req.Header.Set("Authorization", signedToken(t, tt.role))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalls, recompute.calls)
		})
	}
}

func TestRecomputeRouteRequiresToken(t *testing.T) {
	recompute := &stubRecomputeService{}
	router := newRouter(recompute)

	req := httptest.NewRequest(http.MethodPost, "/tournaments/1/calculate-rankings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, recompute.calls)
}

func TestRankingsRouteIsPublic(t *testing.T) {
	router := newRouter(&stubRecomputeService{})

	req := httptest.NewRequest(http.MethodGet, "/tournaments/1/rankings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
