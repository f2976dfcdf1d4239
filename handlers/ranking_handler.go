package handlers

import (
	"net/http"

	"github.com/arenastack/ranking-engine/middleware"
	"github.com/arenastack/ranking-engine/services"
)

type RankingHandler struct {
	recomputeService services.RecomputeService
	queryService     services.RankingQueryService
}

func NewRankingHandler(
	recomputeService services.RecomputeService,
	queryService services.RankingQueryService,
) *RankingHandler {
	return &RankingHandler{
		recomputeService: recomputeService,
		queryService:     queryService,
	}
}

// CalculateRankings recomputes the tournament leaderboard from scratch.
// The acting user comes from the JWT; the service decides whether that
// user may recompute this tournament.
func (h *RankingHandler) CalculateRankings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	rankings, err := h.recomputeService.RecomputeRankings(r.Context(), tournamentID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"rankings": rankings,
		"count":    len(rankings),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRankings returns the current leaderboard. Public: no auth.
func (h *RankingHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.queryService.GetTournamentRankings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
