package routes

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arenastack/ranking-engine/handlers"
	"github.com/arenastack/ranking-engine/middleware"
	"github.com/arenastack/ranking-engine/models"
)

// SetupRoutes mounts the ranking API. Reads are public, the recompute
// endpoint requires an authenticated organizer or admin; per-tournament
// ownership is enforced in the service layer.
func SetupRoutes(
	router *chi.Mux,
	dbConn *sql.DB,
	jwtSecret string,
	rankingHandler *handlers.RankingHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/rankings", rankingHandler.GetRankings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			// Coarse role filter; per-tournament ownership is checked in
			// the recompute service.
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
			r.Post("/calculate-rankings", rankingHandler.CalculateRankings)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
