package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/arenastack/ranking-engine/config"
	"github.com/arenastack/ranking-engine/db"
	"github.com/arenastack/ranking-engine/handlers"
	"github.com/arenastack/ranking-engine/live"
	"github.com/arenastack/ranking-engine/repositories"
	api "github.com/arenastack/ranking-engine/routes"
	"github.com/arenastack/ranking-engine/services"
	"github.com/arenastack/ranking-engine/storage"
)

const finalizationInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Snapshot archiving is optional: without R2 credentials recomputes
	// simply skip the archive step.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 credentials not configured, ranking snapshots disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	txManager := repositories.NewTxManager(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	rewardRepo := repositories.NewPostgresRewardRepository(dbConn)
	logger.Info("repositories initialized")

	finalizerService := services.NewFinalizerService(
		txManager,
		tournamentRepo,
		sessionRepo,
		participantRepo,
		rankingRepo,
		wsHub,
		logger,
	)
	recomputeService := services.NewRecomputeService(
		txManager,
		tournamentRepo,
		sessionRepo,
		participantRepo,
		rankingRepo,
		userRepo,
		uploader,
		wsHub,
		logger,
	)
	queryService := services.NewRankingQueryService(
		tournamentRepo,
		rankingRepo,
		participantRepo,
		rewardRepo,
		uploader,
	)
	logger.Info("services initialized")

	// The session-completion hook: completed tournaments without
	// rankings are picked up and finalized incrementally.
	pollerCtx, cancelPoller := context.WithCancel(context.Background())
	defer cancelPoller()
	poller := services.NewFinalizationPoller(tournamentRepo, sessionRepo, finalizerService, logger)
	go poller.Run(pollerCtx, finalizationInterval)

	rankingHandler := handlers.NewRankingHandler(recomputeService, queryService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, dbConn, cfg.JWTSecretKey, rankingHandler, webSocketHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
