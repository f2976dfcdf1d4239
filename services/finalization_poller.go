package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/arenastack/ranking-engine/models"
	"github.com/arenastack/ranking-engine/repositories"
)

// FinalizationPoller is the session-completion hook's in-process driver.
// It periodically scans for completed tournaments that have no rankings
// yet and hands their decisive session to the incremental finalizer.
// A tournament finalized out-of-band between the scan and the call is
// harmless: the finalizer's guard rejects the second attempt.
type FinalizationPoller struct {
	tournamentRepo repositories.TournamentRepository
	sessionRepo    repositories.SessionRepository
	finalizer      FinalizerService
	logger         *slog.Logger
}

func NewFinalizationPoller(
	tournamentRepo repositories.TournamentRepository,
	sessionRepo repositories.SessionRepository,
	finalizer FinalizerService,
	logger *slog.Logger,
) *FinalizationPoller {
	return &FinalizationPoller{
		tournamentRepo: tournamentRepo,
		sessionRepo:    sessionRepo,
		finalizer:      finalizer,
		logger:         logger,
	}
}

// Run blocks, scanning once immediately and then on every tick until the
// context is canceled.
func (p *FinalizationPoller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("finalization poller started", slog.Duration("interval", interval))
	if err := p.RunOnce(ctx); err != nil {
		p.logger.Error("finalization scan failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("finalization poller stopped")
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.logger.Error("finalization scan failed", slog.Any("error", err))
			}
		}
	}
}

// RunOnce performs a single scan. Per-tournament failures are logged and
// skipped so one broken tournament cannot starve the rest.
func (p *FinalizationPoller) RunOnce(ctx context.Context) error {
	tournaments, err := p.tournamentRepo.ListAwaitingFinalization(ctx, nil)
	if err != nil {
		return err
	}

	for _, tournament := range tournaments {
		sessionID, ok, err := p.decisiveSession(ctx, tournament.ID)
		if err != nil {
			p.logger.Error("failed to pick decisive session",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
			continue
		}
		if !ok {
			// No session has results yet; a later scan will pick it up.
			continue
		}

		count, err := p.finalizer.FinalizeSession(ctx, tournament.ID, sessionID)
		switch {
		case err == nil:
			p.logger.Info("tournament finalized by poller",
				slog.Int("tournament_id", tournament.ID),
				slog.Int("session_id", sessionID),
				slog.Int("rows", count))
		case errors.Is(err, ErrTournamentAlreadyFinalized):
			// Lost the race to a recompute or a concurrent scan.
		default:
			p.logger.Warn("finalization attempt failed",
				slog.Int("tournament_id", tournament.ID),
				slog.Int("session_id", sessionID),
				slog.Any("error", err))
		}
	}
	return nil
}

// decisiveSession picks the latest completed session carrying results.
func (p *FinalizationPoller) decisiveSession(ctx context.Context, tournamentID int) (int, bool, error) {
	sessions, err := p.sessionRepo.ListByTournament(ctx, nil, tournamentID, nil)
	if err != nil {
		return 0, false, err
	}
	for i := len(sessions) - 1; i >= 0; i-- {
		session := sessions[i]
		if session.Status == models.SessionCompleted && session.HasResults() {
			return session.ID, true, nil
		}
	}
	return 0, false, nil
}
