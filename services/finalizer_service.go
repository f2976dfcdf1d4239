package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arenastack/ranking-engine/live"
	"github.com/arenastack/ranking-engine/models"
	"github.com/arenastack/ranking-engine/ranking"
	"github.com/arenastack/ranking-engine/repositories"
)

// FinalizerService is the incremental finalization path, invoked by the
// session-completion workflow when a tournament's decisive session
// finishes. It can only ever succeed once per tournament: the guard
// refuses to write when ranking rows already exist.
type FinalizerService interface {
	FinalizeSession(ctx context.Context, tournamentID, sessionID int) (int, error)
}

type finalizerService struct {
	txManager       repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	sessionRepo     repositories.SessionRepository
	participantRepo repositories.ParticipantRepository
	rankingRepo     repositories.RankingRepository
	hub             *live.Hub
	logger          *slog.Logger
}

func NewFinalizerService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	sessionRepo repositories.SessionRepository,
	participantRepo repositories.ParticipantRepository,
	rankingRepo repositories.RankingRepository,
	hub *live.Hub,
	logger *slog.Logger,
) FinalizerService {
	return &finalizerService{
		txManager:       txManager,
		tournamentRepo:  tournamentRepo,
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		rankingRepo:     rankingRepo,
		hub:             hub,
		logger:          logger,
	}
}

func (s *finalizerService) FinalizeSession(ctx context.Context, tournamentID, sessionID int) (int, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, err
	}

	// The incremental path may fire while the tournament is still
	// active (the decisive session just ended) or freshly completed.
	if tournament.Status != models.StatusActive && tournament.Status != models.StatusCompleted {
		if tournament.HasFinalRankings() {
			return 0, ErrTournamentAlreadyFinalized
		}
		return 0, ErrTournamentNotFinalizable
	}

	session, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	if session.TournamentID != tournamentID {
		return 0, fmt.Errorf("%w: session %d belongs to tournament %d", ErrSessionTournamentMismatch, sessionID, session.TournamentID)
	}
	if session.Status != models.SessionCompleted {
		return 0, ErrSessionNotCompleted
	}
	if !session.HasResults() {
		return 0, ErrSessionHasNoResults
	}

	strategy, err := ranking.NewStrategy(tournament.Format, tournament.TypeCode)
	if err != nil {
		return 0, err
	}

	var inserted int
	err = s.txManager.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.LockByID(ctx, exec, tournamentID); err != nil {
			return err
		}

		// The idempotency guard: tournament granularity, not session.
		// The incremental and batch paths must never interleave writes.
		exists, err := s.rankingRepo.ExistsByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if exists {
			return ErrTournamentAlreadyFinalized
		}

		// The triggering session is the decisive one, but league and
		// hybrid standings are defined over the tournament's whole
		// completed-session set.
		sessions, err := s.sessionRepo.ListByTournament(ctx, exec, tournamentID, nil)
		if err != nil {
			return err
		}
		participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		rows, err := strategy.Calculate(ranking.CalculationInput{
			Sessions:     selectScoredSessions(sessions),
			Participants: participants,
			Direction:    rankingDirection(tournament),
		})
		if err != nil {
			return err
		}

		rankings := toRankingModels(tournamentID, rows)
		if err := s.rankingRepo.BatchCreate(ctx, exec, rankings); err != nil {
			if errors.Is(err, repositories.ErrRankingDuplicate) {
				s.logger.Error("ranking uniqueness constraint fired despite finalization guard",
					slog.Int("tournament_id", tournamentID), slog.Any("error", err))
				return fmt.Errorf("%w: %v", ErrRankingConstraintViolation, err)
			}
			return err
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusResultsAvailable); err != nil {
			return err
		}

		inserted = len(rankings)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("session finalized into rankings",
		slog.Int("tournament_id", tournamentID),
		slog.Int("session_id", sessionID),
		slog.Int("rows", inserted))
	s.broadcastFinalized(tournamentID, inserted)

	return inserted, nil
}

func (s *finalizerService) broadcastFinalized(tournamentID, count int) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.Message{
		Type: live.EventLeaderboardFinalized,
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"count":         count,
		},
	})
}
