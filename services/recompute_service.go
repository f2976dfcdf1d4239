package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenastack/ranking-engine/live"
	"github.com/arenastack/ranking-engine/models"
	"github.com/arenastack/ranking-engine/ranking"
	"github.com/arenastack/ranking-engine/repositories"
	"github.com/arenastack/ranking-engine/storage"
)

// recomputeTimeout bounds a single recompute request. The transaction
// rolls back wholesale on expiry; a partial leaderboard is never
// committed.
const recomputeTimeout = 30 * time.Second

// RecomputeService is the batch finalization path, triggered by the
// tournament's organizer or an administrator. Unlike the incremental
// path it overwrites existing rankings: delete-then-reinsert inside one
// transaction makes repeated calls converge to the same final state.
type RecomputeService interface {
	RecomputeRankings(ctx context.Context, tournamentID, actorID int) ([]*models.Ranking, error)
}

type recomputeService struct {
	txManager       repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	sessionRepo     repositories.SessionRepository
	participantRepo repositories.ParticipantRepository
	rankingRepo     repositories.RankingRepository
	userRepo        repositories.UserRepository
	uploader        storage.FileUploader // nil disables snapshot archiving
	hub             *live.Hub
	logger          *slog.Logger
}

func NewRecomputeService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	sessionRepo repositories.SessionRepository,
	participantRepo repositories.ParticipantRepository,
	rankingRepo repositories.RankingRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	hub *live.Hub,
	logger *slog.Logger,
) RecomputeService {
	return &recomputeService{
		txManager:       txManager,
		tournamentRepo:  tournamentRepo,
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		rankingRepo:     rankingRepo,
		userRepo:        userRepo,
		uploader:        uploader,
		hub:             hub,
		logger:          logger,
	}
}

func (s *recomputeService) RecomputeRankings(ctx context.Context, tournamentID, actorID int) ([]*models.Ranking, error) {
	ctx, cancel := context.WithTimeout(ctx, recomputeTimeout)
	defer cancel()

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if err := s.authorizeRecompute(ctx, tournament, actorID); err != nil {
		return nil, err
	}
	if !isFinalizableStatus(tournament.Status) {
		return nil, ErrTournamentNotFinalizable
	}

	strategy, err := ranking.NewStrategy(tournament.Format, tournament.TypeCode)
	if err != nil {
		return nil, err
	}

	var rankings []*models.Ranking
	var previous []*models.Ranking
	err = s.txManager.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		// Row lock on the tournament serializes this recompute against
		// the incremental finalizer and other recomputes.
		if err := s.tournamentRepo.LockByID(ctx, exec, tournamentID); err != nil {
			return err
		}

		sessions, err := s.sessionRepo.ListByTournament(ctx, exec, tournamentID, nil)
		if err != nil {
			return err
		}
		if missing := countMissingResults(sessions); missing > 0 {
			return fmt.Errorf("%w: %d of %d sessions have no submitted results",
				ErrIncompleteResults, missing, len(sessions))
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

		// Capture the rows being replaced; the upload itself happens
		// after commit so a slow object store never extends the row lock.
		previous, err = s.rankingRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		if err := s.rankingRepo.DeleteByTournamentID(ctx, exec, tournamentID); err != nil {
			return err
		}

		rankings = toRankingModels(tournamentID, rows)
		if err := s.rankingRepo.BatchCreate(ctx, exec, rankings); err != nil {
			if errors.Is(err, repositories.ErrRankingDuplicate) {
				// The delete in this same transaction precedes the
				// insert, so a duplicate here means the strategy
				// produced two rows for one participant.
				s.logger.Error("ranking uniqueness constraint fired during recompute",
					slog.Int("tournament_id", tournamentID), slog.Any("error", err))
				return fmt.Errorf("%w: %v", ErrRankingConstraintViolation, err)
			}
			return err
		}

		if tournament.Status == models.StatusCompleted {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusResultsAvailable); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.archiveSnapshot(ctx, tournamentID, previous)

	s.logger.Info("tournament rankings recomputed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("actor_id", actorID),
		slog.Int("rows", len(rankings)))
	s.broadcastFinalized(tournamentID, len(rankings))

	return rankings, nil
}

func (s *recomputeService) authorizeRecompute(ctx context.Context, tournament *models.Tournament, actorID int) error {
	if actorID == tournament.OrganizerID {
		return nil
	}
	actor, err := s.userRepo.GetByID(ctx, nil, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrForbiddenOperation
		}
		return err
	}
	if actor.Role != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	return nil
}

// countMissingResults counts sessions expected to have contributed a
// result that have none: anything not completed-with-results.
func countMissingResults(sessions []*models.CompletedSession) int {
	missing := 0
	for _, session := range sessions {
		if session.Status != models.SessionCompleted || !session.HasResults() {
			missing++
		}
	}
	return missing
}

// archiveSnapshot saves the replaced leaderboard rows to object storage.
// Best effort: an archive failure must not block a recompute. Called
// after the transaction commits so the tournament row lock is not held
// across the upload.
func (s *recomputeService) archiveSnapshot(ctx context.Context, tournamentID int, old []*models.Ranking) {
	if s.uploader == nil || len(old) == 0 {
		return
	}
	payload, err := json.Marshal(old)
	if err != nil {
		s.logger.Warn("failed to marshal ranking snapshot", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	key := fmt.Sprintf("rankings/%d/%s.json", tournamentID, time.Now().UTC().Format("20060102T150405Z"))
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		s.logger.Warn("failed to archive ranking snapshot",
			slog.Int("tournament_id", tournamentID), slog.String("key", key), slog.Any("error", err))
	}
}

func (s *recomputeService) broadcastFinalized(tournamentID, count int) {
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
