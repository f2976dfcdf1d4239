package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/arenastack/ranking-engine/models"
)

var (
	ErrRankingNotFound = errors.New("ranking not found")

	// ErrRankingDuplicate means the store's uniqueness constraint on
	// (tournament_id, participant_id, participant_type) rejected an
	// insert. Reaching it implies the application-level finalization
	// guard was bypassed or is buggy.
	ErrRankingDuplicate = errors.New("duplicate ranking row for participant")
)

// RankingReader is the read-only view of the ranking store. It is the
// only interface exposed outside the two finalization paths.
type RankingReader interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Ranking, error)
	ExistsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (bool, error)
}

// RankingRepository adds the write methods. Only the session finalizer
// and the recompute service receive this interface; every other consumer
// gets RankingReader, so no third code path can write leaderboard rows.
type RankingRepository interface {
	RankingReader
	BatchCreate(ctx context.Context, exec SQLExecutor, rankings []*models.Ranking) error
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) ExistsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT EXISTS (SELECT 1 FROM tournament_rankings WHERE tournament_id = $1)`
	var exists bool
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check rankings existence for tournament %d: %w", tournamentID, err)
	}
	return exists, nil
}

func (r *postgresRankingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, rankings []*models.Ranking) error {
	executor := r.getExecutor(exec)
	if len(rankings) == 0 {
		return nil
	}

	query := `
		INSERT INTO tournament_rankings
		    (tournament_id, participant_id, participant_type, rank, points, wins, losses, draws, goals_for, goals_against, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	for _, ranking := range rankings {
		if ranking.UpdatedAt.IsZero() {
			ranking.UpdatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, query,
			ranking.TournamentID, ranking.ParticipantID, ranking.ParticipantType,
			ranking.Rank, ranking.Points, ranking.Wins, ranking.Losses, ranking.Draws,
			ranking.GoalsFor, ranking.GoalsAgainst, ranking.UpdatedAt,
		).Scan(&ranking.ID)
		if err != nil {
			return fmt.Errorf("failed to insert ranking for participant %d: %w",
				ranking.ParticipantID, classifyRankingError(err))
		}
	}
	return nil
}

func (r *postgresRankingRepository) scanRanking(rowScanner interface{ Scan(...interface{}) error }) (*models.Ranking, error) {
	var ranking models.Ranking
	err := rowScanner.Scan(
		&ranking.ID, &ranking.TournamentID, &ranking.ParticipantID, &ranking.ParticipantType,
		&ranking.Rank, &ranking.Points, &ranking.Wins, &ranking.Losses, &ranking.Draws,
		&ranking.GoalsFor, &ranking.GoalsAgainst, &ranking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankingNotFound
		}
		return nil, err
	}
	return &ranking, nil
}

func (r *postgresRankingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Ranking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, participant_id, participant_type, rank, points,
		       wins, losses, draws, goals_for, goals_against, updated_at
		FROM tournament_rankings
		WHERE tournament_id = $1
		ORDER BY rank ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	rankings := make([]*models.Ranking, 0)
	for rows.Next() {
		ranking, errScan := r.scanRanking(rows)
		if errScan != nil {
			return nil, errScan
		}
		rankings = append(rankings, ranking)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rankings, nil
}

func (r *postgresRankingRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournament_rankings WHERE tournament_id = $1`
	if _, err := executor.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete rankings for tournament %d: %w", tournamentID, err)
	}
	return nil
}

// classifyRankingError turns a unique_violation on the composite
// participant key into ErrRankingDuplicate so the service layer can
// surface it as an invariant breach.
func classifyRankingError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if pqErr.Constraint == "tournament_rankings_participant_key" {
			return ErrRankingDuplicate
		}
	}
	return err
}
