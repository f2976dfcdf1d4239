package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenastack/ranking-engine/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	// LockByID takes a row-level lock on the tournament for the duration
	// of the surrounding transaction, serializing the two finalization
	// paths against each other.
	LockByID(ctx context.Context, exec SQLExecutor, id int) error
	// ListAwaitingFinalization returns completed tournaments that have no
	// ranking rows yet.
	ListAwaitingFinalization(ctx context.Context, exec SQLExecutor) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, format, type_code, ranking_direction, organizer_id, status, created_at
		FROM tournaments
		WHERE id = $1`

	var tournament models.Tournament
	var typeCode, direction sql.NullString
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&tournament.ID, &tournament.Name, &tournament.Format,
		&typeCode, &direction,
		&tournament.OrganizerID, &tournament.Status, &tournament.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	if typeCode.Valid {
		code := models.TournamentTypeCode(typeCode.String)
		tournament.TypeCode = &code
	}
	if direction.Valid {
		dir := models.RankingDirection(direction.String)
		tournament.RankingDirection = &dir
	}
	return &tournament, nil
}

func (r *postgresTournamentRepository) ListAwaitingFinalization(ctx context.Context, exec SQLExecutor) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT t.id, t.name, t.format, t.type_code, t.ranking_direction, t.organizer_id, t.status, t.created_at
		FROM tournaments t
		WHERE t.status = $1
		  AND NOT EXISTS (
			SELECT 1 FROM tournament_rankings r WHERE r.tournament_id = t.id
		  )
		ORDER BY t.id`

	rows, err := executor.QueryContext(ctx, query, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments awaiting finalization: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var tournament models.Tournament
		var typeCode, direction sql.NullString
		if err := rows.Scan(
			&tournament.ID, &tournament.Name, &tournament.Format,
			&typeCode, &direction,
			&tournament.OrganizerID, &tournament.Status, &tournament.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		if typeCode.Valid {
			code := models.TournamentTypeCode(typeCode.String)
			tournament.TypeCode = &code
		}
		if direction.Valid {
			dir := models.RankingDirection(direction.String)
			tournament.RankingDirection = &dir
		}
		tournaments = append(tournaments, &tournament)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) LockByID(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `SELECT id FROM tournaments WHERE id = $1 FOR UPDATE`
	var lockedID int
	if err := executor.QueryRowContext(ctx, query, id).Scan(&lockedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to lock tournament %d: %w", id, err)
	}
	return nil
}
