package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenastack/ranking-engine/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.CompletedSession, error)
	// ListByTournament returns all non-canceled sessions for a
	// tournament, optionally filtered by phase, with results decoded.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, phase *models.SessionPhase) ([]*models.CompletedSession, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSessionRepository) scanSession(rowScanner interface{ Scan(...interface{}) error }) (*models.CompletedSession, error) {
	var session models.CompletedSession
	var phase sql.NullString
	err := rowScanner.Scan(
		&session.ID, &session.TournamentID, &phase,
		&session.Status, &session.ResultsJSON, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if phase.Valid {
		p := models.SessionPhase(phase.String)
		session.Phase = &p
	}
	if err := session.DecodeResults(); err != nil {
		return nil, fmt.Errorf("failed to decode results of session %d: %w", session.ID, err)
	}
	return &session, nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.CompletedSession, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, phase, status, results_json, created_at
		FROM sessions
		WHERE id = $1`
	return r.scanSession(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresSessionRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, phase *models.SessionPhase) ([]*models.CompletedSession, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, phase, status, results_json, created_at
		FROM sessions
		WHERE tournament_id = $1 AND status != 'canceled'`
	args := []interface{}{tournamentID}
	if phase != nil {
		query += ` AND phase = $2`
		args = append(args, *phase)
	}
	query += ` ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	sessions := make([]*models.CompletedSession, 0)
	for rows.Next() {
		session, errScan := r.scanSession(rows)
		if errScan != nil {
			return nil, errScan
		}
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
