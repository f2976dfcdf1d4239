package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenastack/ranking-engine/models"
)

var ErrParticipantNotFound = errors.New("participant not found")

type ParticipantRepository interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, user_id, team_id, name, logo_key, created_at
		FROM participants
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var participant models.Participant
		errScan := rows.Scan(
			&participant.ID, &participant.TournamentID, &participant.UserID,
			&participant.TeamID, &participant.Name, &participant.LogoKey,
			&participant.CreatedAt,
		)
		if errScan != nil {
			return nil, errScan
		}
		participants = append(participants, &participant)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}
