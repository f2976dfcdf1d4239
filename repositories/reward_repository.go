package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arenastack/ranking-engine/models"
)

// RewardRepository reads the external reward ledger. The engine never
// writes payouts; the projection only joins paid amounts into the
// leaderboard once rewards have been distributed.
type RewardRepository interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.RewardPayout, error)
}

type postgresRewardRepository struct {
	db *sql.DB
}

func NewPostgresRewardRepository(db *sql.DB) RewardRepository {
	return &postgresRewardRepository{db: db}
}

func (r *postgresRewardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRewardRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.RewardPayout, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tournament_id, participant_id, amount, paid_at
		FROM reward_payouts
		WHERE tournament_id = $1`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward payouts for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	payouts := make([]*models.RewardPayout, 0)
	for rows.Next() {
		var payout models.RewardPayout
		errScan := rows.Scan(&payout.TournamentID, &payout.ParticipantID, &payout.Amount, &payout.PaidAt)
		if errScan != nil {
			return nil, errScan
		}
		payouts = append(payouts, &payout)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payouts, nil
}
