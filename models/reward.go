package models

import "time"

// RewardPayout is a read-only row from the external reward ledger.
// Amounts are computed and written elsewhere; the rankings projection
// only joins them in once the tournament reaches rewards_distributed.
type RewardPayout struct {
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	Amount        float64   `json:"amount" db:"amount"`
	PaidAt        time.Time `json:"paid_at" db:"paid_at"`
}
