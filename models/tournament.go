package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusSoon               TournamentStatus = "soon"
	StatusRegistration       TournamentStatus = "registration"
	StatusActive             TournamentStatus = "active"
	StatusCompleted          TournamentStatus = "completed"
	StatusResultsAvailable   TournamentStatus = "results_available"
	StatusRewardsDistributed TournamentStatus = "rewards_distributed"
	StatusCanceled           TournamentStatus = "canceled"
)

// TournamentFormat distinguishes how a tournament is scored.
type TournamentFormat string

const (
	FormatHeadToHead        TournamentFormat = "head_to_head"
	FormatIndividualRanking TournamentFormat = "individual_ranking"
)

// TournamentTypeCode selects the head-to-head ranking algorithm.
type TournamentTypeCode string

const (
	TypeLeague        TournamentTypeCode = "league"
	TypeKnockout      TournamentTypeCode = "knockout"
	TypeGroupKnockout TournamentTypeCode = "group_knockout"
)

// RankingDirection applies to individual-ranking tournaments only:
// asc means the lowest measured value wins (elapsed time), desc the
// highest (distance, score).
type RankingDirection string

const (
	DirectionAsc  RankingDirection = "asc"
	DirectionDesc RankingDirection = "desc"
)

type Tournament struct {
	ID               int                 `json:"id" db:"id"`
	Name             string              `json:"name" db:"name"`
	Format           TournamentFormat    `json:"format" db:"format"`
	TypeCode         *TournamentTypeCode `json:"type_code,omitempty" db:"type_code"`
	RankingDirection *RankingDirection   `json:"ranking_direction,omitempty" db:"ranking_direction"`
	OrganizerID      int                 `json:"organizer_id" db:"organizer_id"`
	Status           TournamentStatus    `json:"status" db:"status"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`

	// Optional linked data, populated by services, not mapped directly.
	Participants []Participant `json:"participants,omitempty" db:"-"`
}

// HasFinalRankings reports whether the tournament has reached a state in
// which its ranking rows are authoritative.
func (t *Tournament) HasFinalRankings() bool {
	return t.Status == StatusResultsAvailable || t.Status == StatusRewardsDistributed
}
