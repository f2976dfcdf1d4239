package models

import "time"

// ParticipantType distinguishes solo players from teams inside the
// ranking table's composite uniqueness key.
type ParticipantType string

const (
	ParticipantIndividual ParticipantType = "individual"
	ParticipantTeam       ParticipantType = "team"
)

// Ranking is one leaderboard row. The database enforces UNIQUE
// (tournament_id, participant_id, participant_type); no two rows for a
// tournament may share a participant.
type Ranking struct {
	ID              int             `json:"id" db:"id"`
	TournamentID    int             `json:"tournament_id" db:"tournament_id"`
	ParticipantID   int             `json:"participant_id" db:"participant_id"`
	ParticipantType ParticipantType `json:"participant_type" db:"participant_type"`
	Rank            int             `json:"rank" db:"rank"`
	Points          float64         `json:"points" db:"points"`
	Wins            int             `json:"wins" db:"wins"`
	Losses          int             `json:"losses" db:"losses"`
	Draws           int             `json:"draws" db:"draws"`
	GoalsFor        int             `json:"goals_for" db:"goals_for"`
	GoalsAgainst    int             `json:"goals_against" db:"goals_against"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// GoalDifference is the league tie-break value.
func (r *Ranking) GoalDifference() int {
	return r.GoalsFor - r.GoalsAgainst
}
