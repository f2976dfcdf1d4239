package models

import (
	"fmt"
	"time"
)

// Participant is one enrolled entry in a tournament: either a user or a
// team, never both.
type Participant struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       *int      `json:"user_id,omitempty" db:"user_id"`
	TeamID       *int      `json:"team_id,omitempty" db:"team_id"`
	Name         string    `json:"name" db:"name"`
	LogoKey      *string   `json:"-" db:"logo_key"`
	LogoURL      *string   `json:"logo_url,omitempty" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Type derives the ranking-table participant type from which reference
// is set.
func (p *Participant) Type() ParticipantType {
	if p.TeamID != nil {
		return ParticipantTeam
	}
	return ParticipantIndividual
}

// DisplayName falls back to a synthetic label when no name was stored.
func (p *Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Participant %d", p.ID)
}
