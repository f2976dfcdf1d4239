package models

// UserRole is carried in JWT claims; recompute is restricted to admins
// and the tournament's organizer.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RolePlayer    UserRole = "player"
)

// User is the minimal slice of the external account system this engine
// needs for authorization decisions.
type User struct {
	ID   int      `json:"id" db:"id"`
	Role UserRole `json:"role" db:"role"`
}
