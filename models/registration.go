package models

import "time"

type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "REGISTERED"
	RegistrationStatusWithdrawn  RegistrationStatus = "WITHDRAWN"
)

// Registration is either a team entry (TeamID set) or, in SOLO/RANDOMISED tournaments,
// a user entry waiting to be turned into a team.
type Registration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	TeamID       *int               `json:"team_id,omitempty" db:"team_id"`
	UserID       *int               `json:"user_id,omitempty" db:"user_id"`
	Status       RegistrationStatus `json:"status" db:"status"`
	Seed         *int               `json:"seed,omitempty" db:"seed"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
