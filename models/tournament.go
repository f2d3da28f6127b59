package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusDraft              TournamentStatus = "DRAFT"
	StatusRegistrationOpen   TournamentStatus = "REGISTRATION_OPEN"
	StatusRegistrationClosed TournamentStatus = "REGISTRATION_CLOSED"
	StatusInProgress         TournamentStatus = "IN_PROGRESS"
	StatusCompleted          TournamentStatus = "COMPLETED"
	StatusCancelled          TournamentStatus = "CANCELLED"
)

type TournamentType string

const (
	TournamentTypeTeam       TournamentType = "TEAM"
	TournamentTypeSolo       TournamentType = "SOLO"
	TournamentTypeRandomised TournamentType = "RANDOMISED"
)

// Tournament holds the lobby configuration the bracket engine works with.
type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Type              TournamentType   `json:"type" db:"type"`
	Status            TournamentStatus `json:"status" db:"status"`
	TeamsPerLobby     int              `json:"teams_per_lobby" db:"teams_per_lobby"`
	AdvancersPerLobby int              `json:"advancers_per_lobby" db:"advancers_per_lobby"`
	MaxTeams          *int             `json:"max_teams,omitempty" db:"max_teams"`
	MinTeamSize       *int             `json:"min_team_size,omitempty" db:"min_team_size"`
	MaxTeamSize       *int             `json:"max_team_size,omitempty" db:"max_team_size"`
	WinnerTeamID      *int             `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}
