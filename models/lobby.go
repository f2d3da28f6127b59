package models

import "time"

type LobbyStatus string

const (
	LobbyStatusPending          LobbyStatus = "PENDING"
	LobbyStatusInProgress       LobbyStatus = "IN_PROGRESS"
	LobbyStatusAwaitingResults  LobbyStatus = "AWAITING_RESULTS"
	LobbyStatusResultsConfirmed LobbyStatus = "RESULTS_CONFIRMED"
	LobbyStatusDisputed         LobbyStatus = "DISPUTED"
)

type Lobby struct {
	ID           int         `json:"id" db:"id"`
	RoundID      int         `json:"round_id" db:"round_id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	LobbyNumber  int         `json:"lobby_number" db:"lobby_number"`
	Status       LobbyStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	Teams []LobbyTeam `json:"teams,omitempty" db:"-"`
}

// LobbyTeam is a seat in a lobby. A bye seat has no team (TeamID == nil, IsBye == true)
// and never scores or advances.
type LobbyTeam struct {
	ID         int  `json:"id" db:"id"`
	LobbyID    int  `json:"lobby_id" db:"lobby_id"`
	TeamID     *int `json:"team_id,omitempty" db:"team_id"`
	Seed       int  `json:"seed" db:"seed"`
	Placement  *int `json:"placement,omitempty" db:"placement"`
	IsAdvancer bool `json:"is_advancer" db:"is_advancer"`
	IsBye      bool `json:"is_bye" db:"is_bye"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// NewTeamSeat builds a seat for a real team.
func NewTeamSeat(lobbyID, teamID, seed int) *LobbyTeam {
	return &LobbyTeam{LobbyID: lobbyID, TeamID: &teamID, Seed: seed}
}

// NewByeSeat builds an empty seat.
func NewByeSeat(lobbyID, seed int) *LobbyTeam {
	return &LobbyTeam{LobbyID: lobbyID, Seed: seed, IsBye: true}
}
