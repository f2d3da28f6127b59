package models

import "time"

type RoundStatus string

const (
	RoundStatusPending    RoundStatus = "PENDING"
	RoundStatusInProgress RoundStatus = "IN_PROGRESS"
	RoundStatusCompleted  RoundStatus = "COMPLETED"
)

// Round is one elimination stage. SettledLobbies counts lobbies whose results are
// final (confirmed or without any real team); the round is done once it reaches LobbyCount.
type Round struct {
	ID             int         `json:"id" db:"id"`
	TournamentID   int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber    int         `json:"round_number" db:"round_number"`
	Name           string      `json:"name" db:"name"`
	Status         RoundStatus `json:"status" db:"status"`
	LobbyCount     int         `json:"lobby_count" db:"lobby_count"`
	SettledLobbies int         `json:"settled_lobbies" db:"settled_lobbies"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

func (r *Round) IsSettled() bool {
	return r.SettledLobbies >= r.LobbyCount
}
