package models

// BracketView is the read model for the bracket UI: rounds, their lobbies and seats ordered by seed.
type BracketView struct {
	TournamentID int              `json:"tournament_id"`
	Status       TournamentStatus `json:"status"`
	WinnerTeamID *int             `json:"winner_team_id,omitempty"`
	Rounds       []RoundView      `json:"rounds"`
}

type RoundView struct {
	Round
	Lobbies []LobbyView `json:"lobbies"`
}

// LobbyView carries its seats in the embedded Lobby.Teams.
type LobbyView struct {
	Lobby
	ReportCount  int `json:"report_count"`
	DisputeCount int `json:"dispute_count"`
}

// LobbyDetail is a single lobby with everything reported about it.
type LobbyDetail struct {
	Lobby
	RoundNumber int            `json:"round_number"`
	RoundName   string         `json:"round_name"`
	Reports     []ScoreReport  `json:"reports"`
	Disputes    []ScoreDispute `json:"disputes"`
}
