package models

import "time"

type ScoreReport struct {
	ID               int       `json:"id" db:"id"`
	LobbyID          int       `json:"lobby_id" db:"lobby_id"`
	ReporterID       int       `json:"reporter_id" db:"reporter_id"`
	ReportedByTeamID *int      `json:"reported_by_team_id,omitempty" db:"reported_by_team_id"`
	IsConfirmed      bool      `json:"is_confirmed" db:"is_confirmed"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`

	Entries []ScoreReportEntry `json:"entries" db:"-"`
}

type ScoreReportEntry struct {
	ID          int `json:"id,omitempty" db:"id"`
	ReportID    int `json:"report_id,omitempty" db:"report_id"`
	LobbyTeamID int `json:"lobby_team_id" db:"lobby_team_id"`
	Placement   int `json:"placement" db:"placement"`
}

// Placement is a (lobby team, finishing rank) pair supplied by a reporter or an admin.
type Placement struct {
	LobbyTeamID int `json:"lobby_team_id"`
	Placement   int `json:"placement"`
}

// SubmitResult is the outcome of a score report submission.
type SubmitResult string

const (
	SubmitResultSubmitted SubmitResult = "submitted"
	SubmitResultConfirmed SubmitResult = "confirmed"
	SubmitResultDisputed  SubmitResult = "disputed"
)
