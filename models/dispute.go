package models

import "time"

type DisputeStatus string

const (
	DisputeStatusOpen      DisputeStatus = "OPEN"
	DisputeStatusResolved  DisputeStatus = "RESOLVED"
	DisputeStatusDismissed DisputeStatus = "DISMISSED"
)

type ScoreDispute struct {
	ID           int           `json:"id" db:"id"`
	LobbyID      int           `json:"lobby_id" db:"lobby_id"`
	Status       DisputeStatus `json:"status" db:"status"`
	Reason       string        `json:"reason" db:"reason"`
	Resolution   *string       `json:"resolution,omitempty" db:"resolution"`
	RaisedByID   *int          `json:"raised_by_id,omitempty" db:"raised_by_id"`
	ResolvedByID *int          `json:"resolved_by_id,omitempty" db:"resolved_by_id"`
	ResolvedAt   *time.Time    `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}
