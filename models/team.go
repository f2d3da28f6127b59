package models

import "time"

type Team struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Tag         string    `json:"tag" db:"tag"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

type TeamMemberRole string

const (
	TeamRoleOwner  TeamMemberRole = "OWNER"
	TeamRoleMember TeamMemberRole = "MEMBER"
)

type TeamMemberStatus string

const (
	TeamMemberAccepted TeamMemberStatus = "ACCEPTED"
	TeamMemberPending  TeamMemberStatus = "PENDING"
)

type TeamMember struct {
	ID     int              `json:"id" db:"id"`
	TeamID int              `json:"team_id" db:"team_id"`
	UserID int              `json:"user_id" db:"user_id"`
	Role   TeamMemberRole   `json:"role" db:"role"`
	Status TeamMemberStatus `json:"status" db:"status"`
}
