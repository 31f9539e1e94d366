package models

import "time"

// TeamMemberRole is the role of a user inside a team. Exactly one member of
// a team holds RoleCaptain, and that member's user_id matches Team.CaptainID.
type TeamMemberRole string

const (
	RoleCaptain     TeamMemberRole = "captain"
	RoleViceCaptain TeamMemberRole = "vice_captain"
	RoleMember      TeamMemberRole = "member"
)

func (r TeamMemberRole) Valid() bool {
	switch r {
	case RoleCaptain, RoleViceCaptain, RoleMember:
		return true
	}
	return false
}

// TeamMember is one (team, user) membership row. The pair is unique.
type TeamMember struct {
	TeamID   int            `json:"team_id" db:"team_id"`
	UserID   int            `json:"user_id" db:"user_id"`
	Role     TeamMemberRole `json:"role" db:"role"`
	JoinedAt time.Time      `json:"joined_at" db:"joined_at"`

	User *User `json:"user,omitempty" db:"-"`
}
