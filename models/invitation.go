package models

import "time"

// InvitationStatus is the lifecycle state of a team invitation.
// pending is the only non-terminal state; accepted, declined and expired are
// one-way. A new invitation must be issued to retry a terminal one.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationDeclined || s == InvitationExpired
}

type TeamInvitation struct {
	ID        int              `json:"id" db:"id"`
	TeamID    int              `json:"team_id" db:"team_id"`
	InviterID int              `json:"inviter_id" db:"inviter_id"`
	InviteeID int              `json:"invitee_id" db:"invitee_id"`
	Message   *string          `json:"message,omitempty" db:"message"`
	Status    InvitationStatus `json:"status" db:"status"`
	ExpiresAt time.Time        `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`

	Team    *Team `json:"team,omitempty" db:"-"`
	Inviter *User `json:"inviter,omitempty" db:"-"`
}

// ExpiredAt reports whether the invitation is past its window at the given
// instant. Expiry is time-derived: a persisted status of pending does not
// make an invitation acceptable once its window has passed.
func (i *TeamInvitation) ExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
