package services

import (
	"context"

	"github.com/kinekixcc/kheladi-sub001/models"
)

// Notifier delivers user-facing notifications. Calls are fire-and-forget
// from the workflow's point of view: a failed send is logged by the caller
// and never rolls back the state transition that triggered it.
type Notifier interface {
	InvitationIssued(ctx context.Context, invitee *models.User, team *models.Team, inviter *models.User, message *string) error
	InvitationAccepted(ctx context.Context, captain *models.User, team *models.Team, joined *models.User) error
	InvitationDeclined(ctx context.Context, captain *models.User, team *models.Team, declined *models.User) error
	MemberRemoved(ctx context.Context, removed *models.User, team *models.Team) error
}

// EventPublisher pushes live registration events to connected clients.
// Implemented by the realtime hub; a nil-safe no-op is fine in tests.
type EventPublisher interface {
	PublishTeamEvent(teamID int, eventType string, payload any)
}

// Realtime event types emitted by this workflow.
const (
	EventTeamCreated        = "TEAM_CREATED"
	EventTeamUpdated        = "TEAM_UPDATED"
	EventTeamDeleted        = "TEAM_DELETED"
	EventMemberAdded        = "MEMBER_ADDED"
	EventMemberRemoved      = "MEMBER_REMOVED"
	EventCaptainChanged     = "CAPTAIN_CHANGED"
	EventInvitationSent     = "INVITATION_SENT"
	EventInvitationAccepted = "INVITATION_ACCEPTED"
	EventInvitationDeclined = "INVITATION_DECLINED"
)
