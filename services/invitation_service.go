package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kinekixcc/kheladi-sub001/models"
	"github.com/kinekixcc/kheladi-sub001/repositories"
	"github.com/kinekixcc/kheladi-sub001/utils"
)

// Invitations stay acceptable for 7 days after issuance.
const invitationTTL = 7 * 24 * time.Hour

type SendInvitationInput struct {
	TeamID       int     `json:"team_id"`
	InviteeEmail string  `json:"invitee_email"`
	Message      *string `json:"message"`
	InviterID    int     `json:"-"`
}

// InvitationService drives pending → accepted | declined | expired. All
// three outcomes are terminal; retrying requires a fresh invitation. Expiry
// is lazy: nothing sweeps pending rows, the read and accept paths derive it
// from expires_at.
type InvitationService interface {
	SendInvitation(ctx context.Context, input SendInvitationInput) (*models.TeamInvitation, error)
	AcceptInvitation(ctx context.Context, invitationID, currentUserID int) error
	DeclineInvitation(ctx context.Context, invitationID, currentUserID int) error
	ListUserInvitations(ctx context.Context, userID int) ([]*models.TeamInvitation, error)
	ListTeamInvitations(ctx context.Context, teamID, currentUserID int) ([]*models.TeamInvitation, error)

	// PurgeExpired deletes rows whose window has passed. Manual maintenance;
	// correctness never depends on it because expiry is derived at read time.
	PurgeExpired(ctx context.Context) (int64, error)
}

type invitationService struct {
	invitationRepo repositories.InvitationRepository
	teamRepo       repositories.TeamRepository
	userRepo       repositories.UserRepository
	teamService    TeamService
	events         EventPublisher
	notifier       Notifier
	logger         *slog.Logger
	now            func() time.Time
}

func NewInvitationService(
	invitationRepo repositories.InvitationRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	teamService TeamService,
	events EventPublisher,
	notifier Notifier,
	logger *slog.Logger,
) InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		teamService:    teamService,
		events:         events,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *invitationService) SendInvitation(ctx context.Context, input SendInvitationInput) (*models.TeamInvitation, error) {
	team, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", input.TeamID, err)
	}
	if team.CaptainID != input.InviterID {
		return nil, ErrCaptainActionForbidden
	}

	email := strings.TrimSpace(input.InviteeEmail)
	if !utils.IsValidEmail(email) {
		return nil, ErrValidationFailed
	}

	invitee, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve invitee email: %w", err)
	}

	if _, err := s.teamRepo.GetMember(ctx, input.TeamID, invitee.ID); err == nil {
		return nil, ErrDuplicateMember
	} else if !errors.Is(err, repositories.ErrTeamMemberNotFound) {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}

	invitation := &models.TeamInvitation{
		TeamID:    input.TeamID,
		InviterID: input.InviterID,
		InviteeID: invitee.ID,
		Message:   input.Message,
		Status:    models.InvitationPending,
		ExpiresAt: s.now().Add(invitationTTL),
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvitationPendingConflict):
			return nil, ErrDuplicateInvitation
		case errors.Is(err, repositories.ErrInvitationTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.publish(team.ID, EventInvitationSent, invitation)

	if s.notifier != nil {
		inviter, ierr := s.userRepo.GetByID(ctx, input.InviterID)
		if ierr == nil {
			if nerr := s.notifier.InvitationIssued(ctx, invitee, team, inviter, input.Message); nerr != nil {
				s.logger.Warn("invitation notification failed",
					slog.Int("invitation_id", invitation.ID), slog.Any("error", nerr))
			}
		}
	}

	return invitation, nil
}

func (s *invitationService) AcceptInvitation(ctx context.Context, invitationID, currentUserID int) error {
	invitation, err := s.loadPending(ctx, invitationID)
	if err != nil {
		return err
	}
	if invitation.InviteeID != currentUserID {
		return ErrInviteeMismatch
	}

	// Membership first. If the team filled up (or was deleted) concurrently,
	// the invitation stays pending and the accept can be retried; the status
	// transition below only runs after the member row exists.
	if err := s.teamService.AddMember(ctx, invitation.TeamID, invitation.InviteeID, models.RoleMember); err != nil {
		return err
	}

	if err := s.invitationRepo.UpdateStatus(ctx, invitationID, models.InvitationAccepted); err != nil {
		if errors.Is(err, repositories.ErrInvitationNotPending) {
			// Lost a race after the member row was written. The membership
			// stands; report the stale transition.
			return ErrInvitationNotPending
		}
		return fmt.Errorf("failed to mark invitation %d accepted: %w", invitationID, err)
	}

	s.publish(invitation.TeamID, EventInvitationAccepted, map[string]int{
		"invitation_id": invitationID,
		"user_id":       invitation.InviteeID,
	})

	s.notifyOutcome(ctx, invitation, true)
	return nil
}

func (s *invitationService) DeclineInvitation(ctx context.Context, invitationID, currentUserID int) error {
	invitation, err := s.loadPending(ctx, invitationID)
	if err != nil {
		return err
	}
	if invitation.InviteeID != currentUserID {
		return ErrInviteeMismatch
	}

	if err := s.invitationRepo.UpdateStatus(ctx, invitationID, models.InvitationDeclined); err != nil {
		if errors.Is(err, repositories.ErrInvitationNotPending) {
			return ErrInvitationNotPending
		}
		return fmt.Errorf("failed to mark invitation %d declined: %w", invitationID, err)
	}

	s.publish(invitation.TeamID, EventInvitationDeclined, map[string]int{
		"invitation_id": invitationID,
		"user_id":       invitation.InviteeID,
	})

	s.notifyOutcome(ctx, invitation, false)
	return nil
}

// ListUserInvitations returns the user's actionable invitations. Rows whose
// window has passed are filtered out here even though their persisted status
// still reads pending.
func (s *invitationService) ListUserInvitations(ctx context.Context, userID int) ([]*models.TeamInvitation, error) {
	invitations, err := s.invitationRepo.ListPendingByInvitee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations for user %d: %w", userID, err)
	}

	now := s.now()
	active := make([]*models.TeamInvitation, 0, len(invitations))
	for _, invitation := range invitations {
		if !invitation.ExpiredAt(now) {
			active = append(active, invitation)
		}
	}
	return active, nil
}

func (s *invitationService) ListTeamInvitations(ctx context.Context, teamID, currentUserID int) ([]*models.TeamInvitation, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if team.CaptainID != currentUserID {
		return nil, ErrCaptainActionForbidden
	}

	invitations, err := s.invitationRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations for team %d: %w", teamID, err)
	}

	now := s.now()
	for _, invitation := range invitations {
		if invitation.Status == models.InvitationPending && invitation.ExpiredAt(now) {
			invitation.Status = models.InvitationExpired
		}
	}
	return invitations, nil
}

func (s *invitationService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.invitationRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired invitations: %w", err)
	}
	if removed > 0 {
		s.logger.Info("purged expired invitations", slog.Int64("removed", removed))
	}
	return removed, nil
}

// loadPending fetches an invitation and verifies it is still acceptable.
// Expiry is checked against wall clock, not the stored status.
func (s *invitationService) loadPending(ctx context.Context, invitationID int) (*models.TeamInvitation, error) {
	invitation, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to load invitation %d: %w", invitationID, err)
	}

	if invitation.Status != models.InvitationPending {
		return nil, ErrInvitationNotPending
	}
	if invitation.ExpiredAt(s.now()) {
		return nil, ErrInvitationExpired
	}
	return invitation, nil
}

func (s *invitationService) notifyOutcome(ctx context.Context, invitation *models.TeamInvitation, accepted bool) {
	if s.notifier == nil {
		return
	}
	team, terr := s.teamRepo.GetByID(ctx, invitation.TeamID)
	if terr != nil {
		return
	}
	captain, cerr := s.userRepo.GetByID(ctx, team.CaptainID)
	invitee, uerr := s.userRepo.GetByID(ctx, invitation.InviteeID)
	if cerr != nil || uerr != nil {
		return
	}

	var err error
	if accepted {
		err = s.notifier.InvitationAccepted(ctx, captain, team, invitee)
	} else {
		err = s.notifier.InvitationDeclined(ctx, captain, team, invitee)
	}
	if err != nil {
		s.logger.Warn("invitation outcome notification failed",
			slog.Int("invitation_id", invitation.ID), slog.Any("error", err))
	}
}

func (s *invitationService) publish(teamID int, eventType string, payload any) {
	if s.events != nil {
		s.events.PublishTeamEvent(teamID, eventType, payload)
	}
}
