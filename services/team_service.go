package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kinekixcc/kheladi-sub001/models"
	"github.com/kinekixcc/kheladi-sub001/repositories"
	"github.com/kinekixcc/kheladi-sub001/storage"
)

const teamNameMinLength = 3

type CreateTeamInput struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	SportType    string  `json:"sport_type"`
	TournamentID int     `json:"tournament_id"`
	MaxMembers   int     `json:"max_members"`
	CaptainID    int     `json:"-"`
}

type UpdateTeamInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SportType   *string `json:"sport_type"`
}

// TeamService owns the team lifecycle: creation, membership, captaincy and
// deletion. It is the sole writer of captain_id and current_members, and of
// the tournament's current_teams counter: CreateTeam reserves the slot and
// DeleteTeam releases it, so every creation path shares one accounting. The
// membership invariants (unique pair, counter equals row count, exactly one
// captain) are enforced here and by the repository's atomic write pairs.
type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, teamID int) (*models.Team, error)
	UpdateTeamDetails(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID, currentUserID int) error

	AddMember(ctx context.Context, teamID, userID int, role models.TeamMemberRole) error
	RemoveMember(ctx context.Context, teamID, userID int) error
	LeaveTeam(ctx context.Context, teamID, userID int) error
	TransferCaptaincy(ctx context.Context, teamID, newCaptainID, currentUserID int) error
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)

	UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	events         EventPublisher
	notifier       Notifier
	logger         *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	events EventPublisher,
	notifier Notifier,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		events:         events,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if len(strings.TrimSpace(input.Name)) < teamNameMinLength {
		return nil, ErrTeamNameTooShort
	}
	if strings.TrimSpace(input.SportType) == "" {
		return nil, ErrSportTypeRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}
	if !ResolveRegistrationOptions(tournament).Team.Available {
		return nil, ErrRegistrationPathClosed
	}

	maxMembers := input.MaxMembers
	if maxMembers == 0 {
		maxMembers = tournament.TeamSizeMax
	}
	if maxMembers < tournament.TeamSizeMin || maxMembers > tournament.TeamSizeMax {
		return nil, ErrValidationFailed
	}

	team := &models.Team{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		SportType:    input.SportType,
		TournamentID: input.TournamentID,
		CaptainID:    input.CaptainID,
		MaxMembers:   maxMembers,
	}

	// Reserve the tournament slot before writing the team row. The
	// conditional increment is the capacity check, so every creation path
	// pays for its slot and concurrent creations cannot oversubscribe
	// max_teams.
	if err := s.tournamentRepo.IncrementTeamCount(ctx, input.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentTeamsFull) {
			return nil, ErrTournamentFull
		}
		return nil, fmt.Errorf("failed to reserve team slot in tournament %d: %w", input.TournamentID, err)
	}

	// Team row and captain member row are persisted as one unit; a partial
	// creation is surfaced as a failure, never as a created team.
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if derr := s.tournamentRepo.DecrementTeamCount(ctx, input.TournamentID); derr != nil {
			s.logger.Warn("failed to release tournament team slot",
				slog.Int("tournament_id", input.TournamentID), slog.Any("error", derr))
		}
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.publish(team.ID, EventTeamCreated, team)
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}

	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}
	team.Members = members

	if s.uploader != nil && team.LogoKey != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		team.LogoURL = &url
	}

	return team, nil
}

func (s *teamService) UpdateTeamDetails(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error) {
	team, err := s.requireCaptain(ctx, teamID, currentUserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if len(strings.TrimSpace(*input.Name)) < teamNameMinLength {
			return nil, ErrTeamNameTooShort
		}
		team.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		team.Description = input.Description
	}
	if input.SportType != nil {
		if strings.TrimSpace(*input.SportType) == "" {
			return nil, ErrSportTypeRequired
		}
		team.SportType = *input.SportType
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
	}

	s.publish(team.ID, EventTeamUpdated, team)
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID, currentUserID int) error {
	team, err := s.requireCaptain(ctx, teamID, currentUserID)
	if err != nil {
		return err
	}

	// Invitations, members, then the team row; the repository runs all three
	// in one transaction so no orphans survive a partial failure.
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}

	if err := s.tournamentRepo.DecrementTeamCount(ctx, team.TournamentID); err != nil {
		// The team row is already gone. A failed release leaves the counter
		// high, which under-reports availability but never oversubscribes,
		// so log instead of failing the delete.
		s.logger.Warn("failed to release tournament team slot",
			slog.Int("tournament_id", team.TournamentID), slog.Any("error", err))
	}

	s.publish(teamID, EventTeamDeleted, map[string]int{"team_id": teamID})
	return nil
}

func (s *teamService) AddMember(ctx context.Context, teamID, userID int, role models.TeamMemberRole) error {
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() || role == models.RoleCaptain {
		// The only captain row is written by CreateTeam and SwapCaptain.
		return ErrValidationFailed
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	member := &models.TeamMember{TeamID: teamID, UserID: userID, Role: role}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamMemberConflict):
			return ErrDuplicateMember
		case errors.Is(err, repositories.ErrTeamFull):
			return ErrTeamFull
		case errors.Is(err, repositories.ErrTeamNotFound):
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to add user %d to team %d: %w", userID, teamID, err)
	}

	s.publish(teamID, EventMemberAdded, member)
	return nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, userID int) error {
	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamMemberNotFound):
			return ErrMemberNotFound
		case errors.Is(err, repositories.ErrTeamNotFound):
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to remove user %d from team %d: %w", userID, teamID, err)
	}

	s.publish(teamID, EventMemberRemoved, map[string]int{"team_id": teamID, "user_id": userID})

	if s.notifier != nil {
		team, terr := s.teamRepo.GetByID(ctx, teamID)
		removed, uerr := s.userRepo.GetByID(ctx, userID)
		if terr == nil && uerr == nil {
			if err := s.notifier.MemberRemoved(ctx, removed, team); err != nil {
				s.logger.Warn("member removal notification failed", slog.Any("error", err))
			}
		}
	}
	return nil
}

func (s *teamService) LeaveTeam(ctx context.Context, teamID, userID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to load team %d: %w", teamID, err)
	}

	if team.CaptainID == userID {
		return ErrCaptainCannotLeave
	}

	return s.RemoveMember(ctx, teamID, userID)
}

func (s *teamService) TransferCaptaincy(ctx context.Context, teamID, newCaptainID, currentUserID int) error {
	team, err := s.requireCaptain(ctx, teamID, currentUserID)
	if err != nil {
		return err
	}
	if newCaptainID == team.CaptainID {
		return nil
	}

	// Precondition: the new captain is already a member. Violations are a
	// caller defect; checking here turns them into a typed error instead of
	// a half-applied swap.
	if _, err := s.teamRepo.GetMember(ctx, teamID, newCaptainID); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to load member %d of team %d: %w", newCaptainID, teamID, err)
	}

	if err := s.teamRepo.SwapCaptain(ctx, teamID, newCaptainID, team.CaptainID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamCaptainMismatch):
			return ErrCaptainActionForbidden
		case errors.Is(err, repositories.ErrTeamMemberNotFound):
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to transfer captaincy of team %d: %w", teamID, err)
	}

	s.publish(teamID, EventCaptainChanged, map[string]int{"team_id": teamID, "captain_id": newCaptainID})
	return nil
}

func (s *teamService) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	return s.teamRepo.ListMembers(ctx, teamID)
}

func (s *teamService) UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.requireCaptain(ctx, teamID, currentUserID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("teams/%d/logo", teamID)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", teamID, err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store logo key for team %d: %w", teamID, err)
	}

	team.LogoKey = &result.Key
	team.LogoURL = &result.Location
	return team, nil
}

// requireCaptain loads the team and checks the acting user holds captaincy.
func (s *teamService) requireCaptain(ctx context.Context, teamID, userID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if team.CaptainID != userID {
		return nil, ErrCaptainActionForbidden
	}
	return team, nil
}

func (s *teamService) publish(teamID int, eventType string, payload any) {
	if s.events != nil {
		s.events.PublishTeamEvent(teamID, eventType, payload)
	}
}
