package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kinekixcc/kheladi-sub001/models"
	"github.com/kinekixcc/kheladi-sub001/repositories"
	"github.com/kinekixcc/kheladi-sub001/utils"
)

// WizardStep indexes the three-step team creation flow.
type WizardStep int

const (
	StepTeamInfo WizardStep = iota + 1
	StepRoster
	StepReview
)

// CommitMode selects what happens to non-captain roster entries at commit:
// direct enrollment as member rows, or an invitation each.
type CommitMode string

const (
	CommitEnroll CommitMode = "enroll"
	CommitInvite CommitMode = "invite"
)

const (
	rosterAgeMin = 13
	rosterAgeMax = 100
)

// FieldErrors maps a field path (e.g. "roster[2].email") to its violation.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	return fmt.Sprintf("%d field validation errors", len(e))
}

// WizardCommitResult summarizes a successful commit.
type WizardCommitResult struct {
	Team        *models.Team             `json:"team"`
	Enrolled    []int                    `json:"enrolled_user_ids,omitempty"`
	Invitations []*models.TeamInvitation `json:"invitations,omitempty"`
	Fee         FeeBreakdown             `json:"fee"`
}

// WizardService builds TeamCreationWizard instances bound to the live
// services a commit needs.
type WizardService struct {
	tournamentRepo    repositories.TournamentRepository
	userRepo          repositories.UserRepository
	teamService       TeamService
	invitationService InvitationService
	commissionRate    float64
}

func NewWizardService(
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	teamService TeamService,
	invitationService InvitationService,
	commissionRate float64,
) *WizardService {
	return &WizardService{
		tournamentRepo:    tournamentRepo,
		userRepo:          userRepo,
		teamService:       teamService,
		invitationService: invitationService,
		commissionRate:    commissionRate,
	}
}

// NewWizard starts a draft for the given tournament with the authenticated
// user as captain. The tournament must offer the team path. Nothing is
// persisted until Commit; abandoning the wizard needs no cleanup.
func (s *WizardService) NewWizard(ctx context.Context, tournamentID, captainID int) (*TeamCreationWizard, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if err := tournament.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if !ResolveRegistrationOptions(tournament).Team.Available {
		return nil, ErrRegistrationPathClosed
	}

	captain, err := s.userRepo.GetByID(ctx, captainID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", captainID, err)
	}

	return &TeamCreationWizard{
		svc:        s,
		tournament: tournament,
		captain:    captain,
		step:       StepTeamInfo,
		roster: []models.RosterEntry{{
			// Entry 0 is always the captain; role is inferred from position.
			Name:  captain.FullName,
			Email: captain.Email,
			Phone: captain.Phone,
		}},
	}, nil
}

// TeamCreationWizard is a single-user draft: team info → roster → review.
// Each gate must pass to advance, and everything is re-validated at Commit
// because the tournament may have changed between steps.
type TeamCreationWizard struct {
	svc        *WizardService
	tournament *models.Tournament
	captain    *models.User

	step        WizardStep
	name        string
	description *string
	sportType   string
	roster      []models.RosterEntry
}

func (w *TeamCreationWizard) Step() WizardStep { return w.step }

func (w *TeamCreationWizard) Roster() []models.RosterEntry { return w.roster }

func (w *TeamCreationWizard) SetTeamInfo(name string, description *string, sportType string) {
	w.name = strings.TrimSpace(name)
	w.description = description
	w.sportType = strings.TrimSpace(sportType)
}

// SetCaptainDetails fills the captain entry's fields that do not come from
// the account record. The identity fields stay pinned to the captain.
func (w *TeamCreationWizard) SetCaptainDetails(age int, experienceLevel string) {
	w.roster[0].Age = age
	w.roster[0].ExperienceLevel = experienceLevel
}

// AddRosterEntry appends a member row. Growth past the tournament's maximum
// team size is refused at action time, not left for submit to catch.
func (w *TeamCreationWizard) AddRosterEntry(entry models.RosterEntry) error {
	if len(w.roster) >= w.tournament.TeamSizeMax {
		return ErrRosterTooLarge
	}
	w.roster = append(w.roster, entry)
	return nil
}

func (w *TeamCreationWizard) UpdateRosterEntry(index int, entry models.RosterEntry) error {
	if index <= 0 || index >= len(w.roster) {
		// Entry 0 is the captain and is not independently editable.
		return ErrRosterEntryInvalid
	}
	w.roster[index] = entry
	return nil
}

// RemoveRosterEntry drops a non-captain row. Index 0 is structurally off
// limits, and removal that would take the roster below the tournament
// minimum is refused.
func (w *TeamCreationWizard) RemoveRosterEntry(index int) error {
	if index <= 0 || index >= len(w.roster) {
		return ErrRosterEntryInvalid
	}
	if len(w.roster)-1 < w.tournament.TeamSizeMin {
		return ErrRosterTooSmall
	}
	w.roster = append(w.roster[:index], w.roster[index+1:]...)
	return nil
}

// Next validates the current step and advances. The review step does not
// advance; it commits.
func (w *TeamCreationWizard) Next() error {
	switch w.step {
	case StepTeamInfo:
		if err := w.validateTeamInfo(); err != nil {
			return err
		}
		w.step = StepRoster
	case StepRoster:
		if err := w.validateRoster(); err != nil {
			return err
		}
		w.step = StepReview
	}
	return nil
}

func (w *TeamCreationWizard) Back() {
	if w.step > StepTeamInfo {
		w.step--
	}
}

// CanProceed reports whether the current step's gate passes, with
// field-level detail on failure.
func (w *TeamCreationWizard) CanProceed() (FieldErrors, bool) {
	var err error
	switch w.step {
	case StepTeamInfo:
		err = w.validateTeamInfo()
	case StepRoster:
		err = w.validateRoster()
	default:
		err = w.validateAll()
	}
	if err == nil {
		return nil, true
	}
	var fields FieldErrors
	if errors.As(err, &fields) {
		return fields, false
	}
	return FieldErrors{"_": err.Error()}, false
}

// FeePreview is the live cost figure shown throughout the flow. Display
// only; the same calculator is re-run by the payment step authoritatively.
func (w *TeamCreationWizard) FeePreview() FeeBreakdown {
	return CalculateFees(FeeInput{
		EntryFee:             w.tournament.EntryFee,
		MaxTeams:             w.tournament.MaxTeams,
		TeamSizeMax:          w.tournament.TeamSizeMax,
		EntryFeeType:         w.tournament.EntryFeeType,
		CommissionPercentage: w.svc.commissionRate,
	})
}

func (w *TeamCreationWizard) RegistrationOptions() RegistrationOptions {
	return ResolveRegistrationOptions(w.tournament)
}

// Commit runs the whole flow's validation again and persists the draft:
// exactly one team creation, then one enrollment or invitation per
// non-captain roster entry. Invitee emails are resolved up front so an
// unknown address fails the commit before anything is written.
//
// The commit is atomic only up to the team creation. If an enrollment or
// invitation fails afterwards, the team and any writes already applied
// stand, and the returned error names the created team so the caller can
// retry the remainder or delete the team.
func (w *TeamCreationWizard) Commit(ctx context.Context, mode CommitMode) (*WizardCommitResult, error) {
	if w.step != StepReview {
		return nil, ErrValidationFailed
	}
	if err := w.validateAll(); err != nil {
		return nil, err
	}

	resolved, err := w.resolveRoster(ctx)
	if err != nil {
		return nil, err
	}

	// CreateTeam reserves the tournament slot itself and releases it when
	// the team row cannot be written, so a full tournament surfaces here as
	// ErrTournamentFull without any counter bookkeeping of our own.
	team, err := w.svc.teamService.CreateTeam(ctx, CreateTeamInput{
		Name:         w.name,
		Description:  w.description,
		SportType:    w.sportType,
		TournamentID: w.tournament.ID,
		MaxMembers:   w.tournament.TeamSizeMax,
		CaptainID:    w.captain.ID,
	})
	if err != nil {
		return nil, err
	}

	result := &WizardCommitResult{Team: team, Fee: w.FeePreview()}

	switch mode {
	case CommitEnroll:
		for _, user := range resolved {
			if err := w.svc.teamService.AddMember(ctx, team.ID, user.ID, models.RoleMember); err != nil {
				return nil, fmt.Errorf("team %d created but enrolling user %d failed: %w", team.ID, user.ID, err)
			}
			result.Enrolled = append(result.Enrolled, user.ID)
		}
	default: // invite
		invitations := make([]*models.TeamInvitation, len(resolved))
		g, gctx := errgroup.WithContext(ctx)
		for i, user := range resolved {
			g.Go(func() error {
				invitation, err := w.svc.invitationService.SendInvitation(gctx, SendInvitationInput{
					TeamID:       team.ID,
					InviteeEmail: user.Email,
					InviterID:    w.captain.ID,
				})
				if err != nil {
					return fmt.Errorf("team %d created but inviting %s failed: %w", team.ID, user.Email, err)
				}
				invitations[i] = invitation
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		result.Invitations = invitations
	}

	return result, nil
}

func (w *TeamCreationWizard) validateTeamInfo() error {
	fields := FieldErrors{}
	if len(w.name) < teamNameMinLength {
		fields["name"] = "team name must be at least 3 characters"
	}
	if w.sportType == "" {
		fields["sport_type"] = "sport type is required"
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func (w *TeamCreationWizard) validateRoster() error {
	fields := FieldErrors{}
	if len(w.roster) < w.tournament.TeamSizeMin {
		fields["roster"] = fmt.Sprintf("at least %d members required", w.tournament.TeamSizeMin)
	}
	if len(w.roster) > w.tournament.TeamSizeMax {
		fields["roster"] = fmt.Sprintf("at most %d members allowed", w.tournament.TeamSizeMax)
	}

	for i, entry := range w.roster {
		prefix := fmt.Sprintf("roster[%d]", i)
		if strings.TrimSpace(entry.Name) == "" {
			fields[prefix+".name"] = "name is required"
		}
		if email := strings.TrimSpace(entry.Email); email == "" {
			fields[prefix+".email"] = "email is required"
		} else if !utils.IsValidEmail(email) {
			fields[prefix+".email"] = "email is invalid"
		}
		if strings.TrimSpace(entry.Phone) == "" {
			fields[prefix+".phone"] = "phone is required"
		}
		if entry.Age < rosterAgeMin || entry.Age > rosterAgeMax {
			fields[prefix+".age"] = fmt.Sprintf("age must be between %d and %d", rosterAgeMin, rosterAgeMax)
		}
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}

// validateAll is the commit gate: earlier step results are not trusted.
func (w *TeamCreationWizard) validateAll() error {
	if err := w.validateTeamInfo(); err != nil {
		return err
	}
	return w.validateRoster()
}

// resolveRoster maps every non-captain entry's email to a directory user.
func (w *TeamCreationWizard) resolveRoster(ctx context.Context) ([]*models.User, error) {
	entries := w.roster[1:]
	resolved := make([]*models.User, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			user, err := w.svc.userRepo.GetByEmail(gctx, entry.Email)
			if err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return fmt.Errorf("%w: %s", ErrUserNotFound, entry.Email)
				}
				return fmt.Errorf("failed to resolve %s: %w", entry.Email, err)
			}
			resolved[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}
