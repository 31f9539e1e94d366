package services

import (
	"errors"

	"github.com/kinekixcc/kheladi-sub001/repositories"
)

// Shared service errors, mapped to HTTP statuses in the handlers layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed   = errors.New("validation failed")
	ErrTeamNameTooShort   = errors.New("team name must be at least 3 characters")
	ErrSportTypeRequired  = errors.New("sport type is required")
	ErrRosterTooSmall     = errors.New("roster is below the tournament minimum team size")
	ErrRosterTooLarge     = errors.New("roster exceeds the tournament maximum team size")
	ErrRosterEntryInvalid = errors.New("roster entry is missing required fields or has an invalid age")
	ErrNegativeFeeInput   = errors.New("fee inputs must not be negative")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Conflicts
	ErrDuplicateMember     = errors.New("user is already a member of this team")
	ErrDuplicateInvitation = errors.New("a pending invitation already exists for this invitee")
	ErrTeamNameConflict    = errors.New("team name is already in use")
	ErrUserEmailConflict   = errors.New("email address is already in use")

	// Authorization
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")
	ErrCaptainCannotLeave     = errors.New("captain must transfer captaincy before leaving the team")
	ErrInviteeMismatch        = errors.New("invitation is addressed to a different user")

	// Capacity
	ErrTeamFull       = errors.New("team is full")
	ErrTournamentFull = errors.New("tournament registration is full")

	// Invitation state
	ErrInvitationExpired    = errors.New("invitation has expired")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")

	// Registration paths
	ErrRegistrationPathClosed = errors.New("tournament does not accept this registration type")

	// Entity-specific not-found variants, kept distinct for HTTP mapping
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrMemberNotFound     = errors.New("team member not found")

	// Store/network failures the caller may retry. The repositories classify
	// these at the driver boundary; the alias lets handlers match them on
	// wrapped service errors without importing the repository package.
	ErrStoreUnavailable = repositories.ErrStoreUnavailable
)
