package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kinekixcc/kheladi-sub001/models"
)

var (
	ErrInvitationNotFound        = errors.New("invitation not found")
	ErrInvitationPendingConflict = errors.New("a pending invitation already exists for this team and invitee")
	ErrInvitationNotPending      = errors.New("invitation is not pending")
	ErrInvitationTeamInvalid     = errors.New("invitation references a missing team")
)

// InvitationRepository persists team invitations. The schema carries a
// partial unique index on (team_id, invitee_id) WHERE status = 'pending',
// which is what actually enforces the one-pending-per-pair invariant under
// concurrent sends.
type InvitationRepository interface {
	// Create inserts a pending invitation and fills ID and timestamps.
	Create(ctx context.Context, invitation *models.TeamInvitation) error

	GetByID(ctx context.Context, id int) (*models.TeamInvitation, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.TeamInvitation, error)
	ListPendingByInvitee(ctx context.Context, inviteeID int) ([]*models.TeamInvitation, error)

	// UpdateStatus transitions the invitation out of pending. The update is
	// conditional on the current status still being pending; zero affected
	// rows surface as ErrInvitationNotPending, which is how a second accept
	// or a decline-after-accept loses the race.
	UpdateStatus(ctx context.Context, id int, status models.InvitationStatus) error

	// DeleteExpired removes rows whose window has passed. Nothing in the
	// service schedules this; expiry is lazy and this is manual maintenance.
	DeleteExpired(ctx context.Context) (int64, error)
}

type postgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *sql.DB) InvitationRepository {
	return &postgresInvitationRepository{db: db}
}

func (r *postgresInvitationRepository) Create(ctx context.Context, invitation *models.TeamInvitation) error {
	query := `
		INSERT INTO team_invitations (team_id, inviter_id, invitee_id, message, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		invitation.TeamID,
		invitation.InviterID,
		invitation.InviteeID,
		invitation.Message,
		invitation.Status,
		invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt, &invitation.UpdatedAt)

	if err != nil {
		if mapped := constraintError(err, pqUniqueViolation, "team_invitations_pending_key", ErrInvitationPendingConflict); mapped != nil {
			return mapped
		}
		if mapped := constraintError(err, pqForeignKeyViolation, "team_invitations_team_id_fkey", ErrInvitationTeamInvalid); mapped != nil {
			return mapped
		}
		return storeError(err)
	}

	return nil
}

func (r *postgresInvitationRepository) GetByID(ctx context.Context, id int) (*models.TeamInvitation, error) {
	query := `
		SELECT id, team_id, inviter_id, invitee_id, message, status, expires_at, created_at, updated_at
		FROM team_invitations
		WHERE id = $1`

	invitation := &models.TeamInvitation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&invitation.ID,
		&invitation.TeamID,
		&invitation.InviterID,
		&invitation.InviteeID,
		&invitation.Message,
		&invitation.Status,
		&invitation.ExpiresAt,
		&invitation.CreatedAt,
		&invitation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, storeError(err)
	}

	return invitation, nil
}

func (r *postgresInvitationRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.TeamInvitation, error) {
	query := `
		SELECT id, team_id, inviter_id, invitee_id, message, status, expires_at, created_at, updated_at
		FROM team_invitations
		WHERE team_id = $1
		ORDER BY created_at DESC`

	return r.queryInvitations(ctx, query, teamID)
}

func (r *postgresInvitationRepository) ListPendingByInvitee(ctx context.Context, inviteeID int) ([]*models.TeamInvitation, error) {
	query := `
		SELECT id, team_id, inviter_id, invitee_id, message, status, expires_at, created_at, updated_at
		FROM team_invitations
		WHERE invitee_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`

	return r.queryInvitations(ctx, query, inviteeID)
}

func (r *postgresInvitationRepository) queryInvitations(ctx context.Context, query string, arg any) ([]*models.TeamInvitation, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	invitations := make([]*models.TeamInvitation, 0)
	for rows.Next() {
		var invitation models.TeamInvitation
		if scanErr := rows.Scan(
			&invitation.ID,
			&invitation.TeamID,
			&invitation.InviterID,
			&invitation.InviteeID,
			&invitation.Message,
			&invitation.Status,
			&invitation.ExpiresAt,
			&invitation.CreatedAt,
			&invitation.UpdatedAt,
		); scanErr != nil {
			return nil, storeError(scanErr)
		}
		invitations = append(invitations, &invitation)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return invitations, nil
}

func (r *postgresInvitationRepository) UpdateStatus(ctx context.Context, id int, status models.InvitationStatus) error {
	query := `
		UPDATE team_invitations
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return storeError(err)
	}
	return checkAffectedRows(result, ErrInvitationNotPending)
}

func (r *postgresInvitationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM team_invitations WHERE status = 'pending' AND expires_at <= NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, storeError(err)
	}
	return result.RowsAffected()
}
