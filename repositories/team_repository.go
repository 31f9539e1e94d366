package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kinekixcc/kheladi-sub001/models"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamNameConflict    = errors.New("team name already in use for this tournament")
	ErrTeamMemberNotFound  = errors.New("team member not found")
	ErrTeamMemberConflict  = errors.New("user is already a member of this team")
	ErrTeamFull            = errors.New("team has reached its member limit")
	ErrTeamCaptainMismatch = errors.New("team captain does not match expected user")
)

// TeamRepository persists teams and memberships. Write pairs that must not
// drift apart (team row + captain row, member row + counter) run in a single
// transaction; the counter update doubles as the capacity check so that
// concurrent adds cannot overshoot max_members.
type TeamRepository interface {
	// Create inserts the team row and the captain's member row in one
	// transaction, and fills ID, CurrentMembers and timestamps on team.
	Create(ctx context.Context, team *models.Team) error

	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error

	// Delete removes invitations, member rows and finally the team row,
	// children before parent, in one transaction.
	Delete(ctx context.Context, id int) error

	// AddMember inserts the member row and increments current_members as one
	// atomic unit. Returns ErrTeamMemberConflict for a duplicate pair,
	// ErrTeamFull when the conditional increment matches no row, and
	// ErrTeamNotFound when the team is gone.
	AddMember(ctx context.Context, member *models.TeamMember) error

	// RemoveMember deletes the member row and decrements current_members as
	// one atomic unit.
	RemoveMember(ctx context.Context, teamID, userID int) error

	GetMember(ctx context.Context, teamID, userID int) (*models.TeamMember, error)
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)

	// SwapCaptain atomically points captain_id at newCaptainID, demotes the
	// old captain's row to member and promotes the new captain's row. The
	// captain_id update is conditional on oldCaptainID still holding the
	// role, so two concurrent transfers cannot both win.
	SwapCaptain(ctx context.Context, teamID, newCaptainID, oldCaptainID int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO teams (name, description, sport_type, tournament_id, captain_id, max_members, current_members)
			VALUES ($1, $2, $3, $4, $5, $6, 1)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowContext(ctx, query,
			team.Name,
			team.Description,
			team.SportType,
			team.TournamentID,
			team.CaptainID,
			team.MaxMembers,
		).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
		if err != nil {
			if mapped := constraintError(err, pqUniqueViolation, "teams_tournament_id_name_key", ErrTeamNameConflict); mapped != nil {
				return mapped
			}
			return fmt.Errorf("failed to insert team: %w", storeError(err))
		}

		memberQuery := `
			INSERT INTO team_members (team_id, user_id, role)
			VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, memberQuery, team.ID, team.CaptainID, models.RoleCaptain); err != nil {
			// Rolling back here also undoes the team row, so a failed
			// captain insert never leaves a captainless team behind.
			return fmt.Errorf("failed to insert captain member row for team %d: %w", team.ID, storeError(err))
		}

		team.CurrentMembers = 1
		return nil
	})
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, description, sport_type, tournament_id, captain_id,
		       max_members, current_members, logo_key, created_at, updated_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.SportType,
		&team.TournamentID,
		&team.CaptainID,
		&team.MaxMembers,
		&team.CurrentMembers,
		&team.LogoKey,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, storeError(err)
	}

	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	query := `
		SELECT id, name, description, sport_type, tournament_id, captain_id,
		       max_members, current_members, logo_key, created_at, updated_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Description,
			&team.SportType,
			&team.TournamentID,
			&team.CaptainID,
			&team.MaxMembers,
			&team.CurrentMembers,
			&team.LogoKey,
			&team.CreatedAt,
			&team.UpdatedAt,
		); scanErr != nil {
			return nil, storeError(scanErr)
		}
		teams = append(teams, &team)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET name = $1, description = $2, sport_type = $3, updated_at = NOW()
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, team.Name, team.Description, team.SportType, team.ID)
	if err != nil {
		if mapped := constraintError(err, pqUniqueViolation, "teams_tournament_id_name_key", ErrTeamNameConflict); mapped != nil {
			return mapped
		}
		return storeError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, teamID)
	if err != nil {
		return storeError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM team_invitations WHERE team_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete invitations for team %d: %w", id, storeError(err))
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete members for team %d: %w", id, storeError(err))
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete team %d: %w", id, storeError(err))
		}
		return checkAffectedRows(result, ErrTeamNotFound)
	})
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO team_members (team_id, user_id, role)
			VALUES ($1, $2, $3)
			RETURNING joined_at`

		err := tx.QueryRowContext(ctx, insert, member.TeamID, member.UserID, member.Role).Scan(&member.JoinedAt)
		if err != nil {
			if mapped := constraintError(err, pqUniqueViolation, "team_members_pkey", ErrTeamMemberConflict); mapped != nil {
				return mapped
			}
			if mapped := constraintError(err, pqForeignKeyViolation, "team_members_team_id_fkey", ErrTeamNotFound); mapped != nil {
				return mapped
			}
			return fmt.Errorf("failed to insert member row: %w", storeError(err))
		}

		// The conditional increment is the capacity check. Zero rows means
		// the team was already at max_members, and the rollback discards the
		// member row inserted above.
		increment := `
			UPDATE teams
			SET current_members = current_members + 1, updated_at = NOW()
			WHERE id = $1 AND current_members < max_members`

		result, err := tx.ExecContext(ctx, increment, member.TeamID)
		if err != nil {
			return fmt.Errorf("failed to increment member count for team %d: %w", member.TeamID, storeError(err))
		}
		return checkAffectedRows(result, ErrTeamFull)
	})
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, teamID, userID int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete member row: %w", storeError(err))
		}
		if err := checkAffectedRows(result, ErrTeamMemberNotFound); err != nil {
			return err
		}

		decrement := `
			UPDATE teams
			SET current_members = current_members - 1, updated_at = NOW()
			WHERE id = $1 AND current_members > 0`

		result, err = tx.ExecContext(ctx, decrement, teamID)
		if err != nil {
			return fmt.Errorf("failed to decrement member count for team %d: %w", teamID, storeError(err))
		}
		return checkAffectedRows(result, ErrTeamNotFound)
	})
}

func (r *postgresTeamRepository) GetMember(ctx context.Context, teamID, userID int) (*models.TeamMember, error) {
	query := `
		SELECT team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1 AND user_id = $2`

	member := &models.TeamMember{}
	err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(
		&member.TeamID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, storeError(err)
	}

	return member, nil
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var member models.TeamMember
		if scanErr := rows.Scan(&member.TeamID, &member.UserID, &member.Role, &member.JoinedAt); scanErr != nil {
			return nil, storeError(scanErr)
		}
		members = append(members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return members, nil
}

func (r *postgresTeamRepository) SwapCaptain(ctx context.Context, teamID, newCaptainID, oldCaptainID int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		swap := `
			UPDATE teams
			SET captain_id = $1, updated_at = NOW()
			WHERE id = $2 AND captain_id = $3`

		result, err := tx.ExecContext(ctx, swap, newCaptainID, teamID, oldCaptainID)
		if err != nil {
			return fmt.Errorf("failed to update captain for team %d: %w", teamID, storeError(err))
		}
		if err := checkAffectedRows(result, ErrTeamCaptainMismatch); err != nil {
			return err
		}

		demote := `
			UPDATE team_members SET role = $1
			WHERE team_id = $2 AND user_id = $3 AND role = $4`
		if _, err := tx.ExecContext(ctx, demote, models.RoleMember, teamID, oldCaptainID, models.RoleCaptain); err != nil {
			return fmt.Errorf("failed to demote previous captain: %w", storeError(err))
		}

		promote := `
			UPDATE team_members SET role = $1
			WHERE team_id = $2 AND user_id = $3`
		result, err = tx.ExecContext(ctx, promote, models.RoleCaptain, teamID, newCaptainID)
		if err != nil {
			return fmt.Errorf("failed to promote new captain: %w", storeError(err))
		}
		return checkAffectedRows(result, ErrTeamMemberNotFound)
	})
}
