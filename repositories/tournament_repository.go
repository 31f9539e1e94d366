package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kinekixcc/kheladi-sub001/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentTeamsFull    = errors.New("tournament team capacity reached")
	ErrTournamentPlayersFull  = errors.New("tournament participant capacity reached")
	ErrTournamentNameConflict = errors.New("tournament name already in use")
)

// TournamentRepository reads registration configuration and owns the two
// capacity counters. The increments are conditional single statements, so a
// full tournament can never be oversubscribed by concurrent registrations.
type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)

	IncrementTeamCount(ctx context.Context, id int) error
	DecrementTeamCount(ctx context.Context, id int) error
	IncrementParticipantCount(ctx context.Context, id int) error
	DecrementParticipantCount(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, description, sport_type, organizer_id, registration_mode,
	entry_fee_type, entry_fee, max_participants, current_participants,
	max_teams, current_teams, team_size_min, team_size_max, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, description, sport_type, organizer_id, registration_mode,
			entry_fee_type, entry_fee, max_participants, max_teams,
			team_size_min, team_size_max
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, current_participants, current_teams, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.SportType,
		tournament.OrganizerID,
		tournament.RegistrationMode,
		tournament.EntryFeeType,
		tournament.EntryFee,
		tournament.MaxParticipants,
		tournament.MaxTeams,
		tournament.TeamSizeMin,
		tournament.TeamSizeMax,
	).Scan(&tournament.ID, &tournament.CurrentParticipants, &tournament.CurrentTeams, &tournament.CreatedAt)

	if err != nil {
		if mapped := constraintError(err, pqUniqueViolation, "tournaments_name_key", ErrTournamentNameConflict); mapped != nil {
			return mapped
		}
		return storeError(err)
	}

	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	tournament := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tournament.ID,
		&tournament.Name,
		&tournament.Description,
		&tournament.SportType,
		&tournament.OrganizerID,
		&tournament.RegistrationMode,
		&tournament.EntryFeeType,
		&tournament.EntryFee,
		&tournament.MaxParticipants,
		&tournament.CurrentParticipants,
		&tournament.MaxTeams,
		&tournament.CurrentTeams,
		&tournament.TeamSizeMin,
		&tournament.TeamSizeMax,
		&tournament.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, storeError(err)
	}

	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var tournament models.Tournament
		if scanErr := rows.Scan(
			&tournament.ID,
			&tournament.Name,
			&tournament.Description,
			&tournament.SportType,
			&tournament.OrganizerID,
			&tournament.RegistrationMode,
			&tournament.EntryFeeType,
			&tournament.EntryFee,
			&tournament.MaxParticipants,
			&tournament.CurrentParticipants,
			&tournament.MaxTeams,
			&tournament.CurrentTeams,
			&tournament.TeamSizeMin,
			&tournament.TeamSizeMax,
			&tournament.CreatedAt,
		); scanErr != nil {
			return nil, storeError(scanErr)
		}
		tournaments = append(tournaments, &tournament)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return tournaments, nil
}

func (r *postgresTournamentRepository) IncrementTeamCount(ctx context.Context, id int) error {
	query := `
		UPDATE tournaments
		SET current_teams = current_teams + 1
		WHERE id = $1 AND current_teams < max_teams`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return storeError(err)
	}
	return checkAffectedRows(result, ErrTournamentTeamsFull)
}

func (r *postgresTournamentRepository) DecrementTeamCount(ctx context.Context, id int) error {
	query := `
		UPDATE tournaments
		SET current_teams = current_teams - 1
		WHERE id = $1 AND current_teams > 0`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return storeError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) IncrementParticipantCount(ctx context.Context, id int) error {
	query := `
		UPDATE tournaments
		SET current_participants = current_participants + 1
		WHERE id = $1 AND current_participants < max_participants`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return storeError(err)
	}
	return checkAffectedRows(result, ErrTournamentPlayersFull)
}

func (r *postgresTournamentRepository) DecrementParticipantCount(ctx context.Context, id int) error {
	query := `
		UPDATE tournaments
		SET current_participants = current_participants - 1
		WHERE id = $1 AND current_participants > 0`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return storeError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
