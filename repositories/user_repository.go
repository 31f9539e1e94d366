package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kinekixcc/kheladi-sub001/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("email address already in use")
)

// UserRepository is the account store and doubles as the directory
// collaborator: GetByEmail is how invitation issuance resolves an invitee.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (full_name, email, phone, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.FullName,
		user.Email,
		user.Phone,
		user.Role,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if mapped := constraintError(err, pqUniqueViolation, "users_email_key", ErrUserEmailConflict); mapped != nil {
			return mapped
		}
		return storeError(err)
	}

	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, full_name, email, phone, role, password_hash, created_at
		FROM users
		WHERE id = $1`

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, full_name, email, phone, role, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)`

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return user, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET full_name = $1, email = $2, phone = $3, role = $4, password_hash = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		user.FullName,
		user.Email,
		user.Phone,
		user.Role,
		user.PasswordHash,
		user.ID,
	)
	if err != nil {
		if mapped := constraintError(err, pqUniqueViolation, "users_email_key", ErrUserEmailConflict); mapped != nil {
			return mapped
		}
		return storeError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
