package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/models"
)

const userColumns = `
	id, email, name, password_hash, is_active,
	profile_picture, ex_name, ex_picture, ex_nickname,
	created_at, updated_at, last_login_at`

// UserRepository handles user data access
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. A taken email yields repository.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			id, email, name, password_hash, is_active,
			profile_picture, ex_name, ex_picture, ex_nickname,
			created_at, updated_at
		) VALUES (
			:id, :email, :name, :password_hash, :is_active,
			:profile_picture, :ex_name, :ex_picture, :ex_nickname,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, user)
	return mapError(err)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// Update writes the mutable profile fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			name = $2,
			is_active = $3,
			profile_picture = $4,
			ex_name = $5,
			ex_picture = $6,
			ex_nickname = $7,
			updated_at = $8
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	return expectRow(r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.IsActive, user.ProfilePicture,
		user.ExName, user.ExPicture, user.ExNickname, user.UpdatedAt,
	))
}

// UpdateLastLogin updates the last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET last_login_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, time.Now())
	return err
}

// UpdatePassword updates a user's password
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	return expectRow(r.db.ExecContext(ctx, query, userID, passwordHash, time.Now()))
}
