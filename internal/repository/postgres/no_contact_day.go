package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/models"
)

// NoContactDayRepository stores the daily no-contact log
type NoContactDayRepository struct {
	db *sqlx.DB
}

// NewNoContactDayRepository creates a new no-contact repository
func NewNoContactDayRepository(db *sqlx.DB) *NoContactDayRepository {
	return &NoContactDayRepository{db: db}
}

// Create inserts a day. The (user_id, date) unique index turns a second
// entry for the same date into repository.ErrDuplicate.
func (r *NoContactDayRepository) Create(ctx context.Context, day *models.NoContactDay) error {
	if day.ID == uuid.Nil {
		day.ID = uuid.New()
	}
	if day.CreatedAt.IsZero() {
		day.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO no_contact_days (id, user_id, date, success, mood, notes, created_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		day.ID, day.UserID, day.Date.Format(time.DateOnly), day.Success,
		day.Mood, day.Notes, day.CreatedAt,
	)
	return mapError(err)
}

// List returns entries in the range, newest date first
func (r *NoContactDayRepository) List(ctx context.Context, userID uuid.UUID, dates models.DateRange) ([]*models.NoContactDay, error) {
	days := []*models.NoContactDay{}
	query := `SELECT * FROM no_contact_days WHERE user_id = $1`
	args := []interface{}{userID}

	if dates.Start != nil {
		args = append(args, dates.Start.Format(time.DateOnly))
		query += fmt.Sprintf(` AND date >= $%d::date`, len(args))
	}
	if dates.End != nil {
		args = append(args, dates.End.Format(time.DateOnly))
		query += fmt.Sprintf(` AND date <= $%d::date`, len(args))
	}
	query += ` ORDER BY date DESC`

	err := r.db.SelectContext(ctx, &days, query, args...)
	return days, err
}

// Recent returns the latest logged days
func (r *NoContactDayRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.NoContactDay, error) {
	days := []*models.NoContactDay{}
	query := `
		SELECT * FROM no_contact_days
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &days, query, userID, limit)
	return days, err
}

// LatestCreatedAt returns the newest created_at, or nil when there are none
func (r *NoContactDayRepository) LatestCreatedAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var latest *time.Time
	err := r.db.GetContext(ctx, &latest, `SELECT MAX(created_at) FROM no_contact_days WHERE user_id = $1`, userID)
	return latest, err
}
