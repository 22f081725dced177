package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/models"
)

// ClosureActivityRepository stores closure activities
type ClosureActivityRepository struct {
	db *sqlx.DB
}

// NewClosureActivityRepository creates a new closure activity repository
func NewClosureActivityRepository(db *sqlx.DB) *ClosureActivityRepository {
	return &ClosureActivityRepository{db: db}
}

// CreateBatch bulk-inserts activities in a single statement
func (r *ClosureActivityRepository) CreateBatch(ctx context.Context, activities []*models.ClosureActivity) error {
	if len(activities) == 0 {
		return nil
	}
	query := `
		INSERT INTO closure_activities (id, user_id, title, description, completed, completed_date, category, created_at)
		VALUES (:id, :user_id, :title, :description, :completed, :completed_date, :category, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, activities)
	return mapError(err)
}

// List returns a user's activities, newest first
func (r *ClosureActivityRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.ClosureActivity, error) {
	activities := []*models.ClosureActivity{}
	query := `
		SELECT * FROM closure_activities
		WHERE user_id = $1
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &activities, query, userID)
	return activities, err
}

// GetByID returns an activity owned by userID
func (r *ClosureActivityRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ClosureActivity, error) {
	var activity models.ClosureActivity
	query := `SELECT * FROM closure_activities WHERE id = $1 AND user_id = $2`

	if err := r.db.GetContext(ctx, &activity, query, id, userID); err != nil {
		return nil, mapError(err)
	}
	return &activity, nil
}

// Update stores the completion state
func (r *ClosureActivityRepository) Update(ctx context.Context, activity *models.ClosureActivity) error {
	query := `
		UPDATE closure_activities SET completed = $3, completed_date = $4
		WHERE id = $1 AND user_id = $2`

	return expectRow(r.db.ExecContext(ctx, query,
		activity.ID, activity.UserID, activity.Completed, activity.CompletedDate,
	))
}

// CountCompleted counts finished activities
func (r *ClosureActivityRepository) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM closure_activities WHERE user_id = $1 AND completed`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

// RecentCompleted returns the most recently completed activities
func (r *ClosureActivityRepository) RecentCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ClosureActivity, error) {
	activities := []*models.ClosureActivity{}
	query := `
		SELECT * FROM closure_activities
		WHERE user_id = $1 AND completed AND completed_date IS NOT NULL
		ORDER BY completed_date DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &activities, query, userID, limit)
	return activities, err
}
