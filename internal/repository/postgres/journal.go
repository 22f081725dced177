package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/models"
)

// JournalRepository stores journal entries
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Create inserts an entry
func (r *JournalRepository) Create(ctx context.Context, entry *models.JournalEntry) error {
	now := time.Now()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt, entry.UpdatedAt = now, now

	query := `
		INSERT INTO journal_entries (id, user_id, description, date, created_at, updated_at)
		VALUES (:id, :user_id, :description, :date, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	return mapError(err)
}

// GetByID returns an entry owned by userID
func (r *JournalRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	query := `SELECT * FROM journal_entries WHERE id = $1 AND user_id = $2`

	if err := r.db.GetContext(ctx, &entry, query, id, userID); err != nil {
		return nil, mapError(err)
	}
	return &entry, nil
}

// List returns entries newest date first
func (r *JournalRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.JournalEntry, error) {
	entries := []*models.JournalEntry{}
	query := `
		SELECT * FROM journal_entries
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &entries, query, userID, limit, offset)
	return entries, err
}

// Update writes the description and date
func (r *JournalRepository) Update(ctx context.Context, entry *models.JournalEntry) error {
	entry.UpdatedAt = time.Now()
	query := `
		UPDATE journal_entries SET description = $3, date = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2`

	return expectRow(r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Description, entry.Date, entry.UpdatedAt,
	))
}

// Delete removes an entry owned by userID
func (r *JournalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`
	return expectRow(r.db.ExecContext(ctx, query, id, userID))
}
