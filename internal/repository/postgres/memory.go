package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/database"
	"github.com/afterus/afterus-backend/internal/models"
)

const insertMemory = `
	INSERT INTO memories (
		id, user_id, title, description, date, type, mood, participants,
		image_url, extracted_from_chat, chat_session_id, created_at, updated_at
	) VALUES (
		:id, :user_id, :title, :description, :date, :type, :mood, :participants,
		:image_url, :extracted_from_chat, :chat_session_id, :created_at, :updated_at
	)`

// MemoryRepository handles memory data access
type MemoryRepository struct {
	db *sqlx.DB
}

// NewMemoryRepository creates a new memory repository
func NewMemoryRepository(db *sqlx.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

func stampMemory(m *models.Memory, now time.Time) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// Create inserts a single memory
func (r *MemoryRepository) Create(ctx context.Context, memory *models.Memory) error {
	stampMemory(memory, time.Now())
	_, err := r.db.NamedExecContext(ctx, insertMemory, memory)
	return mapError(err)
}

// CreateBatch inserts all memories in one transaction
func (r *MemoryRepository) CreateBatch(ctx context.Context, memories []*models.Memory) error {
	if len(memories) == 0 {
		return nil
	}
	now := time.Now()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, m := range memories {
			stampMemory(m, now)
			if _, err := tx.NamedExecContext(ctx, insertMemory, m); err != nil {
				return fmt.Errorf("insert memory: %w", mapError(err))
			}
		}
		return nil
	})
}

// GetByID returns a memory owned by userID
func (r *MemoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Memory, error) {
	var memory models.Memory
	query := `SELECT * FROM memories WHERE id = $1 AND user_id = $2`

	if err := r.db.GetContext(ctx, &memory, query, id, userID); err != nil {
		return nil, mapError(err)
	}
	return &memory, nil
}

// List returns memories newest date first, optionally filtered by type
func (r *MemoryRepository) List(ctx context.Context, userID uuid.UUID, filter models.MemoryFilter) ([]*models.Memory, error) {
	memories := []*models.Memory{}
	query := `SELECT * FROM memories WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	err := r.db.SelectContext(ctx, &memories, query, args...)
	return memories, err
}

// Update writes every editable field
func (r *MemoryRepository) Update(ctx context.Context, memory *models.Memory) error {
	memory.UpdatedAt = time.Now()
	query := `
		UPDATE memories SET
			title = :title,
			description = :description,
			date = :date,
			type = :type,
			mood = :mood,
			participants = :participants,
			image_url = :image_url,
			updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`

	return expectRow(r.db.NamedExecContext(ctx, query, memory))
}

// Delete removes a memory owned by userID
func (r *MemoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM memories WHERE id = $1 AND user_id = $2`
	return expectRow(r.db.ExecContext(ctx, query, id, userID))
}

// CountByUser counts a user's memories
func (r *MemoryRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM memories WHERE user_id = $1`, userID)
	return count, err
}

// Recent returns the latest created memories
func (r *MemoryRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error) {
	memories := []*models.Memory{}
	query := `
		SELECT * FROM memories
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &memories, query, userID, limit)
	return memories, err
}

// LatestCreatedAt returns the newest created_at, or nil when there are none
func (r *MemoryRepository) LatestCreatedAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var latest *time.Time
	err := r.db.GetContext(ctx, &latest, `SELECT MAX(created_at) FROM memories WHERE user_id = $1`, userID)
	return latest, err
}
