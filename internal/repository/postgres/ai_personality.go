package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/models"
)

// AIPersonalityRepository stores per-user companion settings
type AIPersonalityRepository struct {
	db *sqlx.DB
}

// NewAIPersonalityRepository creates a new personality repository
func NewAIPersonalityRepository(db *sqlx.DB) *AIPersonalityRepository {
	return &AIPersonalityRepository{db: db}
}

// GetByUser returns the user's personality or repository.ErrNotFound
func (r *AIPersonalityRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.AIPersonality, error) {
	var p models.AIPersonality
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM ai_personalities WHERE user_id = $1`, userID); err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// Upsert inserts or replaces the user's single personality row
func (r *AIPersonalityRepository) Upsert(ctx context.Context, p *models.AIPersonality) error {
	now := time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `
		INSERT INTO ai_personalities (
			id, user_id, tone, mood, ex_name, ex_personality_traits,
			relationship_context, created_at, updated_at
		) VALUES (
			:id, :user_id, :tone, :mood, :ex_name, :ex_personality_traits,
			:relationship_context, :created_at, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			tone = EXCLUDED.tone,
			mood = EXCLUDED.mood,
			ex_name = EXCLUDED.ex_name,
			ex_personality_traits = EXCLUDED.ex_personality_traits,
			relationship_context = EXCLUDED.relationship_context,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, p)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}
