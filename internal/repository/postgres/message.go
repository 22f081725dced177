package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/models"
)

// MessageRepository reads stored chat messages
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ListBySession retrieves messages in conversation order
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	query := `
		SELECT id, session_id, seq, timestamp, sender, content, is_user
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY timestamp ASC, seq ASC`

	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	err := r.db.SelectContext(ctx, &messages, query, args...)
	return messages, err
}

// CountByUser counts messages across all of a user's sessions
func (r *MessageRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM chat_messages m
		JOIN chat_sessions s ON s.id = m.session_id
		WHERE s.user_id = $1`

	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}
