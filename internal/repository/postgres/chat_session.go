package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/database"
	"github.com/afterus/afterus-backend/internal/models"
)

// messageBatchSize keeps each bulk insert well under the 65535 bind
// parameter limit
const messageBatchSize = 1000

// ChatSessionRepository stores uploaded chat exports
type ChatSessionRepository struct {
	db *sqlx.DB
}

// NewChatSessionRepository creates a new chat session repository
func NewChatSessionRepository(db *sqlx.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

// CreateWithMessages inserts the session and its messages atomically
func (r *ChatSessionRepository) CreateWithMessages(ctx context.Context, session *models.ChatSession, messages []models.ParsedMessage) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.TotalMessages = len(messages)

	rows := make([]models.ChatMessage, len(messages))
	for i, m := range messages {
		rows[i] = models.ChatMessage{
			ID:            uuid.New(),
			SessionID:     session.ID,
			Seq:           i,
			ParsedMessage: m,
		}
	}

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO chat_sessions (id, user_id, filename, upload_date, total_messages, participants)
			VALUES (:id, :user_id, :filename, :upload_date, :total_messages, :participants)`,
			session)
		if err != nil {
			return fmt.Errorf("insert chat session: %w", mapError(err))
		}

		for start := 0; start < len(rows); start += messageBatchSize {
			end := min(start+messageBatchSize, len(rows))
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO chat_messages (id, session_id, seq, timestamp, sender, content, is_user)
				VALUES (:id, :session_id, :seq, :timestamp, :sender, :content, :is_user)`,
				rows[start:end])
			if err != nil {
				return fmt.Errorf("insert chat messages: %w", err)
			}
		}
		return nil
	})
}

// GetByID returns the session when it belongs to userID
func (r *ChatSessionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	query := `SELECT * FROM chat_sessions WHERE id = $1 AND user_id = $2`

	if err := r.db.GetContext(ctx, &session, query, id, userID); err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}

// ListByUser lists sessions newest upload first
func (r *ChatSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ChatSession, error) {
	sessions := []*models.ChatSession{}
	query := `
		SELECT * FROM chat_sessions
		WHERE user_id = $1
		ORDER BY upload_date DESC
		LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &sessions, query, userID, limit, offset)
	return sessions, err
}

// Delete removes the session; messages go with it through the cascade
func (r *ChatSessionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM chat_sessions WHERE id = $1 AND user_id = $2`
	return expectRow(r.db.ExecContext(ctx, query, id, userID))
}

// CountByUser counts a user's uploads
func (r *ChatSessionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chat_sessions WHERE user_id = $1`, userID)
	return count, err
}
