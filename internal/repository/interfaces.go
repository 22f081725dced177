package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/afterus/afterus-backend/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert hits a unique constraint
	ErrDuplicate = errors.New("record already exists")
)

// UserRepository defines user storage operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// UserSessionRepository defines auth session storage operations
type UserSessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error)
	Update(ctx context.Context, session *models.UserSession) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuditRepository persists audit events
type AuditRepository interface {
	Log(ctx context.Context, entry *models.AuditLog) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuditLog, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ChatSessionRepository stores uploaded exports. Every lookup is scoped to
// the owning user.
type ChatSessionRepository interface {
	// CreateWithMessages writes the session and all of its messages in one
	// transaction. TotalMessages is set from len(messages).
	CreateWithMessages(ctx context.Context, session *models.ChatSession, messages []models.ParsedMessage) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ChatSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ChatSession, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// MessageRepository reads stored messages
type MessageRepository interface {
	// ListBySession returns messages ordered by timestamp then file order.
	// A limit of zero or less returns every message.
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]models.ChatMessage, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// MemoryRepository stores memories
type MemoryRepository interface {
	Create(ctx context.Context, memory *models.Memory) error
	CreateBatch(ctx context.Context, memories []*models.Memory) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Memory, error)
	List(ctx context.Context, userID uuid.UUID, filter models.MemoryFilter) ([]*models.Memory, error)
	Update(ctx context.Context, memory *models.Memory) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	// Recent returns the most recently created memories
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error)
	LatestCreatedAt(ctx context.Context, userID uuid.UUID) (*time.Time, error)
}

// NoContactRepository stores the daily no-contact log
type NoContactRepository interface {
	// Create returns ErrDuplicate when the user already logged that date
	Create(ctx context.Context, day *models.NoContactDay) error
	// List returns entries inside the range, newest date first
	List(ctx context.Context, userID uuid.UUID, dates models.DateRange) ([]*models.NoContactDay, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.NoContactDay, error)
	LatestCreatedAt(ctx context.Context, userID uuid.UUID) (*time.Time, error)
}

// ClosureActivityRepository stores closure activities
type ClosureActivityRepository interface {
	CreateBatch(ctx context.Context, activities []*models.ClosureActivity) error
	List(ctx context.Context, userID uuid.UUID) ([]*models.ClosureActivity, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ClosureActivity, error)
	Update(ctx context.Context, activity *models.ClosureActivity) error
	CountCompleted(ctx context.Context, userID uuid.UUID) (int, error)
	RecentCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ClosureActivity, error)
}

// AIPersonalityRepository stores the per-user companion settings
type AIPersonalityRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.AIPersonality, error)
	Upsert(ctx context.Context, personality *models.AIPersonality) error
}

// JournalRepository stores journal entries
type JournalRepository interface {
	Create(ctx context.Context, entry *models.JournalEntry) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.JournalEntry, error)
	Update(ctx context.Context, entry *models.JournalEntry) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
