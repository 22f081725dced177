package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/afterus/afterus-backend/internal/models"
)

const (
	insertAuditLog = `
	INSERT INTO audit_logs (
		id, user_id, action, resource_type, resource_id, ip_address,
		user_agent, metadata, status, error_message, created_at
	) VALUES (
		:id, :user_id, :action, :resource_type, :resource_id, :ip_address,
		:user_agent, :metadata, :status, :error_message, :created_at
	)`

	auditColumns = `id, user_id, action, resource_type, resource_id, ip_address,
		user_agent, metadata, status, error_message, created_at`
)

// AuditLogRepository is the append-only event trail
type AuditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Log appends one entry, filling in the id, timestamp and metadata when unset
func (r *AuditLogRepository) Log(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Metadata == nil {
		entry.Metadata = models.JSONB{}
	}
	_, err := r.db.NamedExecContext(ctx, insertAuditLog, entry)
	return mapError(err)
}

// ListForUser returns the user's newest entries first
func (r *AuditLogRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuditLog, error) {
	entries := []*models.AuditLog{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT `+auditColumns+` FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	return entries, mapError(err)
}

// DeleteBefore drops entries created before cutoff
func (r *AuditLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}
