package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/repository"
)

// EventType represents the type of audit event
type EventType string

const (
	EventLogin          EventType = "user.login"
	EventLoginFailed    EventType = "user.login_failed"
	EventLogout         EventType = "user.logout"
	EventSignup         EventType = "user.signup"
	EventPasswordChange EventType = "user.password_change"
	EventProfileUpdate  EventType = "user.profile_update"
	EventChatUpload     EventType = "chat.upload"
	EventChatDelete     EventType = "chat.delete"
	EventMemoryExtract  EventType = "memory.extract"
	EventNoContactLog   EventType = "healing.no_contact"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event *Event) error
}

// Event represents an audit event
type Event struct {
	ID         uuid.UUID              `json:"id"`
	EventType  EventType              `json:"event_type"`
	UserID     *uuid.UUID             `json:"user_id,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Resource   string                 `json:"resource,omitempty"`
	ResourceID *uuid.UUID             `json:"resource_id,omitempty"`
	Result     string                 `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// WithResource tags the event with the affected record
func (e *Event) WithResource(kind string, id uuid.UUID) *Event {
	e.Resource = kind
	e.ResourceID = &id
	return e
}

// WithMeta adds a metadata key
func (e *Event) WithMeta(key string, value interface{}) *Event {
	e.Metadata[key] = value
	return e
}

// Failed marks the event as an error outcome
func (e *Event) Failed(err error) *Event {
	e.Result = ResultError
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Service writes events through the audit repository
type Service struct {
	repo   repository.AuditRepository
	logger logrus.FieldLogger
}

func NewService(repo repository.AuditRepository, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.WithField("component", "audit"),
	}
}

// Log persists event
func (s *Service) Log(ctx context.Context, event *Event) error {
	return s.repo.Log(ctx, event.toLog())
}

// Record logs the event and only warns on failure; audit trouble never
// fails the request that triggered it
func (s *Service) Record(ctx context.Context, event *Event) {
	if err := s.Log(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event", event.EventType).Warn("Failed to write audit event")
	}
}

// History returns up to limit of the user's events, newest first
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*Event, error) {
	logs, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	events := make([]*Event, len(logs))
	for i, l := range logs {
		events[i] = fromLog(l)
	}
	return events, nil
}

// Purge deletes events older than retention
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteBefore(ctx, time.Now().Add(-retention))
}

func (e *Event) toLog() *models.AuditLog {
	return &models.AuditLog{
		ID:           e.ID,
		UserID:       e.UserID,
		Action:       string(e.EventType),
		ResourceType: e.Resource,
		ResourceID:   e.ResourceID,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		Metadata:     models.JSONB(e.Metadata),
		Status:       e.Result,
		ErrorMessage: e.Error,
		CreatedAt:    e.CreatedAt,
	}
}

func fromLog(l *models.AuditLog) *Event {
	return &Event{
		ID:         l.ID,
		EventType:  EventType(l.Action),
		UserID:     l.UserID,
		IPAddress:  l.IPAddress,
		UserAgent:  l.UserAgent,
		Resource:   l.ResourceType,
		ResourceID: l.ResourceID,
		Result:     l.Status,
		Error:      l.ErrorMessage,
		Metadata:   map[string]interface{}(l.Metadata),
		CreatedAt:  l.CreatedAt,
	}
}

// NewEvent creates a successful event; chain Failed to flip the result
func NewEvent(eventType EventType, userID *uuid.UUID, ipAddress, userAgent string) *Event {
	return &Event{
		ID:        uuid.New(),
		EventType: eventType,
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Result:    ResultSuccess,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
	}
}
