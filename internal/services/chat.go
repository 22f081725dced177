package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/afterus/afterus-backend/internal/analysis"
	"github.com/afterus/afterus-backend/internal/audit"
	"github.com/afterus/afterus-backend/internal/auth"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/repository"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// insightTTL is how long a derived report is reused; stored messages are immutable
const insightTTL = 30 * time.Minute

// ChatService manages uploaded chat exports
type ChatService struct {
	chats    repository.ChatSessionRepository
	messages repository.MessageRepository
	audit    *audit.Service
	insights *TTLCache[uuid.UUID, *analysis.InsightReport]
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(chats repository.ChatSessionRepository, messages repository.MessageRepository, auditSvc *audit.Service, logger logrus.FieldLogger) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		audit:    auditSvc,
		insights: NewTTLCache[uuid.UUID, *analysis.InsightReport](insightTTL),
		logger:   logger.WithField("component", "chat"),
		now:      time.Now,
	}
}

// Upload parses a WhatsApp export and stores it with all of its messages.
// The uploader's name decides which messages are theirs.
func (s *ChatService) Upload(ctx context.Context, user *models.User, filename string, content []byte, client auth.ClientInfo) (*models.ChatSession, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".txt") {
		return nil, ErrUnsupportedFile
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}

	messages, stats := analysis.ParseExportWithStats(string(content), user.Name)
	log := s.logger.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"filename":  filename,
		"lines":     stats.Lines,
		"parsed":    stats.Parsed,
		"unmatched": stats.Unmatched,
		"malformed": len(stats.Malformed),
	})
	if len(messages) == 0 {
		log.Info("Upload contained no messages")
		return nil, analysis.ErrNoMessagesFound
	}

	session := &models.ChatSession{
		ID:           uuid.New(),
		UserID:       user.ID,
		Filename:     filename,
		UploadDate:   s.now().UTC(),
		Participants: models.StringList(analysis.Participants(messages)),
	}
	if err := s.chats.CreateWithMessages(ctx, session, messages); err != nil {
		s.audit.Record(ctx, audit.NewEvent(audit.EventChatUpload, &user.ID, client.IPAddress, client.UserAgent).
			WithMeta("filename", filename).Failed(err))
		return nil, fmt.Errorf("store chat session: %w", err)
	}

	log.WithField("session_id", session.ID).Info("Chat export stored")
	s.audit.Record(ctx, audit.NewEvent(audit.EventChatUpload, &user.ID, client.IPAddress, client.UserAgent).
		WithResource("chat_session", session.ID).
		WithMeta("filename", filename).
		WithMeta("messages", session.TotalMessages).
		WithMeta("skipped_lines", stats.Unmatched+len(stats.Malformed)))
	return session, nil
}

// MaxChatPageLimit caps one page of sessions or messages
const MaxChatPageLimit = 100

func checkPage(limit, offset int) error {
	if limit < 1 || limit > MaxChatPageLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxChatPageLimit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrValidation)
	}
	return nil
}

// List returns the user's sessions, newest upload first
func (s *ChatService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ChatSession, error) {
	if err := checkPage(limit, offset); err != nil {
		return nil, err
	}
	return s.chats.ListByUser(ctx, userID, limit, offset)
}

// Get loads one owned session
func (s *ChatService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*models.ChatSession, error) {
	session, err := s.chats.GetByID(ctx, userID, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	return session, err
}

// Detail loads a session with every message
func (s *ChatService) Detail(ctx context.Context, userID, sessionID uuid.UUID) (*models.ChatSessionDetail, error) {
	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.ListBySession(ctx, sessionID, 0, 0)
	if err != nil {
		return nil, err
	}
	return &models.ChatSessionDetail{ChatSession: *session, Messages: messages}, nil
}

// Messages pages through an owned session's messages
func (s *ChatService) Messages(ctx context.Context, userID, sessionID uuid.UUID, limit, offset int) ([]models.ChatMessage, error) {
	if err := checkPage(limit, offset); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.messages.ListBySession(ctx, sessionID, limit, offset)
}

// Delete removes a session and its messages
func (s *ChatService) Delete(ctx context.Context, userID, sessionID uuid.UUID, client auth.ClientInfo) error {
	if err := s.chats.Delete(ctx, userID, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChatNotFound
		}
		return err
	}
	s.insights.Delete(sessionID)
	s.audit.Record(ctx, audit.NewEvent(audit.EventChatDelete, &userID, client.IPAddress, client.UserAgent).
		WithResource("chat_session", sessionID))
	return nil
}

// Export writes a session and its messages to w as JSON or YAML
func (s *ChatService) Export(ctx context.Context, userID, sessionID uuid.UUID, format string, w io.Writer) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	detail, err := s.Detail(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(detail); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	}
}

// Insights derives the relationship report for an owned session
func (s *ChatService) Insights(ctx context.Context, userID, sessionID uuid.UUID) (*analysis.InsightReport, error) {
	if _, err := s.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	if report, ok := s.insights.Get(sessionID); ok {
		return report, nil
	}

	stored, err := s.messages.ListBySession(ctx, sessionID, 0, 0)
	if err != nil {
		return nil, err
	}
	report, err := analysis.DeriveInsights(models.Parsed(stored))
	if err != nil {
		return nil, err
	}
	s.insights.Set(sessionID, report)
	return report, nil
}

// PurgeInsights drops expired cached reports
func (s *ChatService) PurgeInsights() int {
	return s.insights.Purge()
}
