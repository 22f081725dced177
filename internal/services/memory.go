package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/analysis"
	"github.com/afterus/afterus-backend/internal/audit"
	"github.com/afterus/afterus-backend/internal/auth"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/repository"
)

// Memory listing bounds
const (
	DefaultMemoryLimit = 20
	MaxMemoryLimit     = 100
)

// CreateMemoryRequest is a hand-entered memory
type CreateMemoryRequest struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Date         time.Time          `json:"date"`
	Type         *models.MemoryType `json:"type"`
	Mood         *string            `json:"mood"`
	Participants []string           `json:"participants"`
	ImageURL     *string            `json:"image_url"`
}

// MemoryService manages memories
type MemoryService struct {
	memories repository.MemoryRepository
	chats    repository.ChatSessionRepository
	messages repository.MessageRepository
	audit    *audit.Service
	logger   logrus.FieldLogger
}

// NewMemoryService creates a new memory service
func NewMemoryService(memories repository.MemoryRepository, chats repository.ChatSessionRepository, messages repository.MessageRepository, auditSvc *audit.Service, logger logrus.FieldLogger) *MemoryService {
	return &MemoryService{
		memories: memories,
		chats:    chats,
		messages: messages,
		audit:    auditSvc,
		logger:   logger.WithField("component", "memory"),
	}
}

// List returns memories, optionally of one type. rawType is validated here.
func (s *MemoryService) List(ctx context.Context, userID uuid.UUID, rawType string, limit, offset int) ([]*models.Memory, error) {
	filter := models.MemoryFilter{Limit: limit, Offset: offset}
	if limit < 1 || limit > MaxMemoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxMemoryLimit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrValidation)
	}
	if rawType != "" {
		t, err := models.ParseMemoryType(rawType)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid memory type: %s", ErrValidation, rawType)
		}
		filter.Type = &t
	}
	return s.memories.List(ctx, userID, filter)
}

// Create stores a hand-entered memory
func (s *MemoryService) Create(ctx context.Context, userID uuid.UUID, req CreateMemoryRequest) (*models.Memory, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	kind := models.MemoryOther
	if req.Type != nil {
		t, err := models.ParseMemoryType(string(*req.Type))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		kind = t
	}
	participants := req.Participants
	if participants == nil {
		participants = []string{}
	}

	memory := &models.Memory{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Type:         kind,
		Mood:         req.Mood,
		Participants: models.StringList(participants),
		ImageURL:     req.ImageURL,
	}
	if err := s.memories.Create(ctx, memory); err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}
	return memory, nil
}

// Update applies a partial edit to an owned memory
func (s *MemoryService) Update(ctx context.Context, userID, memoryID uuid.UUID, upd models.MemoryUpdate) (*models.Memory, error) {
	memory, err := s.memories.GetByID(ctx, userID, memoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	if upd.Type != nil {
		if _, err := models.ParseMemoryType(string(*upd.Type)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	upd.Apply(memory)
	if err := s.memories.Update(ctx, memory); err != nil {
		return nil, fmt.Errorf("update memory: %w", err)
	}
	return memory, nil
}

// Delete removes an owned memory
func (s *MemoryService) Delete(ctx context.Context, userID, memoryID uuid.UUID) error {
	err := s.memories.Delete(ctx, userID, memoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMemoryNotFound
	}
	return err
}

// Extract runs the memory extractor over a stored session and saves the
// results in one batch. A session with no messages yields no memories.
func (s *MemoryService) Extract(ctx context.Context, userID, sessionID uuid.UUID, client auth.ClientInfo) ([]*models.Memory, error) {
	if _, err := s.chats.GetByID(ctx, userID, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	stored, err := s.messages.ListBySession(ctx, sessionID, 0, 0)
	if err != nil {
		return nil, err
	}
	candidates, err := analysis.ExtractMemories(models.Parsed(stored))
	if errors.Is(err, analysis.ErrEmptyInput) {
		return []*models.Memory{}, nil
	}
	if err != nil {
		return nil, err
	}

	memories := make([]*models.Memory, len(candidates))
	for i, c := range candidates {
		sid := sessionID
		memories[i] = &models.Memory{
			ID:                uuid.New(),
			UserID:            userID,
			Title:             c.Title,
			Description:       c.Description,
			Date:              c.Date,
			Type:              c.Type,
			Participants:      models.StringList(c.Participants),
			ExtractedFromChat: true,
			ChatSessionID:     &sid,
		}
	}
	if len(memories) > 0 {
		if err := s.memories.CreateBatch(ctx, memories); err != nil {
			return nil, fmt.Errorf("store extracted memories: %w", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": sessionID,
		"messages":   len(stored),
		"memories":   len(memories),
	}).Info("Memories extracted")
	s.audit.Record(ctx, audit.NewEvent(audit.EventMemoryExtract, &userID, client.IPAddress, client.UserAgent).
		WithResource("chat_session", sessionID).
		WithMeta("memories", len(memories)))
	return memories, nil
}
