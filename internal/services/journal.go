package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/afterus/afterus-backend/internal/healing"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/repository"
)

// JournalRequest creates or edits an entry; nil fields are left alone on edit
type JournalRequest struct {
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
}

// JournalService manages journal entries
type JournalService struct {
	entries repository.JournalRepository
}

// NewJournalService creates a new journal service
func NewJournalService(entries repository.JournalRepository) *JournalService {
	return &JournalService{entries: entries}
}

// List returns entries, newest date first
func (s *JournalService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.JournalEntry, error) {
	return s.entries.List(ctx, userID, limit, offset)
}

// Create stores a new entry. Both fields are required.
func (s *JournalService) Create(ctx context.Context, userID uuid.UUID, req JournalRequest) (*models.JournalEntry, error) {
	if req.Description == nil || strings.TrimSpace(*req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if req.Date == nil || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	entry := &models.JournalEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Description: *req.Description,
		Date:        healing.Day(*req.Date),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	return entry, nil
}

// Update edits an owned entry
func (s *JournalService) Update(ctx context.Context, userID, entryID uuid.UUID, req JournalRequest) (*models.JournalEntry, error) {
	entry, err := s.entries.GetByID(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, err
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Date != nil {
		entry.Date = healing.Day(*req.Date)
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update journal entry: %w", err)
	}
	return entry, nil
}

// Delete removes an owned entry
func (s *JournalService) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	err := s.entries.Delete(ctx, userID, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrJournalNotFound
	}
	return err
}
