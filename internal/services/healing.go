package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/audit"
	"github.com/afterus/afterus-backend/internal/auth"
	"github.com/afterus/afterus-backend/internal/healing"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/repository"
)

// CreateNoContactRequest logs one calendar day
type CreateNoContactRequest struct {
	Date    time.Time `json:"date"`
	Success bool      `json:"success"`
	Mood    *string   `json:"mood"`
	Notes   *string   `json:"notes"`
}

// HealingService covers no-contact tracking, closure activities and the
// companion personality
type HealingService struct {
	noContact     repository.NoContactRepository
	activities    repository.ClosureActivityRepository
	personalities repository.AIPersonalityRepository
	audit         *audit.Service
	logger        logrus.FieldLogger
	now           func() time.Time
}

// NewHealingService creates a new healing service
func NewHealingService(noContact repository.NoContactRepository, activities repository.ClosureActivityRepository, personalities repository.AIPersonalityRepository, auditSvc *audit.Service, logger logrus.FieldLogger) *HealingService {
	return &HealingService{
		noContact:     noContact,
		activities:    activities,
		personalities: personalities,
		audit:         auditSvc,
		logger:        logger.WithField("component", "healing"),
		now:           time.Now,
	}
}

// ListNoContactDays returns logged days inside dates, newest first
func (s *HealingService) ListNoContactDays(ctx context.Context, userID uuid.UUID, dates models.DateRange) ([]*models.NoContactDay, error) {
	return s.noContact.List(ctx, userID, dates)
}

// LogNoContactDay records a day. A second entry for the same date is
// rejected with ErrNoContactExists.
func (s *HealingService) LogNoContactDay(ctx context.Context, userID uuid.UUID, req CreateNoContactRequest, client auth.ClientInfo) (*models.NoContactDay, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	day := &models.NoContactDay{
		ID:      uuid.New(),
		UserID:  userID,
		Date:    healing.Day(req.Date),
		Success: req.Success,
		Mood:    req.Mood,
		Notes:   req.Notes,
	}
	if err := s.noContact.Create(ctx, day); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNoContactExists
		}
		return nil, fmt.Errorf("log no-contact day: %w", err)
	}

	s.audit.Record(ctx, audit.NewEvent(audit.EventNoContactLog, &userID, client.IPAddress, client.UserAgent).
		WithResource("no_contact_day", day.ID).
		WithMeta("date", day.Date.Format(time.DateOnly)).
		WithMeta("success", day.Success))
	return day, nil
}

// allDays loads the whole log for streak maths
func (s *HealingService) allDays(ctx context.Context, userID uuid.UUID) ([]models.NoContactDay, error) {
	rows, err := s.noContact.List(ctx, userID, models.DateRange{})
	if err != nil {
		return nil, err
	}
	return derefDays(rows), nil
}

func derefDays(rows []*models.NoContactDay) []models.NoContactDay {
	out := make([]models.NoContactDay, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}

// Streak computes the streak summary as of today
func (s *HealingService) Streak(ctx context.Context, userID uuid.UUID) (healing.StreakSummary, error) {
	days, err := s.allDays(ctx, userID)
	if err != nil {
		return healing.StreakSummary{}, err
	}
	return healing.ComputeStreak(days, s.now()), nil
}

// ListActivities returns closure activities, newest first
func (s *HealingService) ListActivities(ctx context.Context, userID uuid.UUID) ([]*models.ClosureActivity, error) {
	return s.activities.List(ctx, userID)
}

// UpdateActivity completes or reopens an activity
func (s *HealingService) UpdateActivity(ctx context.Context, userID, activityID uuid.UUID, upd models.ActivityUpdate) (*models.ClosureActivity, error) {
	activity, err := s.activities.GetByID(ctx, userID, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	if err := healing.ApplyActivityUpdate(ctx, activity, upd, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("apply activity update: %w", err)
	}
	if err := s.activities.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}
	return activity, nil
}

// SeedDefaults gives a new account the starter activity list. It is
// registered as a signup hook.
func (s *HealingService) SeedDefaults(ctx context.Context, user *models.User) error {
	activities := healing.DefaultActivities(user.ID, s.now().UTC())
	if err := s.activities.CreateBatch(ctx, activities); err != nil {
		return fmt.Errorf("seed closure activities: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "count": len(activities)}).Debug("Seeded closure activities")
	return nil
}

func defaultPersonality(userID uuid.UUID) *models.AIPersonality {
	return &models.AIPersonality{UserID: userID, Tone: models.DefaultTone, Mood: models.DefaultMood}
}

// Personality returns the companion settings, creating the defaults on
// first read
func (s *HealingService) Personality(ctx context.Context, userID uuid.UUID) (*models.AIPersonality, error) {
	p, err := s.personalities.GetByUser(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	p = defaultPersonality(userID)
	if err := s.personalities.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("create default personality: %w", err)
	}
	return p, nil
}

// UpdatePersonality applies the provided fields, creating the row if needed
func (s *HealingService) UpdatePersonality(ctx context.Context, userID uuid.UUID, upd models.PersonalityUpdate) (*models.AIPersonality, error) {
	p, err := s.personalities.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		p, err = defaultPersonality(userID), nil
	}
	if err != nil {
		return nil, err
	}

	if upd.Tone != nil {
		tone, err := models.ParseTone(*upd.Tone)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		p.Tone = tone
	}
	if upd.Mood != nil {
		mood := strings.TrimSpace(*upd.Mood)
		if mood == "" {
			return nil, fmt.Errorf("%w: mood must not be empty", ErrValidation)
		}
		p.Mood = mood
	}
	if upd.ExName != nil {
		p.ExName = upd.ExName
	}
	if upd.ExPersonalityTraits != nil {
		p.ExPersonalityTraits = upd.ExPersonalityTraits
	}
	if upd.RelationshipContext != nil {
		p.RelationshipContext = upd.RelationshipContext
	}

	if err := s.personalities.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save personality: %w", err)
	}
	return p, nil
}
