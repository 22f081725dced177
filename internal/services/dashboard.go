package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/afterus/afterus-backend/internal/healing"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/repository"
)

// Recent activity bounds
const (
	DefaultActivityLimit = 5
	MaxActivityLimit     = 20
)

// Activity feed item types
const (
	ActivityMemory     = "memory"
	ActivityNoContact  = "no_contact"
	ActivityClosure    = "closure_activity"
	ActivityChatUpload = "chat_upload"
)

// DashboardStats is the overview shown on the home screen
type DashboardStats struct {
	SessionsCount       int                    `json:"sessions_count"`
	MessagesCount       int                    `json:"messages_count"`
	MemoriesCount       int                    `json:"memories_count"`
	NoContactStreak     int                    `json:"no_contact_streak"`
	TotalHealingDays    int                    `json:"total_healing_days"`
	CompletedActivities int                    `json:"completed_activities"`
	LastActivityDate    string                 `json:"last_activity_date"`
	MoodDistribution    map[string]int         `json:"mood_distribution"`
	WeeklyProgress      healing.WeeklyProgress `json:"weekly_progress"`
}

// Activity is one entry of the recent activity feed
type Activity struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Timestamp   time.Time              `json:"timestamp"`
	Data        map[string]interface{} `json:"data"`
}

// DashboardService aggregates across every store
type DashboardService struct {
	chats      repository.ChatSessionRepository
	messages   repository.MessageRepository
	memories   repository.MemoryRepository
	noContact  repository.NoContactRepository
	activities repository.ClosureActivityRepository
	now        func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(chats repository.ChatSessionRepository, messages repository.MessageRepository, memories repository.MemoryRepository, noContact repository.NoContactRepository, activities repository.ClosureActivityRepository) *DashboardService {
	return &DashboardService{
		chats:      chats,
		messages:   messages,
		memories:   memories,
		noContact:  noContact,
		activities: activities,
		now:        time.Now,
	}
}

// Stats computes the dashboard numbers
func (s *DashboardService) Stats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)
	if stats.SessionsCount, err = s.chats.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	if stats.MessagesCount, err = s.messages.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	if stats.MemoriesCount, err = s.memories.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("count memories: %w", err)
	}
	if stats.CompletedActivities, err = s.activities.CountCompleted(ctx, userID); err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}

	rows, err := s.noContact.List(ctx, userID, models.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("list no-contact days: %w", err)
	}
	days := derefDays(rows)
	today := s.now()
	stats.NoContactStreak = healing.ComputeStreak(days, today).CurrentStreak
	stats.TotalHealingDays = len(days)
	stats.MoodDistribution = healing.MoodDistribution(days)
	stats.WeeklyProgress = healing.Weekly(days, today)

	lastMemory, err := s.memories.LatestCreatedAt(ctx, userID)
	if err != nil {
		return nil, err
	}
	lastNoContact, err := s.noContact.LatestCreatedAt(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.LastActivityDate = "N/A"
	if last := latest(lastMemory, lastNoContact); last != nil {
		stats.LastActivityDate = last.Format(time.DateOnly)
	}

	return &stats, nil
}

// RecentActivity merges the latest items of every kind, newest first
func (s *DashboardService) RecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]Activity, error) {
	if limit < 1 || limit > MaxActivityLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxActivityLimit)
	}

	feed := []Activity{}

	memories, err := s.memories.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, m := range memories {
		feed = append(feed, Activity{
			ID:          m.ID,
			Type:        ActivityMemory,
			Description: "Created memory: " + m.Title,
			Timestamp:   m.CreatedAt,
			Data:        map[string]interface{}{"memory_type": m.Type, "mood": m.Mood},
		})
	}

	days, err := s.noContact.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, d := range days {
		status := "failed"
		if d.Success {
			status = "successful"
		}
		feed = append(feed, Activity{
			ID:          d.ID,
			Type:        ActivityNoContact,
			Description: "No contact day - " + status,
			Timestamp:   d.CreatedAt,
			Data: map[string]interface{}{
				"date":    d.Date.Format(time.DateOnly),
				"success": d.Success,
				"mood":    d.Mood,
			},
		})
	}

	completed, err := s.activities.RecentCompleted(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, a := range completed {
		ts := a.CreatedAt
		if a.CompletedDate != nil {
			ts = *a.CompletedDate
		}
		feed = append(feed, Activity{
			ID:          a.ID,
			Type:        ActivityClosure,
			Description: "Completed activity: " + a.Title,
			Timestamp:   ts,
			Data:        map[string]interface{}{"category": a.Category, "description": a.Description},
		})
	}

	sessions, err := s.chats.ListByUser(ctx, userID, limit, 0)
	if err != nil {
		return nil, err
	}
	for _, cs := range sessions {
		feed = append(feed, Activity{
			ID:          cs.ID,
			Type:        ActivityChatUpload,
			Description: "Uploaded chat: " + cs.Filename,
			Timestamp:   cs.UploadDate,
			Data: map[string]interface{}{
				"total_messages": cs.TotalMessages,
				"participants":   cs.Participants,
			},
		})
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Timestamp.After(feed[j].Timestamp) })
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

func latest(times ...*time.Time) *time.Time {
	var out *time.Time
	for _, t := range times {
		if t != nil && (out == nil || t.After(*out)) {
			out = t
		}
	}
	return out
}
