package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/models"
)

func TestDashboardService_Empty(t *testing.T) {
	f := newFixture(t)
	svc := NewDashboardService(f.store.Chats(), f.store.Messages(), f.store.Memories(), f.store.NoContact(), f.store.Activities())

	stats, err := svc.Stats(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "N/A", stats.LastActivityDate)
	assert.Zero(t, stats.SessionsCount)
	assert.NotNil(t, stats.MoodDistribution)

	feed, err := svc.RecentActivity(context.Background(), f.user.ID, DefaultActivityLimit)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestDashboardService_StatsAndFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDashboardService(f.store.Chats(), f.store.Messages(), f.store.Memories(), f.store.NoContact(), f.store.Activities())
	today := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return today }
	userID := f.user.ID

	session := &models.ChatSession{ID: uuid.New(), UserID: userID, Filename: "chat.txt", UploadDate: today.Add(-4 * time.Hour)}
	require.NoError(t, f.store.Chats().CreateWithMessages(ctx, session, []models.ParsedMessage{
		{Timestamp: today, Sender: "Alex", Content: "hi"},
		{Timestamp: today, Sender: "Sam", Content: "hey", IsUser: true},
	}))

	require.NoError(t, f.store.Memories().Create(ctx, &models.Memory{
		UserID: userID, Title: "Picnic", Date: today, Type: models.MemorySweetMoment,
		CreatedAt: today.Add(-1 * time.Hour),
	}))

	calm, sad := "calm", "sad"
	for i, mood := range []*string{&calm, &calm, &sad} {
		require.NoError(t, f.store.NoContact().Create(ctx, &models.NoContactDay{
			UserID: userID, Date: today.AddDate(0, 0, -i), Success: true, Mood: mood,
			CreatedAt: today.Add(-time.Duration(10+i) * time.Hour),
		}))
	}

	completedAt := today.Add(-2 * time.Hour)
	require.NoError(t, f.store.Activities().CreateBatch(ctx, []*models.ClosureActivity{{
		ID: uuid.New(), UserID: userID, Title: "Write a letter", Category: models.CategoryEmotional,
		Completed: true, CompletedDate: &completedAt, CreatedAt: today.AddDate(0, 0, -5),
	}}))

	stats, err := svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SessionsCount)
	assert.Equal(t, 2, stats.MessagesCount)
	assert.Equal(t, 1, stats.MemoriesCount)
	assert.Equal(t, 3, stats.NoContactStreak)
	assert.Equal(t, 3, stats.TotalHealingDays)
	assert.Equal(t, 1, stats.CompletedActivities)
	assert.Equal(t, "2024-03-10", stats.LastActivityDate)
	assert.Equal(t, map[string]int{"calm": 2, "sad": 1}, stats.MoodDistribution)
	assert.Equal(t, 3, stats.WeeklyProgress.DaysTracked)

	feed, err := svc.RecentActivity(ctx, userID, 3)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, ActivityMemory, feed[0].Type)
	assert.Equal(t, "Created memory: Picnic", feed[0].Description)
	assert.Equal(t, ActivityClosure, feed[1].Type)
	assert.Equal(t, ActivityChatUpload, feed[2].Type)
	assert.Equal(t, "Uploaded chat: chat.txt", feed[2].Description)

	_, err = svc.RecentActivity(ctx, userID, 21)
	assert.ErrorIs(t, err, ErrValidation)
}
