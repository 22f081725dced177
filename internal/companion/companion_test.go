package companion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/llm"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/providers"
	"github.com/afterus/afterus-backend/internal/testutil"
)

type fakeProvider struct {
	calls    int
	lastReq  providers.CompletionRequest
	complete func(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	return f.complete(ctx, req)
}

func newTestService(t *testing.T, provider providers.Provider, breaker *llm.CircuitBreaker) (*Service, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	logger, _ := testutil.Logger()
	stores := Stores{Chats: store.Chats(), Messages: store.Messages(), Personalities: store.Personalities()}
	return NewService(stores, provider, breaker, nil, time.Second, logger), store
}

func TestReply_CannedWithoutPersonality(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	resp, err := svc.Reply(context.Background(), uuid.New(), ChatRequest{Message: "I feel so sad today"})
	require.NoError(t, err)

	assert.Equal(t, "I understand how you're feeling. It's natural to feel this way after a relationship ends. These feelings are part of the healing process.", resp.Response)
	require.NotNil(t, resp.Emotion)
	assert.Equal(t, EmotionSad, *resp.Emotion)
	assert.Equal(t, []string{"Practice self-compassion", "Write in a journal", "Take a walk in nature"}, resp.SuggestedActions)
	assert.Empty(t, resp.ContextUsed)
}

func TestReply_CannedToneAndOverride(t *testing.T) {
	svc, store := newTestService(t, nil, nil)
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, store.Personalities().Upsert(ctx, &models.AIPersonality{UserID: userID, Tone: models.ToneEmpathetic, Mood: "gentle"}))

	resp, err := svc.Reply(ctx, userID, ChatRequest{Message: "I want to move on"})
	require.NoError(t, err)
	assert.Equal(t, "I understand how you're feeling. I can feel the emotion in your words, and that's completely valid. Looking forward is a positive sign. You're already on the path to healing and growth.", resp.Response)
	assert.Nil(t, resp.Emotion)
	assert.Empty(t, resp.SuggestedActions)

	mode := "challenging"
	resp, err = svc.Reply(ctx, userID, ChatRequest{Message: "hello", PersonalityMode: &mode})
	require.NoError(t, err)
	assert.Equal(t, "I understand how you're feeling. Let's think about this differently - what would your stronger self do? Thank you for sharing that with me. Your feelings are valid and important.", resp.Response)

	bad := "sarcastic"
	_, err = svc.Reply(ctx, userID, ChatRequest{Message: "hello", PersonalityMode: &bad})
	assert.ErrorIs(t, err, ErrInvalidPersonalityMode)
}

func TestReply_EmptyMessage(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	_, err := svc.Reply(context.Background(), uuid.New(), ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestReply_ProviderSuccessUsesContext(t *testing.T) {
	provider := &fakeProvider{complete: func(context.Context, providers.CompletionRequest) (*providers.CompletionResponse, error) {
		return &providers.CompletionResponse{Content: "  You are doing well.  ", Usage: providers.Usage{TotalTokens: 42}}, nil
	}}
	svc, store := newTestService(t, provider, nil)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	msgs := make([]models.ParsedMessage, 12)
	for i := range msgs {
		msgs[i] = models.ParsedMessage{Timestamp: base.Add(time.Duration(i) * time.Minute), Sender: "Sam", Content: "line"}
	}
	session := &models.ChatSession{UserID: userID, Filename: "chat.txt", UploadDate: base}
	require.NoError(t, store.Chats().CreateWithMessages(ctx, session, msgs))

	resp, err := svc.Reply(ctx, userID, ChatRequest{Message: "I'm happy", ContextSessionID: &session.ID})
	require.NoError(t, err)

	assert.Equal(t, "You are doing well.", resp.Response)
	assert.Equal(t, session.ID.String(), resp.ContextUsed["session_id"])
	assert.Equal(t, 10, resp.ContextUsed["messages_analyzed"])
	require.NotNil(t, resp.Emotion)
	assert.Equal(t, EmotionPositive, *resp.Emotion)
	assert.Contains(t, provider.lastReq.System, "[2023-01-01 12:00] Sam: line")

	stats := svc.Stats()
	assert.Equal(t, int64(1), stats["fake"].Requests)
	assert.Equal(t, int64(42), stats["fake"].Tokens)
	assert.Equal(t, "closed", stats["fake"].Breaker)
}

func TestReply_ForeignSessionIgnored(t *testing.T) {
	svc, store := newTestService(t, nil, nil)
	ctx := context.Background()

	session := &models.ChatSession{UserID: uuid.New(), Filename: "chat.txt", UploadDate: time.Now()}
	require.NoError(t, store.Chats().CreateWithMessages(ctx, session, []models.ParsedMessage{{Sender: "A", Content: "x", Timestamp: time.Now()}}))

	resp, err := svc.Reply(ctx, uuid.New(), ChatRequest{Message: "hi", ContextSessionID: &session.ID})
	require.NoError(t, err)
	assert.Empty(t, resp.ContextUsed)
}

func TestReply_FallbackOnProviderError(t *testing.T) {
	provider := &fakeProvider{complete: func(context.Context, providers.CompletionRequest) (*providers.CompletionResponse, error) {
		return nil, errors.New("upstream 500")
	}}
	svc, _ := newTestService(t, provider, nil)

	resp, err := svc.Reply(context.Background(), uuid.New(), ChatRequest{Message: "I feel lost"})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, resp.Response)
	require.NotNil(t, resp.Emotion)
	assert.Equal(t, EmotionConfused, *resp.Emotion)
	assert.Equal(t, int64(1), svc.Stats()["fake"].Errors)
}

func TestReply_FallbackOnEmptyCompletion(t *testing.T) {
	provider := &fakeProvider{complete: func(context.Context, providers.CompletionRequest) (*providers.CompletionResponse, error) {
		return &providers.CompletionResponse{Content: " "}, nil
	}}
	svc, _ := newTestService(t, provider, nil)

	resp, err := svc.Reply(context.Background(), uuid.New(), ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, resp.Response)
}

func TestReply_FallbackWhileBreakerOpen(t *testing.T) {
	logger, _ := testutil.Logger()
	breaker := llm.NewCircuitBreaker(llm.BreakerSettings{FailureThreshold: 1, SuccessThreshold: 1, Cooldown: time.Hour}, logger)
	provider := &fakeProvider{complete: func(context.Context, providers.CompletionRequest) (*providers.CompletionResponse, error) {
		return nil, errors.New("timeout")
	}}
	svc, _ := newTestService(t, provider, breaker)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp, err := svc.Reply(ctx, uuid.New(), ChatRequest{Message: "hi"})
		require.NoError(t, err)
		assert.Equal(t, FallbackReply, resp.Response)
	}
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "open", svc.Stats()["fake"].Breaker)
}

func TestStartHealingSession(t *testing.T) {
	svc, store := newTestService(t, nil, nil)
	ctx := context.Background()
	userID := uuid.New()

	session, err := svc.StartHealingSession(ctx, userID, HealingSessionRequest{SessionType: "grief"})
	require.NoError(t, err)
	assert.Equal(t, SessionGrief, session.SessionType)
	assert.Equal(t, "Grief is a natural response to loss. Let's take this slowly and honor your feelings. What aspect of your loss would you like to explore?", session.AIResponse)
	assert.Len(t, session.Exercises, 3)
	assert.Len(t, session.NextSteps, 4)
	assert.NotEmpty(t, session.SessionID)

	require.NoError(t, store.Personalities().Upsert(ctx, &models.AIPersonality{UserID: userID, Tone: models.ToneSupportive, Mood: "gentle"}))
	session, err = svc.StartHealingSession(ctx, userID, HealingSessionRequest{SessionType: "moving_forward"})
	require.NoError(t, err)
	assert.Equal(t, "Gently, moving forward takes courage. you're showing strength by being here. what does your ideal future look like?", session.AIResponse)
	assert.Empty(t, session.Exercises)

	direct := "direct"
	session, err = svc.StartHealingSession(ctx, userID, HealingSessionRequest{SessionType: "nonsense", Mood: &direct})
	require.NoError(t, err)
	assert.Equal(t, SessionGeneral, session.SessionType)
	assert.Equal(t, "Let's be direct: Welcome to your healing session. I'm here to support you through this journey. How are you feeling today?", session.AIResponse)
}
