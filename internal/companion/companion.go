package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/llm"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/providers"
	"github.com/afterus/afterus-backend/internal/repository"
)

// FallbackReply replaces the answer whenever the model cannot produce one
const FallbackReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

// contextMessageLimit caps how many stored messages feed a reply
const contextMessageLimit = 10

var (
	// ErrEmptyMessage is returned for blank companion input
	ErrEmptyMessage = errors.New("message is required")
	// ErrInvalidPersonalityMode is returned for an unknown tone override
	ErrInvalidPersonalityMode = errors.New("invalid personality mode")
)

// ChatRequest is one message to the companion
type ChatRequest struct {
	Message          string     `json:"message"`
	ContextSessionID *uuid.UUID `json:"context_session_id"`
	PersonalityMode  *string    `json:"personality_mode"`
}

// ChatResponse is the companion's answer
type ChatResponse struct {
	Response         string                 `json:"response"`
	Emotion          *Emotion               `json:"emotion"`
	SuggestedActions []string               `json:"suggested_actions"`
	ContextUsed      map[string]interface{} `json:"context_used"`
}

// HealingSessionRequest starts a guided session
type HealingSessionRequest struct {
	SessionType   string  `json:"session_type"`
	Mood          *string `json:"mood"`
	SpecificTopic *string `json:"specific_topic"`
}

// Stores are the repositories the companion reads from
type Stores struct {
	Chats         repository.ChatSessionRepository
	Messages      repository.MessageRepository
	Personalities repository.AIPersonalityRepository
}

// Service answers companion messages. With no provider it uses the
// keyword replies.
type Service struct {
	stores   Stores
	provider providers.Provider
	breaker  *llm.CircuitBreaker
	metrics  *llm.MetricsCollector
	timeout  time.Duration
	logger   logrus.FieldLogger
}

// NewService creates a companion. provider may be nil.
func NewService(stores Stores, provider providers.Provider, breaker *llm.CircuitBreaker, metrics *llm.MetricsCollector, timeout time.Duration, logger logrus.FieldLogger) *Service {
	if breaker == nil {
		breaker = llm.NewCircuitBreaker(llm.DefaultBreakerSettings, logger)
	}
	if metrics == nil {
		metrics = llm.NewMetricsCollector()
	}
	return &Service{
		stores:   stores,
		provider: provider,
		breaker:  breaker,
		metrics:  metrics,
		timeout:  timeout,
		logger:   logger.WithField("component", "companion"),
	}
}

// ProviderName reports the active backend
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return "canned"
	}
	return s.provider.Name()
}

// Stats returns call metrics with breaker state filled in
func (s *Service) Stats() map[string]llm.ProviderStats {
	stats := s.metrics.Snapshot()
	for name, st := range stats {
		st.Breaker = s.breaker.GetState(name).String()
		stats[name] = st
	}
	return stats
}

// Reply answers one message
func (s *Service) Reply(ctx context.Context, userID uuid.UUID, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	personality, err := s.personality(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.PersonalityMode != nil && *req.PersonalityMode != "" {
		tone, err := models.ParseTone(*req.PersonalityMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPersonalityMode, err)
		}
		override := models.AIPersonality{UserID: userID, Tone: tone, Mood: models.DefaultMood}
		if personality != nil {
			override = *personality
			override.Tone = tone
		}
		personality = &override
	}

	excerpt, contextUsed, err := s.loadContext(ctx, userID, req.ContextSessionID)
	if err != nil {
		return nil, err
	}

	var text string
	if s.provider == nil {
		text = CannedReply(message, personality)
	} else {
		text = s.complete(ctx, BuildPrompt(message, personality, excerpt))
	}

	emotion := DetectEmotion(message)
	return &ChatResponse{
		Response:         text,
		Emotion:          emotion,
		SuggestedActions: SuggestedActions(emotion),
		ContextUsed:      contextUsed,
	}, nil
}

// complete never fails; every error path yields FallbackReply
func (s *Service) complete(ctx context.Context, req providers.CompletionRequest) string {
	name := s.provider.Name()
	start := time.Now()

	var resp *providers.CompletionResponse
	err := s.breaker.Execute(name, func() error {
		callCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		r, err := s.provider.Complete(callCtx, req)
		if err != nil {
			return err
		}
		if strings.TrimSpace(r.Content) == "" {
			return providers.ErrEmptyCompletion
		}
		resp = r
		return nil
	})

	if errors.Is(err, llm.ErrBreakerOpen) {
		s.logger.WithField("provider", name).Warn("Provider circuit open, using fallback reply")
		return FallbackReply
	}

	tokens := 0
	if resp != nil {
		tokens = resp.Usage.TotalTokens
	}
	s.metrics.RecordRequest(name, err == nil, time.Since(start), tokens)

	if err != nil {
		s.logger.WithError(err).WithField("provider", name).Warn("Companion completion failed, using fallback reply")
		return FallbackReply
	}
	return strings.TrimSpace(resp.Content)
}

// loadContext reads the first messages of a session the user owns. A
// session that is missing or belongs to someone else contributes nothing.
func (s *Service) loadContext(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID) ([]models.ParsedMessage, map[string]interface{}, error) {
	used := map[string]interface{}{}
	if sessionID == nil {
		return nil, used, nil
	}

	if _, err := s.stores.Chats.GetByID(ctx, userID, *sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, used, nil
		}
		return nil, nil, err
	}

	stored, err := s.stores.Messages.ListBySession(ctx, *sessionID, contextMessageLimit, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(stored) > 0 {
		used["session_id"] = sessionID.String()
		used["messages_analyzed"] = len(stored)
	}
	return models.Parsed(stored), used, nil
}

func (s *Service) personality(ctx context.Context, userID uuid.UUID) (*models.AIPersonality, error) {
	p, err := s.stores.Personalities.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// StartHealingSession opens a guided session in the user's preferred mood
func (s *Service) StartHealingSession(ctx context.Context, userID uuid.UUID, req HealingSessionRequest) (*HealingSession, error) {
	personality, err := s.personality(ctx, userID)
	if err != nil {
		return nil, err
	}
	session := NewHealingSession(req.SessionType, moodFor(req.Mood, personality))
	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"session_type": session.SessionType,
	}).Debug("Healing session started")
	return session, nil
}
