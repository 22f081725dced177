package companion

import (
	"strings"

	"github.com/google/uuid"

	"github.com/afterus/afterus-backend/internal/models"
)

// HealingSessionType picks the opening and exercises of a guided session
type HealingSessionType string

const (
	SessionGeneral       HealingSessionType = "general"
	SessionGrief         HealingSessionType = "grief"
	SessionAnger         HealingSessionType = "anger"
	SessionAcceptance    HealingSessionType = "acceptance"
	SessionMovingForward HealingSessionType = "moving_forward"
)

// ParseHealingSessionType maps unknown or empty input to SessionGeneral
func ParseHealingSessionType(s string) HealingSessionType {
	switch t := HealingSessionType(strings.TrimSpace(s)); t {
	case SessionGeneral, SessionGrief, SessionAnger, SessionAcceptance, SessionMovingForward:
		return t
	default:
		return SessionGeneral
	}
}

// Exercise is one suggested activity
type Exercise struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// HealingSession is the opening of a guided session
type HealingSession struct {
	SessionID   string             `json:"session_id"`
	AIResponse  string             `json:"ai_response"`
	SessionType HealingSessionType `json:"session_type"`
	Exercises   []Exercise         `json:"exercises"`
	NextSteps   []string           `json:"next_steps"`
}

var nextSteps = []string{
	"Take time to process today's session",
	"Practice one of the suggested exercises",
	"Journal about your feelings and insights",
	"Return when you're ready for the next step",
}

func opening(t HealingSessionType) string {
	switch t {
	case SessionGrief:
		return "Grief is a natural response to loss. Let's take this slowly and honor your feelings. What aspect of your loss would you like to explore?"
	case SessionAnger:
		return "Anger can be a powerful emotion that often masks deeper feelings. It's safe to express your anger here. What's making you feel angry right now?"
	case SessionAcceptance:
		return "Acceptance is a beautiful stage of healing. It doesn't mean forgetting, but rather finding peace. What does acceptance mean to you right now?"
	case SessionMovingForward:
		return "Moving forward takes courage. You're showing strength by being here. What does your ideal future look like?"
	default:
		return "Welcome to your healing session. I'm here to support you through this journey. How are you feeling today?"
	}
}

func exercises(t HealingSessionType) []Exercise {
	switch t {
	case SessionGrief:
		return []Exercise{
			{Type: "writing", Description: "Write a letter to your past self"},
			{Type: "mindfulness", Description: "Practice 5-minute breathing meditation"},
			{Type: "reflection", Description: "List three things you learned from this relationship"},
		}
	case SessionAnger:
		return []Exercise{
			{Type: "physical", Description: "Try intense exercise or boxing"},
			{Type: "writing", Description: "Write an angry letter (don't send it)"},
			{Type: "creative", Description: "Express your anger through art or music"},
		}
	case SessionAcceptance:
		return []Exercise{
			{Type: "gratitude", Description: "List things you're grateful for"},
			{Type: "visualization", Description: "Visualize your peaceful future"},
			{Type: "affirmation", Description: "Practice self-compassion affirmations"},
		}
	case SessionGeneral, SessionMovingForward:
		return []Exercise{}
	default:
		return []Exercise{}
	}
}

// applyMood softens or sharpens the opening
func applyMood(text, mood string) string {
	switch strings.ToLower(strings.TrimSpace(mood)) {
	case "gentle":
		return "Gently, " + strings.ToLower(text)
	case "direct":
		return "Let's be direct: " + text
	default:
		return text
	}
}

// NewHealingSession builds a session. mood comes from the request or the
// stored personality; empty leaves the opening untouched.
func NewHealingSession(sessionType string, mood string) *HealingSession {
	t := ParseHealingSessionType(sessionType)
	return &HealingSession{
		SessionID:   uuid.NewString(),
		AIResponse:  applyMood(opening(t), mood),
		SessionType: t,
		Exercises:   exercises(t),
		NextSteps:   append([]string(nil), nextSteps...),
	}
}

// moodFor picks the request override, then the personality mood
func moodFor(override *string, personality *models.AIPersonality) string {
	if override != nil && strings.TrimSpace(*override) != "" {
		return *override
	}
	if personality != nil {
		return personality.Mood
	}
	return ""
}
