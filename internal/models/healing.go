package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NoContactDay records whether a user kept no contact on a calendar day
type NoContactDay struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	Success   bool      `json:"success" db:"success"`
	Mood      *string   `json:"mood" db:"mood"`
	Notes     *string   `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DateRange bounds a listing by calendar day, inclusive at both ends
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ActivityCategory groups closure activities
type ActivityCategory string

const (
	CategorySelfCare     ActivityCategory = "self-care"
	CategorySocial       ActivityCategory = "social"
	CategoryCreative     ActivityCategory = "creative"
	CategoryPhysical     ActivityCategory = "physical"
	CategoryEmotional    ActivityCategory = "emotional"
	CategoryProfessional ActivityCategory = "professional"
)

// ParseActivityCategory validates a raw category
func ParseActivityCategory(s string) (ActivityCategory, error) {
	switch c := ActivityCategory(s); c {
	case CategorySelfCare, CategorySocial, CategoryCreative,
		CategoryPhysical, CategoryEmotional, CategoryProfessional:
		return c, nil
	default:
		return "", fmt.Errorf("invalid activity category %q", s)
	}
}

// ClosureActivity is a suggested healing task
type ClosureActivity struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	Title         string           `json:"title" db:"title"`
	Description   string           `json:"description" db:"description"`
	Completed     bool             `json:"completed" db:"completed"`
	CompletedDate *time.Time       `json:"completed_date" db:"completed_date"`
	Category      ActivityCategory `json:"category" db:"category"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// ActivityUpdate is the client's edit to a closure activity
type ActivityUpdate struct {
	Completed     *bool      `json:"completed"`
	CompletedDate *time.Time `json:"completed_date"`
}

// Tone is the companion's conversational register
type Tone string

const (
	ToneSupportive  Tone = "supportive"
	ToneEmpathetic  Tone = "empathetic"
	ToneChallenging Tone = "challenging"
)

// ParseTone validates a raw tone
func ParseTone(s string) (Tone, error) {
	switch t := Tone(s); t {
	case ToneSupportive, ToneEmpathetic, ToneChallenging:
		return t, nil
	default:
		return "", fmt.Errorf("invalid tone %q", s)
	}
}

// Default personality settings
const (
	DefaultTone = ToneSupportive
	DefaultMood = "gentle"
)

// AIPersonality configures how the companion speaks to one user
type AIPersonality struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	UserID              uuid.UUID `json:"user_id" db:"user_id"`
	Tone                Tone      `json:"tone" db:"tone"`
	Mood                string    `json:"mood" db:"mood"`
	ExName              *string   `json:"ex_name" db:"ex_name"`
	ExPersonalityTraits *string   `json:"ex_personality_traits" db:"ex_personality_traits"`
	RelationshipContext *string   `json:"relationship_context" db:"relationship_context"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// PersonalityUpdate carries the optional fields of a personality edit
type PersonalityUpdate struct {
	Tone                *string `json:"tone"`
	Mood                *string `json:"mood"`
	ExName              *string `json:"ex_name"`
	ExPersonalityTraits *string `json:"ex_personality_traits"`
	RelationshipContext *string `json:"relationship_context"`
}
