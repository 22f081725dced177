package analysis

import (
	"time"
	"unicode/utf8"

	"github.com/afterus/afterus-backend/internal/models"
)

const (
	// MinMemoryLength is exclusive: shorter or equal messages are never memories
	MinMemoryLength = 50
	// MaxDescriptionLength caps the copied message text
	MaxDescriptionLength = 500
)

// MemoryTable maps keywords to memory types. First match wins.
var MemoryTable = KeywordTable[models.MemoryType]{
	{Tag: models.MemoryFirstMeeting, Triggers: []string{"first", "meet"}},
	{Tag: models.MemoryMilestone, Triggers: []string{"anniversary", "birthday"}},
	{Tag: models.MemoryConflict, Triggers: []string{"fight", "argue"}},
	{Tag: models.MemoryLastContact, Triggers: []string{"last", "goodbye"}},
	{Tag: models.MemorySweetMoment, Triggers: []string{"sweet", "love"}},
}

// MemoryCandidate is a message worth remembering, not yet persisted
type MemoryCandidate struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Date         time.Time         `json:"date"`
	Type         models.MemoryType `json:"type"`
	Participants []string          `json:"participants"`
}

// ExtractMemories yields at most one candidate per message, in message order
func ExtractMemories(messages []models.ParsedMessage) ([]MemoryCandidate, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyInput
	}

	participants := Participants(messages)
	candidates := []MemoryCandidate{}
	for _, m := range messages {
		if utf8.RuneCountInString(m.Content) <= MinMemoryLength {
			continue
		}
		kind, ok := MemoryTable.First(m.Content)
		if !ok {
			continue
		}
		day := m.Timestamp.UTC().Truncate(24 * time.Hour)
		candidates = append(candidates, MemoryCandidate{
			Title:        "Memory from " + day.Format(time.DateOnly),
			Description:  truncateRunes(m.Content, MaxDescriptionLength),
			Date:         day,
			Type:         kind,
			Participants: participants,
		})
	}
	return candidates, nil
}

// Participants returns the distinct senders in first-seen order
func Participants(messages []models.ParsedMessage) []string {
	seen := make(map[string]struct{}, 2)
	out := []string{}
	for _, m := range messages {
		if _, ok := seen[m.Sender]; ok {
			continue
		}
		seen[m.Sender] = struct{}{}
		out = append(out, m.Sender)
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
