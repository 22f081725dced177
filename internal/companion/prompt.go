package companion

import (
	"fmt"
	"strings"

	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/providers"
)

const systemPreamble = "You are a warm, grounded companion helping someone heal after a breakup. " +
	"Keep replies short, never pretend to be their former partner, and encourage healthy boundaries."

// BuildPrompt turns the user's message, settings and an optional chat
// excerpt into a completion request
func BuildPrompt(message string, personality *models.AIPersonality, excerpt []models.ParsedMessage) providers.CompletionRequest {
	var sys strings.Builder
	sys.WriteString(systemPreamble)

	if personality != nil {
		fmt.Fprintf(&sys, "\nTone: %s.", personality.Tone)
		if personality.Mood != "" {
			fmt.Fprintf(&sys, " Mood: %s.", personality.Mood)
		}
		if v := deref(personality.ExName); v != "" {
			fmt.Fprintf(&sys, "\nTheir former partner is called %s.", v)
		}
		if v := deref(personality.ExPersonalityTraits); v != "" {
			fmt.Fprintf(&sys, "\nHow they describe their former partner: %s", v)
		}
		if v := deref(personality.RelationshipContext); v != "" {
			fmt.Fprintf(&sys, "\nRelationship context: %s", v)
		}
	}

	if len(excerpt) > 0 {
		sys.WriteString("\n\nExcerpt from their uploaded chat history:")
		for _, m := range excerpt {
			fmt.Fprintf(&sys, "\n[%s] %s: %s", m.Timestamp.Format("2006-01-02 15:04"), m.Sender, m.Content)
		}
	}

	return providers.CompletionRequest{
		System:   sys.String(),
		Messages: []providers.Message{{Role: providers.RoleUser, Content: message}},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
