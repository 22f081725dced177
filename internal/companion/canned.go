package companion

import (
	"strings"

	"github.com/afterus/afterus-backend/internal/analysis"
	"github.com/afterus/afterus-backend/internal/models"
)

type topic int

const (
	topicHurt topic = iota
	topicAnger
	topicMissing
	topicFuture
)

var topicTable = analysis.KeywordTable[topic]{
	{Tag: topicHurt, Triggers: []string{"sad", "hurt", "pain"}},
	{Tag: topicAnger, Triggers: []string{"angry", "mad", "furious"}},
	{Tag: topicMissing, Triggers: []string{"miss", "lonely", "alone"}},
	{Tag: topicFuture, Triggers: []string{"future", "move on", "forward"}},
}

const cannedOpening = "I understand how you're feeling. "

func toneSentence(t models.Tone) string {
	switch t {
	case models.ToneSupportive:
		return "Remember that healing takes time, and you're doing great by taking this step. "
	case models.ToneEmpathetic:
		return "I can feel the emotion in your words, and that's completely valid. "
	case models.ToneChallenging:
		return "Let's think about this differently - what would your stronger self do? "
	default:
		return ""
	}
}

func topicSentence(message string) string {
	t, ok := topicTable.First(message)
	if !ok {
		return "Thank you for sharing that with me. Your feelings are valid and important."
	}
	switch t {
	case topicHurt:
		return "It's natural to feel this way after a relationship ends. These feelings are part of the healing process."
	case topicAnger:
		return "Anger is often a secondary emotion that masks hurt. It's okay to feel angry, but let's explore what's underneath."
	case topicMissing:
		return "Missing someone shows how much they meant to you. This feeling will soften with time."
	case topicFuture:
		return "Looking forward is a positive sign. You're already on the path to healing and growth."
	default:
		return ""
	}
}

// CannedReply builds the deterministic keyword reply. A nil personality
// skips the tone sentence.
func CannedReply(message string, personality *models.AIPersonality) string {
	var b strings.Builder
	b.WriteString(cannedOpening)
	if personality != nil {
		b.WriteString(toneSentence(personality.Tone))
	}
	b.WriteString(topicSentence(message))
	return b.String()
}
