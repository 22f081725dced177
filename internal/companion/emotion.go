package companion

import "github.com/afterus/afterus-backend/internal/analysis"

// Emotion is the coarse feeling detected in a companion message
type Emotion string

const (
	EmotionSad      Emotion = "sad"
	EmotionAngry    Emotion = "angry"
	EmotionPositive Emotion = "positive"
	EmotionConfused Emotion = "confused"
)

// EmotionTable is checked in order; the first hit wins
var EmotionTable = analysis.KeywordTable[Emotion]{
	{Tag: EmotionSad, Triggers: []string{"sad", "hurt", "pain"}},
	{Tag: EmotionAngry, Triggers: []string{"angry", "mad", "furious"}},
	{Tag: EmotionPositive, Triggers: []string{"happy", "good", "better"}},
	{Tag: EmotionConfused, Triggers: []string{"confused", "lost", "don't know"}},
}

// DetectEmotion returns the first matching emotion, or nil
func DetectEmotion(message string) *Emotion {
	if e, ok := EmotionTable.First(message); ok {
		return &e
	}
	return nil
}

// SuggestedActions lists coping ideas for an emotion. Positive and
// undetected messages get none.
func SuggestedActions(e *Emotion) []string {
	if e == nil {
		return []string{}
	}
	switch *e {
	case EmotionSad:
		return []string{"Practice self-compassion", "Write in a journal", "Take a walk in nature"}
	case EmotionAngry:
		return []string{"Try deep breathing exercises", "Do some physical exercise", "Write an unsent letter"}
	case EmotionConfused:
		return []string{"List your feelings", "Talk to a trusted friend", "Consider professional counseling"}
	case EmotionPositive:
		return []string{}
	default:
		return []string{}
	}
}
