package companion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEmotion(t *testing.T) {
	tests := []struct {
		message string
		want    Emotion
	}{
		{"It HURTS so much", EmotionSad},
		{"I'm furious with them", EmotionAngry},
		{"Feeling better this week", EmotionPositive},
		{"I don't know what to do", EmotionConfused},
		// sad wins over angry by table order
		{"sad and angry", EmotionSad},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := DetectEmotion(tt.message)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, DetectEmotion("just a regular tuesday"))
}

func TestSuggestedActions(t *testing.T) {
	angry := EmotionAngry
	positive := EmotionPositive
	assert.Equal(t, []string{"Try deep breathing exercises", "Do some physical exercise", "Write an unsent letter"}, SuggestedActions(&angry))
	assert.Empty(t, SuggestedActions(&positive))
	assert.NotNil(t, SuggestedActions(nil))
}

func TestCannedReply_MissingTopic(t *testing.T) {
	got := CannedReply("I feel so lonely", nil)
	assert.Equal(t, "I understand how you're feeling. Missing someone shows how much they meant to you. This feeling will soften with time.", got)
}
