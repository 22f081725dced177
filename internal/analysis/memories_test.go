package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/models"
)

func TestExtractMemories_EmptyInput(t *testing.T) {
	_, err := ExtractMemories([]models.ParsedMessage{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestExtractMemories_Milestone(t *testing.T) {
	content := "Happy anniversary! I can't believe it has been a whole year now"
	require.Greater(t, len(content), 50)

	candidates, err := ExtractMemories([]models.ParsedMessage{msg(0, true, content)})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, models.MemoryMilestone, c.Type)
	assert.Equal(t, "Memory from 2023-01-01", c.Title)
	assert.Equal(t, content, c.Description)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), c.Date)
	assert.Equal(t, []string{"Alex"}, c.Participants)
}

func TestExtractMemories_FirstMatchWins(t *testing.T) {
	content := "Happy anniversary and happy birthday, what a day to celebrate together"
	candidates, err := ExtractMemories([]models.ParsedMessage{msg(0, true, content)})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.MemoryMilestone, candidates[0].Type)

	// "first" sits earlier in the table than "love"
	content = "I love remembering the first time we went to the beach together"
	candidates, err = ExtractMemories([]models.ParsedMessage{msg(0, true, content)})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.MemoryFirstMeeting, candidates[0].Type)
}

func TestExtractMemories_ShortOrPlainMessagesSkipped(t *testing.T) {
	messages := []models.ParsedMessage{
		msg(0, true, "love you"),
		msg(time.Hour, false, strings.Repeat("x", 50)+" love"),
		msg(2*time.Hour, false, "this message is long enough but mentions nothing of interest at all"),
		msg(3*time.Hour, true, "exactly fifty characters long and it says goodbye!"),
	}
	require.Equal(t, 50, len(messages[3].Content))

	candidates, err := ExtractMemories(messages)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.MemorySweetMoment, candidates[0].Type)
	assert.Equal(t, []string{"Alex", "Sam"}, candidates[0].Participants)
}

func TestExtractMemories_TruncatesDescription(t *testing.T) {
	content := "goodbye " + strings.Repeat("é", 600)
	candidates, err := ExtractMemories([]models.ParsedMessage{msg(0, false, content)})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, MaxDescriptionLength, len([]rune(candidates[0].Description)))
	assert.Equal(t, models.MemoryLastContact, candidates[0].Type)
}

func TestKeywordTable(t *testing.T) {
	table := KeywordTable[string]{
		{Tag: "a", Triggers: []string{"alpha"}},
		{Tag: "b", Triggers: []string{"beta", "alp"}},
	}

	tag, ok := table.First("ALPHA beta")
	assert.True(t, ok)
	assert.Equal(t, "a", tag)

	_, ok = table.First("gamma")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, table.All("alpha"))
	assert.Empty(t, table.All("gamma"))
	assert.True(t, table.Any("b", "Beta"))
	assert.False(t, table.Any("a", "beta"))
}
