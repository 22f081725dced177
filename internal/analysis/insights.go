package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/afterus/afterus-backend/internal/models"
)

// Sentiment is the bucket a single message lands in
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Theme is a coarse topic detected across a conversation
type Theme string

const (
	ThemeLove     Theme = "love"
	ThemeConflict Theme = "conflict"
	ThemeFuture   Theme = "future"
	ThemeFamily   Theme = "family"
	ThemeWork     Theme = "work"
)

// SentimentTable holds the positive and negative word lists
var SentimentTable = KeywordTable[Sentiment]{
	{Tag: SentimentPositive, Triggers: []string{"love", "happy", "great", "amazing", "wonderful", "perfect"}},
	{Tag: SentimentNegative, Triggers: []string{"sad", "angry", "hate", "terrible", "awful", "horrible"}},
}

// ThemeTable is evaluated in declaration order
var ThemeTable = KeywordTable[Theme]{
	{Tag: ThemeLove, Triggers: []string{"love", "romantic", "relationship", "together"}},
	{Tag: ThemeConflict, Triggers: []string{"fight", "argue", "angry", "disagree"}},
	{Tag: ThemeFuture, Triggers: []string{"future", "plans", "tomorrow", "next"}},
	{Tag: ThemeFamily, Triggers: []string{"family", "parents", "mom", "dad"}},
	{Tag: ThemeWork, Triggers: []string{"work", "job", "career", "office"}},
}

// Recommendation texts, in the order they are appended
const (
	RecommendProcessNegative = "Focus on processing negative emotions through journaling or therapy"
	RecommendCherish         = "Cherish the positive memories while allowing yourself to move forward"
	RecommendBalance         = "Reflect on communication balance in future relationships"
	RecommendSelfCare        = "Practice self-care and be patient with your healing process"
)

// CommunicationPatterns summarises who talked and how much. Values are
// pre-formatted strings.
type CommunicationPatterns struct {
	TotalMessages     string `json:"total_messages" yaml:"total_messages"`
	UserPercentage    string `json:"user_percentage" yaml:"user_percentage"`
	PartnerPercentage string `json:"partner_percentage" yaml:"partner_percentage"`
	MessagesPerDay    string `json:"messages_per_day" yaml:"messages_per_day"`
}

// EmotionalTone holds the fraction of messages in each sentiment bucket
type EmotionalTone struct {
	Positive float64 `json:"positive" yaml:"positive"`
	Negative float64 `json:"negative" yaml:"negative"`
	Neutral  float64 `json:"neutral" yaml:"neutral"`
}

// InsightReport is derived on demand and never stored
type InsightReport struct {
	DurationDays          int                   `json:"duration_days" yaml:"duration_days"`
	RelationshipDuration  string                `json:"relationship_duration" yaml:"relationship_duration"`
	CommunicationPatterns CommunicationPatterns `json:"communication_patterns" yaml:"communication_patterns"`
	EmotionalTone         EmotionalTone         `json:"emotional_tone" yaml:"emotional_tone"`
	KeyThemes             []Theme               `json:"key_themes" yaml:"key_themes"`
	HealthScore           float64               `json:"relationship_health_score" yaml:"relationship_health_score"`
	Recommendations       []string              `json:"recommendations" yaml:"recommendations"`
}

// Classify puts one message into exactly one sentiment bucket. A message that
// hits both word lists, or neither, is neutral.
func Classify(content string) Sentiment {
	pos := SentimentTable.Any(SentimentPositive, content)
	neg := SentimentTable.Any(SentimentNegative, content)
	switch {
	case pos && !neg:
		return SentimentPositive
	case neg && !pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// DeriveInsights computes the insight report for one session's messages
func DeriveInsights(messages []models.ParsedMessage) (*InsightReport, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyInput
	}

	total := len(messages)
	first, last := messages[0].Timestamp, messages[0].Timestamp
	var userCount int
	var pos, neg, neutral int
	texts := make([]string, 0, total)

	for _, m := range messages {
		if m.Timestamp.Before(first) {
			first = m.Timestamp
		}
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
		if m.IsUser {
			userCount++
		}
		switch Classify(m.Content) {
		case SentimentPositive:
			pos++
		case SentimentNegative:
			neg++
		case SentimentNeutral:
			neutral++
		}
		texts = append(texts, m.Content)
	}
	partnerCount := total - userCount

	days := int(last.Sub(first) / (24 * time.Hour))
	n := float64(total)
	userFraction := float64(userCount) / n

	tone := EmotionalTone{
		Positive: float64(pos) / n,
		Negative: float64(neg) / n,
		Neutral:  float64(neutral) / n,
	}

	report := &InsightReport{
		DurationDays:         days,
		RelationshipDuration: fmt.Sprintf("%d days", days),
		CommunicationPatterns: CommunicationPatterns{
			TotalMessages:     strconv.Itoa(total),
			UserPercentage:    fmt.Sprintf("%.1f%%", userFraction*100),
			PartnerPercentage: fmt.Sprintf("%.1f%%", float64(partnerCount)/n*100),
			MessagesPerDay:    fmt.Sprintf("%.1f", n/float64(max(days, 1))),
		},
		EmotionalTone: tone,
		KeyThemes:     ThemeTable.All(strings.Join(texts, " ")),
		HealthScore:   HealthScore(tone.Positive, userFraction),
	}

	if tone.Negative > 0.4 {
		report.Recommendations = append(report.Recommendations, RecommendProcessNegative)
	}
	if tone.Positive > 0.6 {
		report.Recommendations = append(report.Recommendations, RecommendCherish)
	}
	if math.Abs(float64(userCount-partnerCount)) > 0.3*n {
		report.Recommendations = append(report.Recommendations, RecommendBalance)
	}
	report.Recommendations = append(report.Recommendations, RecommendSelfCare)

	return report, nil
}

// HealthScore rewards positive tone and a balanced conversation. The result
// is clamped to [0, 100].
func HealthScore(positiveFraction, userFraction float64) float64 {
	score := 100*positiveFraction + 50*(1-math.Abs(0.5-userFraction))
	return math.Min(100, math.Max(0, score))
}
