package healing

import (
	"math"
	"sort"
	"time"

	"github.com/afterus/afterus-backend/internal/models"
)

// StreakSummary is the no-contact progress report
type StreakSummary struct {
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	TotalDaysTracked int     `json:"total_days_tracked"`
	SuccessRate      float64 `json:"success_rate"`
}

// WeeklyProgress summarises the last seven days of tracking
type WeeklyProgress struct {
	DaysTracked    int     `json:"days_tracked"`
	SuccessfulDays int     `json:"successful_days"`
	SuccessRate    float64 `json:"success_rate"`
}

// Day truncates t to its calendar day in t's location, returned as UTC midnight
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeStreak derives streak figures from a user's log in any order.
// The current streak walks back from today and stops at the first missing
// or failed day.
func ComputeStreak(entries []models.NoContactDay, today time.Time) StreakSummary {
	if len(entries) == 0 {
		return StreakSummary{}
	}

	byDay := make(map[time.Time]bool, len(entries))
	successes := 0
	for _, e := range entries {
		d := Day(e.Date)
		if _, seen := byDay[d]; !seen {
			byDay[d] = e.Success
		}
		if e.Success {
			successes++
		}
	}

	current := 0
	for d := Day(today); byDay[d]; d = d.AddDate(0, 0, -1) {
		current++
	}

	return StreakSummary{
		CurrentStreak:    current,
		LongestStreak:    longestStreak(entries),
		TotalDaysTracked: len(entries),
		SuccessRate:      round2(float64(successes) / float64(len(entries)) * 100),
	}
}

func longestStreak(entries []models.NoContactDay) int {
	sorted := make([]models.NoContactDay, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Day(sorted[i].Date).Before(Day(sorted[j].Date))
	})

	longest, running := 0, 0
	var prev time.Time
	for i, e := range sorted {
		d := Day(e.Date)
		switch {
		case !e.Success:
			running = 0
		case i > 0 && d.Equal(prev.AddDate(0, 0, 1)):
			running++
		default:
			running = 1
		}
		longest = max(longest, running)
		prev = d
	}
	return longest
}

// Weekly counts entries dated within seven days before today, inclusive
func Weekly(entries []models.NoContactDay, today time.Time) WeeklyProgress {
	weekAgo := Day(today).AddDate(0, 0, -7)
	var p WeeklyProgress
	for _, e := range entries {
		if Day(e.Date).Before(weekAgo) {
			continue
		}
		p.DaysTracked++
		if e.Success {
			p.SuccessfulDays++
		}
	}
	if p.DaysTracked > 0 {
		p.SuccessRate = float64(p.SuccessfulDays) / float64(p.DaysTracked) * 100
	}
	return p
}

// MoodDistribution counts logged moods, skipping empty ones
func MoodDistribution(entries []models.NoContactDay) map[string]int {
	dist := map[string]int{}
	for _, e := range entries {
		if e.Mood != nil && *e.Mood != "" {
			dist[*e.Mood]++
		}
	}
	return dist
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
