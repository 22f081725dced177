package analysis

import (
	"iter"
	"regexp"
	"strings"
	"time"

	"github.com/afterus/afterus-backend/internal/models"
)

// linePattern matches "<d>/<m>/<yyyy>, <h>:<mm>[:<ss>] <AM|PM> - <sender>: <text>".
// WhatsApp puts U+202F between the time and the marker, hence \p{Zs}.
var linePattern = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{4},[\s\p{Zs}]+\d{1,2}:\d{2}(?::\d{2})?[\s\p{Zs}]*[AaPp][Mm])[\s\p{Zs}]*-[\s\p{Zs}]*([^:]+):[\s\p{Zs}]*(.+)`,
)

const (
	layoutWithSeconds = "2/1/2006, 3:04:05 PM"
	layoutMinutes     = "2/1/2006, 3:04 PM"
)

// ParseStats counts what happened to each line of an export
type ParseStats struct {
	Lines     int
	Parsed    int
	Unmatched int
	Malformed []*MalformedTimestampError
}

// Messages returns a lazy sequence over the messages in raw. The sequence can
// be ranged over more than once. Lines that are not message headers, including
// continuation lines of multi-line messages, are skipped.
func Messages(raw, appUser string) iter.Seq[models.ParsedMessage] {
	return func(yield func(models.ParsedMessage) bool) {
		scan(raw, appUser, nil, yield)
	}
}

// ParseExport parses a whole export into memory, preserving file order
func ParseExport(raw, appUser string) []models.ParsedMessage {
	messages, _ := ParseExportWithStats(raw, appUser)
	return messages
}

// ParseExportWithStats is ParseExport plus per-line accounting
func ParseExportWithStats(raw, appUser string) ([]models.ParsedMessage, ParseStats) {
	var stats ParseStats
	messages := []models.ParsedMessage{}
	scan(raw, appUser, &stats, func(m models.ParsedMessage) bool {
		messages = append(messages, m)
		return true
	})
	return messages, stats
}

func scan(raw, appUser string, stats *ParseStats, yield func(models.ParsedMessage) bool) {
	user := strings.TrimSpace(appUser)
	rest := raw
	lineNo := 0
	for len(rest) > 0 {
		var line string
		line, rest, _ = strings.Cut(rest, "\n")
		lineNo++
		if stats != nil {
			stats.Lines++
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			if stats != nil {
				stats.Unmatched++
			}
			continue
		}

		ts, err := parseTimestamp(m[1])
		if err != nil {
			if stats != nil {
				stats.Malformed = append(stats.Malformed, &MalformedTimestampError{
					Line:      lineNo,
					Timestamp: m[1],
					Err:       err,
				})
			}
			continue
		}

		sender := strings.TrimSpace(m[2])
		msg := models.ParsedMessage{
			Timestamp: ts,
			Sender:    sender,
			Content:   strings.TrimSpace(m[3]),
			IsUser:    sender == user,
		}
		if stats != nil {
			stats.Parsed++
		}
		if !yield(msg) {
			return
		}
	}
}

// parseTimestamp collapses whitespace runs and reads the stamp as UTC.
// time.Parse takes hour 0 for the 12-hour layout, so it is refused first.
func parseTimestamp(raw string) (time.Time, error) {
	ts := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	if _, clock, ok := strings.Cut(ts, " "); ok {
		if hour, _, ok := strings.Cut(clock, ":"); ok && strings.Trim(hour, "0") == "" {
			return time.Time{}, ErrHourOutOfRange
		}
	}
	layout := layoutMinutes
	if strings.Count(ts, ":") == 2 {
		layout = layoutWithSeconds
	}
	return time.Parse(layout, ts)
}
