package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMessagesFound is returned when an export yields no parseable lines
	ErrNoMessagesFound = errors.New("no valid messages found in the file")
	// ErrEmptyInput is returned when a derivation is asked to work on zero messages
	ErrEmptyInput = errors.New("no messages to analyze")
	// ErrHourOutOfRange marks a 12-hour clock reading of 0
	ErrHourOutOfRange = errors.New("hour must be between 1 and 12")
)

// MalformedTimestampError describes a line whose shape matched but whose
// timestamp could not be read. The parser recovers from it by dropping the line.
type MalformedTimestampError struct {
	Line      int
	Timestamp string
	Err       error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("line %d: malformed timestamp %q: %v", e.Line, e.Timestamp, e.Err)
}

func (e *MalformedTimestampError) Unwrap() error {
	return e.Err
}
