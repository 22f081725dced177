package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ParsedMessage is one line recovered from a chat export
type ParsedMessage struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp" db:"timestamp"`
	Sender    string    `json:"sender" yaml:"sender" db:"sender"`
	Content   string    `json:"content" yaml:"content" db:"content"`
	IsUser    bool      `json:"is_user" yaml:"is_user" db:"is_user"`
}

// ChatMessage is a ParsedMessage persisted under a session. Seq keeps file
// order for messages that share a timestamp.
type ChatMessage struct {
	ID            uuid.UUID `json:"id" yaml:"id" db:"id"`
	SessionID     uuid.UUID `json:"session_id" yaml:"session_id" db:"session_id"`
	Seq           int       `json:"-" yaml:"-" db:"seq"`
	ParsedMessage `yaml:",inline"`
}

// ChatSession is one uploaded export
type ChatSession struct {
	ID            uuid.UUID  `json:"id" yaml:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" yaml:"user_id" db:"user_id"`
	Filename      string     `json:"filename" yaml:"filename" db:"filename"`
	UploadDate    time.Time  `json:"upload_date" yaml:"upload_date" db:"upload_date"`
	TotalMessages int        `json:"total_messages" yaml:"total_messages" db:"total_messages"`
	Participants  StringList `json:"participants" yaml:"participants" db:"participants"`
}

// ChatSessionDetail is a session with its messages loaded
type ChatSessionDetail struct {
	ChatSession `yaml:",inline"`
	Messages    []ChatMessage `json:"messages" yaml:"messages"`
}

// Parsed strips persistence fields from a slice of stored messages
func Parsed(messages []ChatMessage) []ParsedMessage {
	out := make([]ParsedMessage, len(messages))
	for i, m := range messages {
		out[i] = m.ParsedMessage
	}
	return out
}

// StringList is a list of strings stored as a JSON array
type StringList []string

// Value implements driver.Valuer for StringList
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Scan implements sql.Scanner for StringList
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	return json.Unmarshal(raw, (*[]string)(s))
}
