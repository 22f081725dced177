package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MemoryType classifies a memory
type MemoryType string

const (
	MemoryFirstMeeting MemoryType = "first-meeting"
	MemorySweetMoment  MemoryType = "sweet-moment"
	MemoryConflict     MemoryType = "conflict"
	MemoryMilestone    MemoryType = "milestone"
	MemoryLastContact  MemoryType = "last-contact"
	MemoryOther        MemoryType = "other"
)

// MemoryTypes lists every memory type in display order
var MemoryTypes = []MemoryType{
	MemoryFirstMeeting,
	MemorySweetMoment,
	MemoryConflict,
	MemoryMilestone,
	MemoryLastContact,
	MemoryOther,
}

// ParseMemoryType validates a raw memory type
func ParseMemoryType(s string) (MemoryType, error) {
	switch t := MemoryType(s); t {
	case MemoryFirstMeeting, MemorySweetMoment, MemoryConflict,
		MemoryMilestone, MemoryLastContact, MemoryOther:
		return t, nil
	default:
		return "", fmt.Errorf("invalid memory type %q", s)
	}
}

// Memory is a remembered moment, entered by hand or extracted from a chat
type Memory struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	Title             string     `json:"title" db:"title"`
	Description       string     `json:"description" db:"description"`
	Date              time.Time  `json:"date" db:"date"`
	Type              MemoryType `json:"type" db:"type"`
	Mood              *string    `json:"mood" db:"mood"`
	Participants      StringList `json:"participants" db:"participants"`
	ImageURL          *string    `json:"image_url" db:"image_url"`
	ExtractedFromChat bool       `json:"extracted_from_chat" db:"extracted_from_chat"`
	ChatSessionID     *uuid.UUID `json:"chat_session_id" db:"chat_session_id"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// MemoryFilter narrows a memory listing
type MemoryFilter struct {
	Type   *MemoryType
	Limit  int
	Offset int
}

// MemoryUpdate carries the optional fields of a memory edit
type MemoryUpdate struct {
	Title        *string     `json:"title"`
	Description  *string     `json:"description"`
	Date         *time.Time  `json:"date"`
	Type         *MemoryType `json:"type"`
	Mood         *string     `json:"mood"`
	Participants []string    `json:"participants"`
	ImageURL     *string     `json:"image_url"`
}

// Apply copies every non-nil field onto the memory
func (u MemoryUpdate) Apply(m *Memory) {
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
	if u.Date != nil {
		m.Date = *u.Date
	}
	if u.Type != nil {
		m.Type = *u.Type
	}
	if u.Mood != nil {
		m.Mood = u.Mood
	}
	if u.Participants != nil {
		m.Participants = StringList(u.Participants)
	}
	if u.ImageURL != nil {
		m.ImageURL = u.ImageURL
	}
}
