package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	Name           string     `json:"name" db:"name"`
	PasswordHash   string     `json:"-" db:"password_hash"` // Never expose
	IsActive       bool       `json:"is_active" db:"is_active"`
	ProfilePicture *string    `json:"profile_picture" db:"profile_picture"`
	ExName         *string    `json:"ex_name" db:"ex_name"`
	ExPicture      *string    `json:"ex_picture" db:"ex_picture"`
	ExNickname     *string    `json:"ex_nickname" db:"ex_nickname"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt    *time.Time `json:"last_login_at" db:"last_login_at"`
}

// UserSession represents an active login session
type UserSession struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash        string     `json:"-" db:"token_hash"`
	RefreshTokenHash string     `json:"-" db:"refresh_token_hash"`
	ExpiresAt        time.Time  `json:"expires_at" db:"expires_at"`
	RefreshExpiresAt time.Time  `json:"refresh_expires_at" db:"refresh_expires_at"`
	IPAddress        string     `json:"ip_address" db:"ip_address"`
	UserAgent        string     `json:"user_agent" db:"user_agent"`
	DeviceName       string     `json:"device_name" db:"device_name"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	LastActivity     time.Time  `json:"last_activity" db:"last_activity"`
	RevokedAt        *time.Time `json:"revoked_at" db:"revoked_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       *uuid.UUID `json:"user_id" db:"user_id"`
	Action       string     `json:"action" db:"action"`
	ResourceType string     `json:"resource_type" db:"resource_type"`
	ResourceID   *uuid.UUID `json:"resource_id" db:"resource_id"`
	IPAddress    string     `json:"ip_address" db:"ip_address"`
	UserAgent    string     `json:"user_agent" db:"user_agent"`
	Metadata     JSONB      `json:"metadata" db:"metadata"`
	Status       string     `json:"status" db:"status"`
	ErrorMessage string     `json:"error_message" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// UserContext is the authenticated caller attached to a request
type UserContext struct {
	UserID    uuid.UUID
	Name      string
	Email     string
	SessionID string
}

// ProfileUpdate carries the optional profile fields a user may change
type ProfileUpdate struct {
	Name           *string `json:"name"`
	ProfilePicture *string `json:"profile_picture"`
	ExName         *string `json:"ex_name"`
	ExPicture      *string `json:"ex_picture"`
	ExNickname     *string `json:"ex_nickname"`
}

// Apply copies every non-nil field onto the user
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = p.ProfilePicture
	}
	if p.ExName != nil {
		u.ExName = p.ExName
	}
	if p.ExPicture != nil {
		u.ExPicture = p.ExPicture
	}
	if p.ExNickname != nil {
		u.ExNickname = p.ExNickname
	}
}

// JSONB type for JSON columns
type JSONB map[string]interface{}

// Value implements driver.Valuer for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}
}
