package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// User represents a registered account
type User struct {
	ID          uuid.UUID     `json:"id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name"`
	PhotoURL    *string       `json:"photo_url,omitempty"`
	Role        Role          `json:"role"`
	Settings    *UserSettings `json:"settings,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// UserSettings holds per-user preferences
type UserSettings struct {
	Notifications bool      `json:"notifications"`
	SoundEnabled  bool      `json:"sound_enabled"`
	UpdatedAt     time.Time `json:"updated_at"`
}
