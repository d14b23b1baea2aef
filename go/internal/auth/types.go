package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/sushirush/go/internal/models"
)

const MinPasswordLength = 6

// Config holds the session and admin settings
type Config struct {
	JWTSecret   []byte
	SessionTTL  time.Duration
	AdminEmails []string
	// BcryptCost defaults to bcrypt.DefaultCost when zero
	BcryptCost int
}

type SignUpRequest struct {
	Email       string
	Password    string
	DisplayName string
}

type SignInRequest struct {
	Email    string
	Password string
}

// UpdateSettingsRequest changes the profile. Nil fields are left untouched.
type UpdateSettingsRequest struct {
	DisplayName   *string
	Notifications *bool
	SoundEnabled  *bool
}

// Session is a server-side record backing an issued token
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time

	// Current profile of the owning user, loaded alongside the session.
	Email       string
	DisplayName string
	Role        models.Role
}

// Active reports whether the session can still authenticate requests
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// AuthResult is returned by sign-up and sign-in
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
	IsAdmin   bool
}

// Identity is the authenticated caller attached to a request context
type Identity struct {
	UserID      uuid.UUID
	SessionID   uuid.UUID
	Email       string
	DisplayName string
	Role        models.Role
	IsAdmin     bool
}
