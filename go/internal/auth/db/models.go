package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type User struct {
	ID           uuid.UUID             `json:"id"`
	Email        string                `json:"email"`
	DisplayName  string                `json:"display_name"`
	PhotoUrl     sql.NullString        `json:"photo_url"`
	PasswordHash string                `json:"password_hash"`
	Role         string                `json:"role"`
	Settings     pqtype.NullRawMessage `json:"settings"`
	CreatedAt    time.Time             `json:"created_at"`
}

type Session struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	ExpiresAt time.Time    `json:"expires_at"`
	RevokedAt sql.NullTime `json:"revoked_at"`
	CreatedAt time.Time    `json:"created_at"`
}
