package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, display_name, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, email, display_name, photo_url, password_hash, role, settings, created_at
`

type CreateUserParams struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.DisplayName,
		arg.PasswordHash,
		arg.Role,
		arg.CreatedAt,
	)
	return scanUser(row)
}

const getUser = `-- name: GetUser :one
SELECT id, email, display_name, photo_url, password_hash, role, settings, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, display_name, photo_url, password_hash, role, settings, created_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const updateUserProfile = `-- name: UpdateUserProfile :one
UPDATE users
SET display_name = $2, settings = $3
WHERE id = $1
RETURNING id, email, display_name, photo_url, password_hash, role, settings, created_at
`

type UpdateUserProfileParams struct {
	ID          uuid.UUID             `json:"id"`
	DisplayName string                `json:"display_name"`
	Settings    pqtype.NullRawMessage `json:"settings"`
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, updateUserProfile, arg.ID, arg.DisplayName, arg.Settings))
}

const initUserStats = `-- name: InitUserStats :exec
INSERT INTO user_stats (user_id) VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
`

func (q *Queries) InitUserStats(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, initUserStats, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.DisplayName,
		&i.PhotoUrl,
		&i.PasswordHash,
		&i.Role,
		&i.Settings,
		&i.CreatedAt,
	)
	return i, err
}
