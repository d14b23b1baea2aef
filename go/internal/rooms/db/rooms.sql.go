package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const createRoom = `-- name: CreateRoom :one
INSERT INTO rooms (id, name, created_by, is_active, photo_url, location, created_at)
VALUES ($1, $2, $3, TRUE, $4, $5, $6)
RETURNING id, name, created_by, is_active, photo_url, location, created_at, closed_at
`

type CreateRoomParams struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	CreatedBy uuid.UUID      `json:"created_by"`
	PhotoUrl  sql.NullString `json:"photo_url"`
	Location  sql.NullString `json:"location"`
	CreatedAt time.Time      `json:"created_at"`
}

func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) (Room, error) {
	row := q.db.QueryRowContext(ctx, createRoom,
		arg.ID,
		arg.Name,
		arg.CreatedBy,
		arg.PhotoUrl,
		arg.Location,
		arg.CreatedAt,
	)
	return scanRoom(row)
}

const getRoom = `-- name: GetRoom :one
SELECT id, name, created_by, is_active, photo_url, location, created_at, closed_at
FROM rooms
WHERE id = $1
`

func (q *Queries) GetRoom(ctx context.Context, id uuid.UUID) (Room, error) {
	return scanRoom(q.db.QueryRowContext(ctx, getRoom, id))
}

const getRoomForUpdate = `-- name: GetRoomForUpdate :one
SELECT id, name, created_by, is_active, photo_url, location, created_at, closed_at
FROM rooms
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetRoomForUpdate(ctx context.Context, id uuid.UUID) (Room, error) {
	return scanRoom(q.db.QueryRowContext(ctx, getRoomForUpdate, id))
}

const listActiveRooms = `-- name: ListActiveRooms :many
SELECT id, name, created_by, is_active, photo_url, location, created_at, closed_at
FROM rooms
WHERE is_active
ORDER BY created_at DESC
`

func (q *Queries) ListActiveRooms(ctx context.Context) ([]Room, error) {
	rows, err := q.db.QueryContext(ctx, listActiveRooms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Room
	for rows.Next() {
		i, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAbandonedRooms = `-- name: ListAbandonedRooms :many
SELECT r.id
FROM rooms r
WHERE r.is_active
  AND r.created_at < $1
  AND NOT EXISTS (SELECT 1 FROM room_players rp WHERE rp.room_id = r.id)
ORDER BY r.created_at
`

func (q *Queries) ListAbandonedRooms(ctx context.Context, createdBefore time.Time) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx, listAbandonedRooms, createdBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const closeRoom = `-- name: CloseRoom :execrows
UPDATE rooms
SET is_active = FALSE, closed_at = $2
WHERE id = $1 AND is_active
`

type CloseRoomParams struct {
	ID       uuid.UUID `json:"id"`
	ClosedAt time.Time `json:"closed_at"`
}

func (q *Queries) CloseRoom(ctx context.Context, arg CloseRoomParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, closeRoom, arg.ID, arg.ClosedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateRoomDetails = `-- name: UpdateRoomDetails :exec
UPDATE rooms
SET photo_url = $2, location = $3
WHERE id = $1
`

type UpdateRoomDetailsParams struct {
	ID       uuid.UUID      `json:"id"`
	PhotoUrl sql.NullString `json:"photo_url"`
	Location sql.NullString `json:"location"`
}

func (q *Queries) UpdateRoomDetails(ctx context.Context, arg UpdateRoomDetailsParams) error {
	_, err := q.db.ExecContext(ctx, updateRoomDetails, arg.ID, arg.PhotoUrl, arg.Location)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(row rowScanner) (Room, error) {
	var i Room
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CreatedBy,
		&i.IsActive,
		&i.PhotoUrl,
		&i.Location,
		&i.CreatedAt,
		&i.ClosedAt,
	)
	return i, err
}
