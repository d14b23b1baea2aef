package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const insertGameResult = `-- name: InsertGameResult :one
INSERT INTO game_results (id, room_id, room_name, winner_id, winner_name, winner_count, players, finished_at, game_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date)
RETURNING id, room_id, room_name, winner_id, winner_name, winner_count, players, finished_at, game_date
`

type InsertGameResultParams struct {
	ID          uuid.UUID       `json:"id"`
	RoomID      uuid.UUID       `json:"room_id"`
	RoomName    string          `json:"room_name"`
	WinnerID    uuid.UUID       `json:"winner_id"`
	WinnerName  string          `json:"winner_name"`
	WinnerCount int32           `json:"winner_count"`
	Players     json.RawMessage `json:"players"`
	FinishedAt  time.Time       `json:"finished_at"`
	GameDate    string          `json:"game_date"`
}

func (q *Queries) InsertGameResult(ctx context.Context, arg InsertGameResultParams) (GameResult, error) {
	row := q.db.QueryRowContext(ctx, insertGameResult,
		arg.ID,
		arg.RoomID,
		arg.RoomName,
		arg.WinnerID,
		arg.WinnerName,
		arg.WinnerCount,
		arg.Players,
		arg.FinishedAt,
		arg.GameDate,
	)
	return scanGameResult(row)
}

const getGameResult = `-- name: GetGameResult :one
SELECT id, room_id, room_name, winner_id, winner_name, winner_count, players, finished_at, game_date
FROM game_results
WHERE id = $1
`

func (q *Queries) GetGameResult(ctx context.Context, id uuid.UUID) (GameResult, error) {
	return scanGameResult(q.db.QueryRowContext(ctx, getGameResult, id))
}

const getGameResultByRoom = `-- name: GetGameResultByRoom :one
SELECT id, room_id, room_name, winner_id, winner_name, winner_count, players, finished_at, game_date
FROM game_results
WHERE room_id = $1
`

func (q *Queries) GetGameResultByRoom(ctx context.Context, roomID uuid.UUID) (GameResult, error) {
	return scanGameResult(q.db.QueryRowContext(ctx, getGameResultByRoom, roomID))
}

const deleteGameResult = `-- name: DeleteGameResult :execrows
DELETE FROM game_results WHERE id = $1
`

func (q *Queries) DeleteGameResult(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGameResult, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGameResult(row rowScanner) (GameResult, error) {
	var i GameResult
	err := row.Scan(
		&i.ID,
		&i.RoomID,
		&i.RoomName,
		&i.WinnerID,
		&i.WinnerName,
		&i.WinnerCount,
		&i.Players,
		&i.FinishedAt,
		&i.GameDate,
	)
	return i, err
}
