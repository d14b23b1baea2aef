package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const insertPlayer = `-- name: InsertPlayer :one
INSERT INTO room_players (room_id, player_id, name, sushi_count, position, joined_at)
VALUES ($1, $2, $3, 0,
        (SELECT COALESCE(MAX(position), 0) + 1 FROM room_players WHERE room_id = $1),
        $4)
RETURNING room_id, player_id, name, sushi_count, position, joined_at
`

type InsertPlayerParams struct {
	RoomID   uuid.UUID `json:"room_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

func (q *Queries) InsertPlayer(ctx context.Context, arg InsertPlayerParams) (RoomPlayer, error) {
	row := q.db.QueryRowContext(ctx, insertPlayer,
		arg.RoomID,
		arg.PlayerID,
		arg.Name,
		arg.JoinedAt,
	)
	return scanPlayer(row)
}

const deletePlayer = `-- name: DeletePlayer :execrows
DELETE FROM room_players WHERE room_id = $1 AND player_id = $2
`

type DeletePlayerParams struct {
	RoomID   uuid.UUID `json:"room_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

func (q *Queries) DeletePlayer(ctx context.Context, arg DeletePlayerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePlayer, arg.RoomID, arg.PlayerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setPlayerCount = `-- name: SetPlayerCount :one
UPDATE room_players
SET sushi_count = GREATEST($3::int, 0)
WHERE room_id = $1 AND player_id = $2
RETURNING sushi_count
`

type SetPlayerCountParams struct {
	RoomID     uuid.UUID `json:"room_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	SushiCount int32     `json:"sushi_count"`
}

func (q *Queries) SetPlayerCount(ctx context.Context, arg SetPlayerCountParams) (int32, error) {
	row := q.db.QueryRowContext(ctx, setPlayerCount, arg.RoomID, arg.PlayerID, arg.SushiCount)
	var sushiCount int32
	err := row.Scan(&sushiCount)
	return sushiCount, err
}

const addToPlayerCount = `-- name: AddToPlayerCount :one
UPDATE room_players
SET sushi_count = GREATEST(sushi_count + $3::int, 0)
WHERE room_id = $1 AND player_id = $2
RETURNING sushi_count
`

type AddToPlayerCountParams struct {
	RoomID   uuid.UUID `json:"room_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Delta    int32     `json:"delta"`
}

func (q *Queries) AddToPlayerCount(ctx context.Context, arg AddToPlayerCountParams) (int32, error) {
	row := q.db.QueryRowContext(ctx, addToPlayerCount, arg.RoomID, arg.PlayerID, arg.Delta)
	var sushiCount int32
	err := row.Scan(&sushiCount)
	return sushiCount, err
}

const listPlayersByRooms = `-- name: ListPlayersByRooms :many
SELECT room_id, player_id, name, sushi_count, position, joined_at
FROM room_players
WHERE room_id = ANY($1::uuid[])
ORDER BY room_id, position
`

// ListPlayersByRooms loads the seats of every room in roomIDs in join order.
func (q *Queries) ListPlayersByRooms(ctx context.Context, roomIDs []string) ([]RoomPlayer, error) {
	rows, err := q.db.QueryContext(ctx, listPlayersByRooms, pq.Array(roomIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RoomPlayer
	for rows.Next() {
		i, err := scanPlayer(rows)
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

func scanPlayer(row rowScanner) (RoomPlayer, error) {
	var i RoomPlayer
	err := row.Scan(
		&i.RoomID,
		&i.PlayerID,
		&i.Name,
		&i.SushiCount,
		&i.Position,
		&i.JoinedAt,
	)
	return i, err
}
