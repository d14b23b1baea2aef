package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const insertRating = `-- name: InsertRating :execrows
INSERT INTO room_ratings (id, room_id, author_id, author_name, score, comment, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (room_id, author_id) DO NOTHING
`

type InsertRatingParams struct {
	ID         uuid.UUID      `json:"id"`
	RoomID     uuid.UUID      `json:"room_id"`
	AuthorID   uuid.UUID      `json:"author_id"`
	AuthorName string         `json:"author_name"`
	Score      int16          `json:"score"`
	Comment    sql.NullString `json:"comment"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (q *Queries) InsertRating(ctx context.Context, arg InsertRatingParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertRating,
		arg.ID,
		arg.RoomID,
		arg.AuthorID,
		arg.AuthorName,
		arg.Score,
		arg.Comment,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listRatingsByRooms = `-- name: ListRatingsByRooms :many
SELECT id, room_id, author_id, author_name, score, comment, created_at
FROM room_ratings
WHERE room_id = ANY($1::uuid[])
ORDER BY room_id, created_at
`

func (q *Queries) ListRatingsByRooms(ctx context.Context, roomIDs []string) ([]RoomRating, error) {
	rows, err := q.db.QueryContext(ctx, listRatingsByRooms, pq.Array(roomIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RoomRating
	for rows.Next() {
		var i RoomRating
		if err := rows.Scan(
			&i.ID,
			&i.RoomID,
			&i.AuthorID,
			&i.AuthorName,
			&i.Score,
			&i.Comment,
			&i.CreatedAt,
		); err != nil {
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
