package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	CreatedBy uuid.UUID      `json:"created_by"`
	IsActive  bool           `json:"is_active"`
	PhotoUrl  sql.NullString `json:"photo_url"`
	Location  sql.NullString `json:"location"`
	CreatedAt time.Time      `json:"created_at"`
	ClosedAt  sql.NullTime   `json:"closed_at"`
}

type RoomPlayer struct {
	RoomID     uuid.UUID `json:"room_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	Name       string    `json:"name"`
	SushiCount int32     `json:"sushi_count"`
	Position   int32     `json:"position"`
	JoinedAt   time.Time `json:"joined_at"`
}

type RoomRating struct {
	ID         uuid.UUID      `json:"id"`
	RoomID     uuid.UUID      `json:"room_id"`
	AuthorID   uuid.UUID      `json:"author_id"`
	AuthorName string         `json:"author_name"`
	Score      int16          `json:"score"`
	Comment    sql.NullString `json:"comment"`
	CreatedAt  time.Time      `json:"created_at"`
}
