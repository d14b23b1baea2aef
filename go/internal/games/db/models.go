package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type GameResult struct {
	ID          uuid.UUID       `json:"id"`
	RoomID      uuid.UUID       `json:"room_id"`
	RoomName    string          `json:"room_name"`
	WinnerID    uuid.UUID       `json:"winner_id"`
	WinnerName  string          `json:"winner_name"`
	WinnerCount int32           `json:"winner_count"`
	Players     json.RawMessage `json:"players"`
	FinishedAt  time.Time       `json:"finished_at"`
	GameDate    time.Time       `json:"game_date"`
}
