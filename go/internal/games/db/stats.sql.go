package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const applyStatDelta = `-- name: ApplyStatDelta :exec
INSERT INTO user_stats (user_id, total_sushi, games_played, wins, updated_at)
VALUES ($1, $2, 1, $3, $4)
ON CONFLICT (user_id) DO UPDATE
SET total_sushi  = user_stats.total_sushi + EXCLUDED.total_sushi,
    games_played = user_stats.games_played + 1,
    wins         = user_stats.wins + EXCLUDED.wins,
    updated_at   = EXCLUDED.updated_at
`

type ApplyStatDeltaParams struct {
	UserID    uuid.UUID `json:"user_id"`
	Sushi     int64     `json:"sushi"`
	Wins      int32     `json:"wins"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) ApplyStatDelta(ctx context.Context, arg ApplyStatDeltaParams) error {
	_, err := q.db.ExecContext(ctx, applyStatDelta,
		arg.UserID,
		arg.Sushi,
		arg.Wins,
		arg.UpdatedAt,
	)
	return err
}

const addDailySushi = `-- name: AddDailySushi :exec
INSERT INTO user_daily_sushi (user_id, day, sushi)
VALUES ($1, $2::date, $3)
ON CONFLICT (user_id, day) DO UPDATE
SET sushi = user_daily_sushi.sushi + EXCLUDED.sushi
`

type AddDailySushiParams struct {
	UserID uuid.UUID `json:"user_id"`
	Day    string    `json:"day"`
	Sushi  int64     `json:"sushi"`
}

func (q *Queries) AddDailySushi(ctx context.Context, arg AddDailySushiParams) error {
	_, err := q.db.ExecContext(ctx, addDailySushi, arg.UserID, arg.Day, arg.Sushi)
	return err
}
