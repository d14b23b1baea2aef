package db

import (
	"context"

	"github.com/google/uuid"
)

const topUsersByTotalSushi = `-- name: TopUsersByTotalSushi :many
SELECT s.user_id, u.display_name, s.total_sushi, s.games_played, s.wins
FROM user_stats s
JOIN users u ON u.id = s.user_id
ORDER BY s.total_sushi DESC, s.updated_at ASC
LIMIT $1
`

func (q *Queries) TopUsersByTotalSushi(ctx context.Context, limit int32) ([]UserStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, topUsersByTotalSushi, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UserStatsRow
	for rows.Next() {
		var i UserStatsRow
		if err := rows.Scan(
			&i.UserID,
			&i.DisplayName,
			&i.TotalSushi,
			&i.GamesPlayed,
			&i.Wins,
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

const getUserStats = `-- name: GetUserStats :one
SELECT u.id, u.display_name,
       COALESCE(s.total_sushi, 0)::bigint,
       COALESCE(s.games_played, 0)::int,
       COALESCE(s.wins, 0)::int
FROM users u
LEFT JOIN user_stats s ON s.user_id = u.id
WHERE u.id = $1
`

func (q *Queries) GetUserStats(ctx context.Context, userID uuid.UUID) (UserStatsRow, error) {
	row := q.db.QueryRowContext(ctx, getUserStats, userID)
	var i UserStatsRow
	err := row.Scan(
		&i.UserID,
		&i.DisplayName,
		&i.TotalSushi,
		&i.GamesPlayed,
		&i.Wins,
	)
	return i, err
}

const listUserDailySushi = `-- name: ListUserDailySushi :many
SELECT day, sushi
FROM user_daily_sushi
WHERE user_id = $1
ORDER BY day DESC
LIMIT $2
`

type ListUserDailySushiParams struct {
	UserID uuid.UUID `json:"user_id"`
	Limit  int32     `json:"limit"`
}

func (q *Queries) ListUserDailySushi(ctx context.Context, arg ListUserDailySushiParams) ([]DailySushiRow, error) {
	rows, err := q.db.QueryContext(ctx, listUserDailySushi, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DailySushiRow
	for rows.Next() {
		var i DailySushiRow
		if err := rows.Scan(&i.Day, &i.Sushi); err != nil {
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
