package db

import (
	"context"
	"database/sql"
)

const listGamesOnDate = `-- name: ListGamesOnDate :many
SELECT id, room_id, room_name, winner_id, winner_name, winner_count, players, finished_at, game_date
FROM game_results
WHERE game_date = $1::date
ORDER BY finished_at DESC
`

func (q *Queries) ListGamesOnDate(ctx context.Context, day string) ([]GameResult, error) {
	rows, err := q.db.QueryContext(ctx, listGamesOnDate, day)
	if err != nil {
		return nil, err
	}
	return collectGameResults(rows)
}

const listRecentGames = `-- name: ListRecentGames :many
SELECT id, room_id, room_name, winner_id, winner_name, winner_count, players, finished_at, game_date
FROM game_results
ORDER BY finished_at DESC
LIMIT $1
`

func (q *Queries) ListRecentGames(ctx context.Context, limit int32) ([]GameResult, error) {
	rows, err := q.db.QueryContext(ctx, listRecentGames, limit)
	if err != nil {
		return nil, err
	}
	return collectGameResults(rows)
}

func collectGameResults(rows *sql.Rows) ([]GameResult, error) {
	defer rows.Close()
	var items []GameResult
	for rows.Next() {
		var i GameResult
		if err := rows.Scan(
			&i.ID,
			&i.RoomID,
			&i.RoomName,
			&i.WinnerID,
			&i.WinnerName,
			&i.WinnerCount,
			&i.Players,
			&i.FinishedAt,
			&i.GameDate,
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
