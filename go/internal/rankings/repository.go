package rankings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/rankings/db"
)

const dailyWindow = 30

// Repository implements the read-only ranking and history queries
type Repository struct {
	queries *db.Queries
}

// NewRepository creates a new rankings repository
func NewRepository(queries *db.Queries) *Repository {
	return &Repository{queries: queries}
}

// TopByTotalSushi returns the n users with the most sushi
func (r *Repository) TopByTotalSushi(ctx context.Context, n int) ([]models.UserStats, error) {
	rows, err := r.queries.TopUsersByTotalSushi(ctx, int32(n))
	if err != nil {
		return nil, fmt.Errorf("failed to list top users: %w", err)
	}
	out := make([]models.UserStats, len(rows))
	for i, row := range rows {
		out[i] = statsRowToModel(row)
	}
	return out, nil
}

// GetUserStats returns lifetime totals and the recent daily buckets. Unknown
// users come back zeroed.
func (r *Repository) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	row, err := r.queries.GetUserStats(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.UserStats{UserID: userID, Daily: map[string]int64{}}, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	stats := statsRowToModel(row)

	days, err := r.queries.ListUserDailySushi(ctx, db.ListUserDailySushiParams{UserID: userID, Limit: dailyWindow})
	if err != nil {
		return nil, fmt.Errorf("failed to list daily sushi: %w", err)
	}
	stats.Daily = make(map[string]int64, len(days))
	for _, d := range days {
		stats.Daily[d.Day.Format(models.DateLayout)] = d.Sushi
	}
	return &stats, nil
}

// GamesOnDate lists the games finished on one calendar day, newest first
func (r *Repository) GamesOnDate(ctx context.Context, day string) ([]models.GameResult, error) {
	rows, err := r.queries.ListGamesOnDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list games on %s: %w", day, err)
	}
	return gamesToModels(rows)
}

// RecentGames lists the newest games across all days
func (r *Repository) RecentGames(ctx context.Context, limit int) ([]models.GameResult, error) {
	rows, err := r.queries.ListRecentGames(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent games: %w", err)
	}
	return gamesToModels(rows)
}

func statsRowToModel(row db.UserStatsRow) models.UserStats {
	return models.UserStats{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		TotalSushi:  row.TotalSushi,
		GamesPlayed: int(row.GamesPlayed),
		Wins:        int(row.Wins),
	}
}

func gamesToModels(rows []db.GameResult) ([]models.GameResult, error) {
	out := make([]models.GameResult, len(rows))
	for i, row := range rows {
		var players []models.Player
		if err := json.Unmarshal(row.Players, &players); err != nil {
			return nil, fmt.Errorf("failed to unmarshal players of game %s: %w", row.ID, err)
		}
		out[i] = models.GameResult{
			ID:          row.ID,
			RoomID:      row.RoomID,
			RoomName:    row.RoomName,
			WinnerID:    row.WinnerID,
			WinnerName:  row.WinnerName,
			WinnerCount: int(row.WinnerCount),
			Players:     players,
			FinishedAt:  row.FinishedAt,
			Date:        row.GameDate.Format(models.DateLayout),
		}
	}
	return out, nil
}
