package rankings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sushirush/go/internal/models"
)

const (
	DefaultTopLimit     = 10
	DefaultHistoryLimit = 20
	MaxLimit            = 100
)

// RankingsRepository defines what the app layer needs from the repository
type RankingsRepository interface {
	TopByTotalSushi(ctx context.Context, n int) ([]models.UserStats, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
	GamesOnDate(ctx context.Context, day string) ([]models.GameResult, error)
	RecentGames(ctx context.Context, limit int) ([]models.GameResult, error)
}

// Cache holds computed leaderboards
type Cache interface {
	GetTop(ctx context.Context, limit int) ([]models.UserStats, bool, error)
	SetTop(ctx context.Context, limit int, stats []models.UserStats) error
	Invalidate(ctx context.Context) error
}

// App serves leaderboards and game history
type App struct {
	repo  RankingsRepository
	cache Cache
}

// NewApp creates a new rankings App. A nil cache disables caching.
func NewApp(repo RankingsRepository, cache Cache) *App {
	if cache == nil {
		cache = NoopCache{}
	}
	return &App{repo: repo, cache: cache}
}

// TopByTotalSushi returns up to n users ordered by total sushi, highest first.
// n <= 0 means DefaultTopLimit and n is capped at MaxLimit, so callers asking
// for more than MaxLimit get MaxLimit rows. Cache failures fall back to the
// database.
func (a *App) TopByTotalSushi(ctx context.Context, n int) ([]models.UserStats, error) {
	n = clampLimit(n, DefaultTopLimit)

	cached, ok, err := a.cache.GetTop(ctx, n)
	if err != nil {
		log.Warn().Err(err).Int("limit", n).Msg("rankings cache read failed")
	}
	if ok {
		return cached, nil
	}

	stats, err := a.repo.TopByTotalSushi(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	if err := a.cache.SetTop(ctx, n, stats); err != nil {
		log.Warn().Err(err).Int("limit", n).Msg("rankings cache write failed")
	}
	return stats, nil
}

// GamesOnDate lists games finished on date (YYYY-MM-DD), newest first
func (a *App) GamesOnDate(ctx context.Context, date string) ([]models.GameResult, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	games, err := a.repo.GamesOnDate(ctx, day.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get games on date: %w", err)
	}
	return games, nil
}

// GameHistory lists the newest games across all days
func (a *App) GameHistory(ctx context.Context, limit int) ([]models.GameResult, error) {
	games, err := a.repo.RecentGames(ctx, clampLimit(limit, DefaultHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to get game history: %w", err)
	}
	return games, nil
}

// GetUserStats returns a user's lifetime totals and daily breakdown
func (a *App) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	stats, err := a.repo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

// Invalidate drops cached leaderboards
func (a *App) Invalidate(ctx context.Context) error {
	return a.cache.Invalidate(ctx)
}

func clampLimit(n, def int) int {
	switch {
	case n <= 0:
		return def
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
