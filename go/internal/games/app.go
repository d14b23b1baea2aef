package games

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sushirush/go/internal/events"
	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/outbox"
)

// GamesRepository defines what the app layer needs from the repository
type GamesRepository interface {
	GetGame(ctx context.Context, id uuid.UUID) (*models.GameResult, error)
	DeleteGame(ctx context.Context, id uuid.UUID) (bool, error)
	WithinTx(ctx context.Context, fn func(tx GameStore) error) error
}

// GameStore is the set of reads and writes available inside one finish transaction
type GameStore interface {
	LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	GetResultByRoom(ctx context.Context, roomID uuid.UUID) (*models.GameResult, error)
	InsertResult(ctx context.Context, result models.GameResult) error
	ApplyStatDelta(ctx context.Context, delta models.StatDelta, at time.Time) error
	CloseRoom(ctx context.Context, roomID uuid.UUID, at time.Time) (bool, error)
	Emit(ctx context.Context, events ...outbox.OutboxEvent) error
}

// RankingsInvalidator drops cached leaderboards after stats change
type RankingsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// App handles game finalization
type App struct {
	repo     GamesRepository
	clock    clockwork.Clock
	rankings RankingsInvalidator
}

// NewApp creates a new games App. rankings may be nil.
func NewApp(repo GamesRepository, clock clockwork.Clock, rankings RankingsInvalidator) *App {
	return &App{
		repo:     repo,
		clock:    clock,
		rankings: rankings,
	}
}

// FinishGame records the winner of a room, applies every player's stats and
// closes the room in one transaction. Finishing an already finished room
// returns the stored result without touching stats.
func (a *App) FinishGame(ctx context.Context, req FinishGameRequest) (*FinishResult, error) {
	var out FinishResult
	err := a.repo.WithinTx(ctx, func(tx GameStore) error {
		room, err := tx.LockRoom(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if room.CreatedBy != req.RequestedBy {
			return ErrNotRoomCreator
		}

		existing, err := tx.GetResultByRoom(ctx, req.RoomID)
		switch {
		case err == nil:
			out = FinishResult{Result: existing, Replayed: true}
			return nil
		case !errors.Is(err, ErrGameNotFound):
			return err
		}

		if !room.IsActive {
			return ErrRoomInactive
		}
		winner, ok := models.SelectWinner(room.Players)
		if !ok {
			return ErrNoPlayers
		}

		now := a.clock.Now().UTC()
		result := models.GameResult{
			ID:          uuid.New(),
			RoomID:      room.ID,
			RoomName:    room.Name,
			WinnerID:    winner.ID,
			WinnerName:  winner.Name,
			WinnerCount: winner.SushiCount,
			Players:     room.Players,
			FinishedAt:  now,
			Date:        models.GameDate(now),
		}
		if err := tx.InsertResult(ctx, result); err != nil {
			return err
		}

		for _, delta := range models.FinishDeltas(room.Players, winner.ID, result.Date) {
			if err := tx.ApplyStatDelta(ctx, delta, now); err != nil {
				return err
			}
		}

		if _, err := tx.CloseRoom(ctx, room.ID, now); err != nil {
			return err
		}

		finished, err := outbox.NewEvent(room.ID, events.GameFinished, events.GameFinishedPayload{
			RoomID:      room.ID,
			GameID:      result.ID,
			WinnerID:    winner.ID,
			WinnerName:  winner.Name,
			WinnerCount: winner.SushiCount,
			FinishedAt:  now,
		}, now)
		if err != nil {
			return err
		}
		closed, err := outbox.NewEvent(room.ID, events.RoomClosed, events.RoomClosedPayload{
			RoomID:   room.ID,
			Reason:   events.ReasonGameFinished,
			ClosedAt: now,
		}, now)
		if err != nil {
			return err
		}
		if err := tx.Emit(ctx, finished, closed); err != nil {
			return err
		}

		out = FinishResult{Result: &result}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finish game: %w", err)
	}

	if out.Replayed {
		log.Info().Str("room_id", req.RoomID.String()).Msg("game already finished, returning stored result")
		return &out, nil
	}

	log.Info().
		Str("room_id", req.RoomID.String()).
		Str("game_id", out.Result.ID.String()).
		Str("winner_id", out.Result.WinnerID.String()).
		Int("winner_count", out.Result.WinnerCount).
		Int("players", len(out.Result.Players)).
		Msg("game finished")

	a.invalidateRankings(ctx)
	return &out, nil
}

// FinishSoloGame credits a solo session. Solo play always counts as a win.
func (a *App) FinishSoloGame(ctx context.Context, userID uuid.UUID, count int) (*models.StatDelta, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	now := a.clock.Now().UTC()
	delta := models.StatDelta{
		UserID: userID,
		Sushi:  count,
		Win:    true,
		Day:    models.GameDate(now),
	}
	err := a.repo.WithinTx(ctx, func(tx GameStore) error {
		return tx.ApplyStatDelta(ctx, delta, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finish solo game: %w", err)
	}

	log.Info().Str("user_id", userID.String()).Int("count", count).Msg("solo game finished")
	a.invalidateRankings(ctx)
	return &delta, nil
}

// GetGame retrieves a finished game by ID
func (a *App) GetGame(ctx context.Context, id uuid.UUID) (*models.GameResult, error) {
	game, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// DeleteGame removes a game from history without rewinding stats
func (a *App) DeleteGame(ctx context.Context, id uuid.UUID) error {
	deleted, err := a.repo.DeleteGame(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGameNotFound
	}
	log.Info().Str("game_id", id.String()).Msg("game deleted")
	return nil
}

func (a *App) invalidateRankings(ctx context.Context) {
	if a.rankings == nil {
		return
	}
	if err := a.rankings.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate rankings cache")
	}
}
