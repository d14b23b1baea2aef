package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/sushirush/go/internal/games/db"
	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/outbox"
	"github.com/mcdev12/sushirush/go/internal/rooms"
	roomsdb "github.com/mcdev12/sushirush/go/internal/rooms/db"
	"github.com/mcdev12/sushirush/go/internal/sqlutil"
)

// Repository implements game result and stat writes
type Repository struct {
	db          *sql.DB
	queries     *db.Queries
	roomQueries *roomsdb.Queries
	outbox      *outbox.Repository
}

// NewRepository creates a new games repository
func NewRepository(database *sql.DB, queries *db.Queries, roomQueries *roomsdb.Queries, outboxRepo *outbox.Repository) *Repository {
	return &Repository{
		db:          database,
		queries:     queries,
		roomQueries: roomQueries,
		outbox:      outboxRepo,
	}
}

// GetGame retrieves a finished game by ID
func (r *Repository) GetGame(ctx context.Context, id uuid.UUID) (*models.GameResult, error) {
	row, err := r.queries.GetGameResult(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return dbGameToModel(row)
}

// DeleteGame removes a game record. Stats are left as they are.
func (r *Repository) DeleteGame(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.queries.DeleteGameResult(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete game: %w", err)
	}
	return n > 0, nil
}

// WithinTx runs fn against a store bound to one transaction spanning game
// results, stats, the room row and the outbox.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx GameStore) error) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&txStore{
			queries:     r.queries.WithTx(tx),
			roomQueries: r.roomQueries.WithTx(tx),
			outbox:      r.outbox.WithTx(tx),
		})
	})
}

type txStore struct {
	queries     *db.Queries
	roomQueries *roomsdb.Queries
	outbox      *outbox.Repository
}

func (s *txStore) LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return rooms.LoadRoom(ctx, s.roomQueries, id, true)
}

func (s *txStore) GetResultByRoom(ctx context.Context, roomID uuid.UUID) (*models.GameResult, error) {
	row, err := s.queries.GetGameResultByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game by room: %w", err)
	}
	return dbGameToModel(row)
}

func (s *txStore) InsertResult(ctx context.Context, result models.GameResult) error {
	players, err := json.Marshal(result.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}
	_, err = s.queries.InsertGameResult(ctx, db.InsertGameResultParams{
		ID:          result.ID,
		RoomID:      result.RoomID,
		RoomName:    result.RoomName,
		WinnerID:    result.WinnerID,
		WinnerName:  result.WinnerName,
		WinnerCount: int32(result.WinnerCount),
		Players:     players,
		FinishedAt:  result.FinishedAt,
		GameDate:    result.Date,
	})
	if err != nil {
		return fmt.Errorf("failed to insert game result: %w", err)
	}
	return nil
}

func (s *txStore) ApplyStatDelta(ctx context.Context, delta models.StatDelta, at time.Time) error {
	var wins int32
	if delta.Win {
		wins = 1
	}
	err := s.queries.ApplyStatDelta(ctx, db.ApplyStatDeltaParams{
		UserID:    delta.UserID,
		Sushi:     int64(delta.Sushi),
		Wins:      wins,
		UpdatedAt: at,
	})
	if err != nil {
		return fmt.Errorf("failed to update stats for %s: %w", delta.UserID, err)
	}

	err = s.queries.AddDailySushi(ctx, db.AddDailySushiParams{
		UserID: delta.UserID,
		Day:    delta.Day,
		Sushi:  int64(delta.Sushi),
	})
	if err != nil {
		return fmt.Errorf("failed to update daily sushi for %s: %w", delta.UserID, err)
	}
	return nil
}

func (s *txStore) CloseRoom(ctx context.Context, roomID uuid.UUID, at time.Time) (bool, error) {
	return rooms.CloseRoomTx(ctx, s.roomQueries, roomID, at)
}

func (s *txStore) Emit(ctx context.Context, events ...outbox.OutboxEvent) error {
	return s.outbox.InsertEvents(ctx, events...)
}

func dbGameToModel(row db.GameResult) (*models.GameResult, error) {
	var players []models.Player
	if err := json.Unmarshal(row.Players, &players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players of game %s: %w", row.ID, err)
	}
	return &models.GameResult{
		ID:          row.ID,
		RoomID:      row.RoomID,
		RoomName:    row.RoomName,
		WinnerID:    row.WinnerID,
		WinnerName:  row.WinnerName,
		WinnerCount: int(row.WinnerCount),
		Players:     players,
		FinishedAt:  row.FinishedAt,
		Date:        row.GameDate.Format(models.DateLayout),
	}, nil
}
