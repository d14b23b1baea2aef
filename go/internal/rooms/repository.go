package rooms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/outbox"
	"github.com/mcdev12/sushirush/go/internal/rooms/db"
	"github.com/mcdev12/sushirush/go/internal/sqlutil"
)

// Repository implements room data access operations
type Repository struct {
	db      *sql.DB
	queries *db.Queries
	outbox  *outbox.Repository
}

// NewRepository creates a new rooms repository
func NewRepository(database *sql.DB, queries *db.Queries, outboxRepo *outbox.Repository) *Repository {
	return &Repository{
		db:      database,
		queries: queries,
		outbox:  outboxRepo,
	}
}

// GetRoom retrieves a room with its players and ratings
func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return LoadRoom(ctx, r.queries, id, false)
}

// ListActiveRooms retrieves every active room, newest first
func (r *Repository) ListActiveRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := r.queries.ListActiveRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rooms: %w", err)
	}
	return assembleRooms(ctx, r.queries, rows)
}

// ListAbandonedRooms returns active rooms without players created before the cutoff
func (r *Repository) ListAbandonedRooms(ctx context.Context, createdBefore time.Time) ([]uuid.UUID, error) {
	ids, err := r.queries.ListAbandonedRooms(ctx, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list abandoned rooms: %w", err)
	}
	return ids, nil
}

// WithinTx runs fn against a store bound to one transaction. Outbox events
// emitted through the store commit together with the room changes.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx RoomStore) error) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&txStore{
			queries: r.queries.WithTx(tx),
			outbox:  r.outbox.WithTx(tx),
		})
	})
}

type txStore struct {
	queries *db.Queries
	outbox  *outbox.Repository
}

func (s *txStore) CreateRoom(ctx context.Context, room models.Room) error {
	_, err := s.queries.CreateRoom(ctx, db.CreateRoomParams{
		ID:        room.ID,
		Name:      room.Name,
		CreatedBy: room.CreatedBy,
		PhotoUrl:  sqlutil.ToSqlString(room.PhotoURL),
		Location:  sqlutil.ToSqlString(room.Location),
		CreatedAt: room.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (s *txStore) LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return LoadRoom(ctx, s.queries, id, true)
}

func (s *txStore) AddPlayer(ctx context.Context, roomID uuid.UUID, player models.Player) error {
	_, err := s.queries.InsertPlayer(ctx, db.InsertPlayerParams{
		RoomID:   roomID,
		PlayerID: player.ID,
		Name:     player.Name,
		JoinedAt: player.JoinedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (s *txStore) RemovePlayer(ctx context.Context, roomID, playerID uuid.UUID) (bool, error) {
	n, err := s.queries.DeletePlayer(ctx, db.DeletePlayerParams{RoomID: roomID, PlayerID: playerID})
	if err != nil {
		return false, fmt.Errorf("failed to delete player: %w", err)
	}
	return n > 0, nil
}

func (s *txStore) SetPlayerCount(ctx context.Context, roomID, playerID uuid.UUID, count int) (int, error) {
	n, err := s.queries.SetPlayerCount(ctx, db.SetPlayerCountParams{
		RoomID:     roomID,
		PlayerID:   playerID,
		SushiCount: int32(count),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPlayerNotInRoom
		}
		return 0, fmt.Errorf("failed to set player count: %w", err)
	}
	return int(n), nil
}

func (s *txStore) AddToPlayerCount(ctx context.Context, roomID, playerID uuid.UUID, delta int) (int, error) {
	n, err := s.queries.AddToPlayerCount(ctx, db.AddToPlayerCountParams{
		RoomID:   roomID,
		PlayerID: playerID,
		Delta:    int32(delta),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPlayerNotInRoom
		}
		return 0, fmt.Errorf("failed to add to player count: %w", err)
	}
	return int(n), nil
}

func (s *txStore) CloseRoom(ctx context.Context, roomID uuid.UUID, at time.Time) (bool, error) {
	return CloseRoomTx(ctx, s.queries, roomID, at)
}

func (s *txStore) UpdateDetails(ctx context.Context, roomID uuid.UUID, photoURL, location *string) error {
	err := s.queries.UpdateRoomDetails(ctx, db.UpdateRoomDetailsParams{
		ID:       roomID,
		PhotoUrl: sqlutil.ToSqlString(photoURL),
		Location: sqlutil.ToSqlString(location),
	})
	if err != nil {
		return fmt.Errorf("failed to update room details: %w", err)
	}
	return nil
}

func (s *txStore) AddRating(ctx context.Context, roomID uuid.UUID, rating models.Rating) (bool, error) {
	n, err := s.queries.InsertRating(ctx, db.InsertRatingParams{
		ID:         rating.ID,
		RoomID:     roomID,
		AuthorID:   rating.AuthorID,
		AuthorName: rating.AuthorName,
		Score:      int16(rating.Score),
		Comment:    sqlutil.ToSqlString(rating.Comment),
		CreatedAt:  rating.CreatedAt,
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert rating: %w", err)
	}
	return n > 0, nil
}

func (s *txStore) Emit(ctx context.Context, events ...outbox.OutboxEvent) error {
	return s.outbox.InsertEvents(ctx, events...)
}

// LoadRoom reads one room with its players and ratings. With forUpdate the
// room row stays locked until the surrounding transaction ends.
func LoadRoom(ctx context.Context, q *db.Queries, id uuid.UUID, forUpdate bool) (*models.Room, error) {
	var (
		row db.Room
		err error
	)
	if forUpdate {
		row, err = q.GetRoomForUpdate(ctx, id)
	} else {
		row, err = q.GetRoom(ctx, id)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	rooms, err := assembleRooms(ctx, q, []db.Room{row})
	if err != nil {
		return nil, err
	}
	return &rooms[0], nil
}

// CloseRoomTx flips an active room to inactive. It reports false when the
// room was already closed.
func CloseRoomTx(ctx context.Context, q *db.Queries, roomID uuid.UUID, at time.Time) (bool, error) {
	n, err := q.CloseRoom(ctx, db.CloseRoomParams{ID: roomID, ClosedAt: at})
	if err != nil {
		return false, fmt.Errorf("failed to close room: %w", err)
	}
	return n > 0, nil
}

func assembleRooms(ctx context.Context, q *db.Queries, rows []db.Room) ([]models.Room, error) {
	rooms := make([]models.Room, len(rows))
	if len(rows) == 0 {
		return rooms, nil
	}

	ids := make([]string, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID.String()
		index[row.ID] = i
		rooms[i] = dbRoomToModel(row)
	}

	players, err := q.ListPlayersByRooms(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list room players: %w", err)
	}
	for _, p := range players {
		i := index[p.RoomID]
		rooms[i].Players = append(rooms[i].Players, models.Player{
			ID:         p.PlayerID,
			Name:       p.Name,
			SushiCount: int(p.SushiCount),
			JoinedAt:   p.JoinedAt,
		})
	}

	ratings, err := q.ListRatingsByRooms(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list room ratings: %w", err)
	}
	for _, rt := range ratings {
		i := index[rt.RoomID]
		rooms[i].Ratings = append(rooms[i].Ratings, models.Rating{
			ID:         rt.ID,
			AuthorID:   rt.AuthorID,
			AuthorName: rt.AuthorName,
			Score:      int(rt.Score),
			Comment:    sqlutil.FromSqlStringPtr(rt.Comment),
			CreatedAt:  rt.CreatedAt,
		})
	}

	return rooms, nil
}

func dbRoomToModel(row db.Room) models.Room {
	return models.Room{
		ID:        row.ID,
		Name:      row.Name,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
		IsActive:  row.IsActive,
		Players:   []models.Player{},
		PhotoURL:  sqlutil.FromSqlStringPtr(row.PhotoUrl),
		Location:  sqlutil.FromSqlStringPtr(row.Location),
		Ratings:   []models.Rating{},
		ClosedAt:  sqlutil.FromSqlTime(row.ClosedAt),
	}
}
