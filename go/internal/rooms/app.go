package rooms

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sushirush/go/internal/events"
	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/outbox"
)

// RoomsRepository defines what the app layer needs from the repository
type RoomsRepository interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	ListActiveRooms(ctx context.Context) ([]models.Room, error)
	ListAbandonedRooms(ctx context.Context, createdBefore time.Time) ([]uuid.UUID, error)
	WithinTx(ctx context.Context, fn func(tx RoomStore) error) error
}

// RoomStore is the set of writes available inside one room transaction
type RoomStore interface {
	CreateRoom(ctx context.Context, room models.Room) error
	LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	AddPlayer(ctx context.Context, roomID uuid.UUID, player models.Player) error
	RemovePlayer(ctx context.Context, roomID, playerID uuid.UUID) (bool, error)
	SetPlayerCount(ctx context.Context, roomID, playerID uuid.UUID, count int) (int, error)
	AddToPlayerCount(ctx context.Context, roomID, playerID uuid.UUID, delta int) (int, error)
	CloseRoom(ctx context.Context, roomID uuid.UUID, at time.Time) (bool, error)
	UpdateDetails(ctx context.Context, roomID uuid.UUID, photoURL, location *string) error
	AddRating(ctx context.Context, roomID uuid.UUID, rating models.Rating) (bool, error)
	Emit(ctx context.Context, events ...outbox.OutboxEvent) error
}

// App handles room business logic
type App struct {
	repo       RoomsRepository
	clock      clockwork.Clock
	maxPlayers int
}

// NewApp creates a new rooms App
func NewApp(repo RoomsRepository, clock clockwork.Clock, cfg Config) *App {
	maxPlayers := cfg.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = models.MaxPlayersPerRoom
	}
	return &App{
		repo:       repo,
		clock:      clock,
		maxPlayers: maxPlayers,
	}
}

// CreateRoom opens a new active room with no players
func (a *App) CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidRoomName
	}
	if req.CreatedBy == uuid.Nil {
		return nil, ErrInvalidPlayer
	}

	now := a.now()
	room := models.Room{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		IsActive:  true,
		Players:   []models.Player{},
		PhotoURL:  cleanOptional(req.PhotoURL),
		Location:  cleanOptional(req.Location),
		Ratings:   []models.Rating{},
	}

	event, err := outbox.NewEvent(room.ID, events.RoomCreated, events.RoomCreatedPayload{
		RoomID:    room.ID,
		Name:      room.Name,
		CreatedBy: room.CreatedBy,
		CreatedAt: now,
	}, now)
	if err != nil {
		return nil, err
	}

	emitted := []outbox.OutboxEvent{event}

	var seat *models.Player
	if creatorName := strings.TrimSpace(req.CreatorName); creatorName != "" {
		seat = &models.Player{ID: req.CreatedBy, Name: creatorName, JoinedAt: now}
		joined, err := outbox.NewEvent(room.ID, events.PlayerJoined, events.PlayerJoinedPayload{
			RoomID:   room.ID,
			PlayerID: seat.ID,
			Name:     seat.Name,
			Seats:    1,
			JoinedAt: now,
		}, now)
		if err != nil {
			return nil, err
		}
		emitted = append(emitted, joined)
	}

	err = a.repo.WithinTx(ctx, func(tx RoomStore) error {
		if err := tx.CreateRoom(ctx, room); err != nil {
			return err
		}
		if seat != nil {
			if err := tx.AddPlayer(ctx, room.ID, *seat); err != nil {
				return err
			}
		}
		return tx.Emit(ctx, emitted...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	if seat != nil {
		room.Players = append(room.Players, *seat)
	}

	log.Info().
		Str("room_id", room.ID.String()).
		Str("name", room.Name).
		Str("created_by", room.CreatedBy.String()).
		Msg("room created")

	return &room, nil
}

// GetRoom retrieves a room by ID
func (a *App) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// ListActiveRooms retrieves all active rooms, newest first
func (a *App) ListActiveRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := a.repo.ListActiveRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rooms: %w", err)
	}
	return rooms, nil
}

// JoinRoom seats a player. Joining twice is a no-op; the seat check runs
// under the room's row lock so two late joiners cannot both take the last seat.
func (a *App) JoinRoom(ctx context.Context, roomID uuid.UUID, req JoinRoomRequest) (*JoinResult, error) {
	name := strings.TrimSpace(req.Name)
	if req.PlayerID == uuid.Nil || name == "" {
		return nil, ErrInvalidPlayer
	}

	var result JoinResult
	err := a.repo.WithinTx(ctx, func(tx RoomStore) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}

		ok, err := room.CanJoin(req.PlayerID, a.maxPlayers)
		if err != nil {
			return err
		}
		if !ok {
			result = JoinResult{Room: room}
			return nil
		}

		now := a.now()
		player := models.Player{ID: req.PlayerID, Name: name, JoinedAt: now}
		if err := tx.AddPlayer(ctx, roomID, player); err != nil {
			return err
		}
		room.Players = append(room.Players, player)

		event, err := outbox.NewEvent(roomID, events.PlayerJoined, events.PlayerJoinedPayload{
			RoomID:   roomID,
			PlayerID: player.ID,
			Name:     player.Name,
			Seats:    len(room.Players),
			JoinedAt: now,
		}, now)
		if err != nil {
			return err
		}
		if err := tx.Emit(ctx, event); err != nil {
			return err
		}

		result = JoinResult{Room: room, Joined: true}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	if result.Joined {
		log.Info().
			Str("room_id", roomID.String()).
			Str("player_id", req.PlayerID.String()).
			Int("players", len(result.Room.Players)).
			Msg("player joined room")
	}
	return &result, nil
}

// UpdateCount sets a player's counter, clamped at zero
func (a *App) UpdateCount(ctx context.Context, roomID, playerID uuid.UUID, newCount int) (int, error) {
	if !fitsCount(newCount) {
		return 0, ErrInvalidCount
	}
	count := models.ClampCount(newCount)
	return a.changeCount(ctx, roomID, playerID, func(tx RoomStore) (int, error) {
		return tx.SetPlayerCount(ctx, roomID, playerID, count)
	})
}

// IncrementCount adds delta to a player's counter atomically, never going below zero
func (a *App) IncrementCount(ctx context.Context, roomID, playerID uuid.UUID, delta int) (int, error) {
	if !fitsCount(delta) {
		return 0, ErrInvalidCount
	}
	return a.changeCount(ctx, roomID, playerID, func(tx RoomStore) (int, error) {
		return tx.AddToPlayerCount(ctx, roomID, playerID, delta)
	})
}

// fitsCount reports whether n fits the integer column counters are stored in.
func fitsCount(n int) bool {
	return n >= math.MinInt32 && n <= math.MaxInt32
}

func (a *App) changeCount(ctx context.Context, roomID, playerID uuid.UUID, write func(tx RoomStore) (int, error)) (int, error) {
	var count int
	err := a.repo.WithinTx(ctx, func(tx RoomStore) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if !room.IsActive {
			return ErrRoomInactive
		}
		if !room.HasPlayer(playerID) {
			return ErrPlayerNotInRoom
		}

		count, err = write(tx)
		if err != nil {
			return err
		}

		now := a.now()
		event, err := outbox.NewEvent(roomID, events.CountUpdated, events.CountUpdatedPayload{
			RoomID:     roomID,
			PlayerID:   playerID,
			SushiCount: count,
			UpdatedAt:  now,
		}, now)
		if err != nil {
			return err
		}
		return tx.Emit(ctx, event)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update count: %w", err)
	}

	log.Debug().
		Str("room_id", roomID.String()).
		Str("player_id", playerID.String()).
		Int("count", count).
		Msg("count updated")

	return count, nil
}

// LeaveRoom removes a player. When nobody is left the room is closed.
func (a *App) LeaveRoom(ctx context.Context, roomID, playerID uuid.UUID) (*LeaveResult, error) {
	var result LeaveResult
	err := a.repo.WithinTx(ctx, func(tx RoomStore) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}

		removed, err := tx.RemovePlayer(ctx, roomID, playerID)
		if err != nil {
			return err
		}

		remaining := len(room.Players)
		now := a.now()
		var pending []outbox.OutboxEvent

		if removed {
			remaining--
			event, err := outbox.NewEvent(roomID, events.PlayerLeft, events.PlayerLeftPayload{
				RoomID:    roomID,
				PlayerID:  playerID,
				Remaining: remaining,
				LeftAt:    now,
			}, now)
			if err != nil {
				return err
			}
			pending = append(pending, event)
		}

		if remaining == 0 && room.IsActive {
			closed, err := tx.CloseRoom(ctx, roomID, now)
			if err != nil {
				return err
			}
			if closed {
				event, err := closedEvent(roomID, events.ReasonEmpty, now)
				if err != nil {
					return err
				}
				pending = append(pending, event)
				result.Closed = true
			}
		}

		result.Remaining = remaining
		return tx.Emit(ctx, pending...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to leave room: %w", err)
	}

	log.Info().
		Str("room_id", roomID.String()).
		Str("player_id", playerID.String()).
		Int("remaining", result.Remaining).
		Bool("closed", result.Closed).
		Msg("player left room")

	return &result, nil
}

// CloseRoom marks a room inactive. Closing a closed room is a no-op. Only the
// creator may close a room that still has players.
func (a *App) CloseRoom(ctx context.Context, roomID, requestedBy uuid.UUID) error {
	var closed bool
	err := a.repo.WithinTx(ctx, func(tx RoomStore) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if !room.IsActive {
			return nil
		}
		if requestedBy != room.CreatedBy && len(room.Players) > 0 {
			return ErrNotRoomCreator
		}

		now := a.now()
		closed, err = tx.CloseRoom(ctx, roomID, now)
		if err != nil || !closed {
			return err
		}

		reason := events.ReasonClosedByCreator
		if len(room.Players) == 0 {
			reason = events.ReasonEmpty
		}
		event, err := closedEvent(roomID, reason, now)
		if err != nil {
			return err
		}
		return tx.Emit(ctx, event)
	})
	if err != nil {
		return fmt.Errorf("failed to close room: %w", err)
	}

	if closed {
		log.Info().
			Str("room_id", roomID.String()).
			Str("closed_by", requestedBy.String()).
			Msg("room closed")
	}
	return nil
}

// AddRating records one 1-5 rating per author
func (a *App) AddRating(ctx context.Context, roomID uuid.UUID, req AddRatingRequest) (*models.Rating, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, ErrInvalidScore
	}
	authorName := strings.TrimSpace(req.AuthorName)
	if req.AuthorID == uuid.Nil || authorName == "" {
		return nil, ErrInvalidPlayer
	}

	now := a.now()
	rating := models.Rating{
		ID:         uuid.New(),
		AuthorID:   req.AuthorID,
		AuthorName: authorName,
		Score:      req.Score,
		Comment:    cleanOptional(req.Comment),
		CreatedAt:  now,
	}

	err := a.repo.WithinTx(ctx, func(tx RoomStore) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.HasRated(req.AuthorID) {
			return ErrAlreadyRated
		}

		inserted, err := tx.AddRating(ctx, roomID, rating)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyRated
		}
		room.Ratings = append(room.Ratings, rating)

		event, err := outbox.NewEvent(roomID, events.RatingAdded, events.RatingAddedPayload{
			RoomID:  roomID,
			Rating:  rating,
			Average: room.AverageRating(),
		}, now)
		if err != nil {
			return err
		}
		return tx.Emit(ctx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add rating: %w", err)
	}

	log.Info().
		Str("room_id", roomID.String()).
		Str("author_id", req.AuthorID.String()).
		Int("score", req.Score).
		Msg("room rated")

	return &rating, nil
}

// UpdateRoomDetails changes the photo and location of a room; creator only
func (a *App) UpdateRoomDetails(ctx context.Context, roomID, requestedBy uuid.UUID, req UpdateRoomDetailsRequest) (*models.Room, error) {
	var updated *models.Room
	err := a.repo.WithinTx(ctx, func(tx RoomStore) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.CreatedBy != requestedBy {
			return ErrNotRoomCreator
		}

		if req.PhotoURL != nil {
			room.PhotoURL = cleanOptional(req.PhotoURL)
		}
		if req.Location != nil {
			room.Location = cleanOptional(req.Location)
		}
		if err := tx.UpdateDetails(ctx, roomID, room.PhotoURL, room.Location); err != nil {
			return err
		}

		now := a.now()
		event, err := outbox.NewEvent(roomID, events.RoomUpdated, events.RoomUpdatedPayload{
			RoomID:    roomID,
			PhotoURL:  room.PhotoURL,
			Location:  room.Location,
			UpdatedAt: now,
		}, now)
		if err != nil {
			return err
		}
		updated = room
		return tx.Emit(ctx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update room details: %w", err)
	}
	return updated, nil
}

// CloseAbandonedRooms closes active rooms that have had no players since
// before now-olderThan. It returns how many rooms were closed.
func (a *App) CloseAbandonedRooms(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := a.now().Add(-olderThan)
	ids, err := a.repo.ListAbandonedRooms(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	closedCount := 0
	for _, id := range ids {
		var closed bool
		err := a.repo.WithinTx(ctx, func(tx RoomStore) error {
			room, err := tx.LockRoom(ctx, id)
			if err != nil {
				return err
			}
			// someone may have joined since the scan
			if !room.IsActive || len(room.Players) > 0 || !room.CreatedAt.Before(cutoff) {
				return nil
			}

			now := a.now()
			closed, err = tx.CloseRoom(ctx, id, now)
			if err != nil || !closed {
				return err
			}
			event, err := closedEvent(id, events.ReasonAbandoned, now)
			if err != nil {
				return err
			}
			return tx.Emit(ctx, event)
		})
		if err != nil {
			log.Error().Err(err).Str("room_id", id.String()).Msg("failed to close abandoned room")
			continue
		}
		if closed {
			closedCount++
		}
	}

	if closedCount > 0 {
		log.Info().Int("closed", closedCount).Msg("closed abandoned rooms")
	}
	return closedCount, nil
}

func (a *App) now() time.Time {
	return a.clock.Now().UTC()
}

func closedEvent(roomID uuid.UUID, reason string, at time.Time) (outbox.OutboxEvent, error) {
	return outbox.NewEvent(roomID, events.RoomClosed, events.RoomClosedPayload{
		RoomID:   roomID,
		Reason:   reason,
		ClosedAt: at,
	}, at)
}

// cleanOptional trims an optional text field; blank becomes nil
func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
