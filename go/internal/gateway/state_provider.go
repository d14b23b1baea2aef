package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/rankings"
	"github.com/mcdev12/sushirush/go/internal/rooms"
)

// StateProvider builds the snapshot frames pushed on subscribe and after
// every room event.
type StateProvider interface {
	DirectorySnapshot(ctx context.Context) (*Message, error)
	RoomSnapshot(ctx context.Context, roomID uuid.UUID) (*Message, error)
	StatsSnapshot(ctx context.Context) (*Message, error)
}

// RoomReader is the read side of the rooms app
type RoomReader interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	ListActiveRooms(ctx context.Context) ([]models.Room, error)
}

// LeaderboardReader is the read side of the rankings app
type LeaderboardReader interface {
	TopByTotalSushi(ctx context.Context, n int) ([]models.UserStats, error)
}

// RoomStateProvider reads snapshots straight from the rooms and rankings apps
type RoomStateProvider struct {
	rooms    RoomReader
	rankings LeaderboardReader
	clock    clockwork.Clock
	topN     int
}

// NewRoomStateProvider creates a provider; topN bounds the stats leaderboard.
func NewRoomStateProvider(roomReader RoomReader, leaderboard LeaderboardReader, clock clockwork.Clock, topN int) *RoomStateProvider {
	if topN <= 0 {
		topN = rankings.DefaultTopLimit
	}
	return &RoomStateProvider{
		rooms:    roomReader,
		rankings: leaderboard,
		clock:    clock,
		topN:     topN,
	}
}

// DirectorySnapshot returns every active room, newest first.
func (p *RoomStateProvider) DirectorySnapshot(ctx context.Context) (*Message, error) {
	list, err := p.rooms.ListActiveRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rooms: %w", err)
	}
	return NewMessage(MessageDirectorySnapshot, DirectoryTopic,
		rooms.ListActiveRoomsResponse{Rooms: rooms.RoomsToMsg(list)}, p.clock.Now())
}

// RoomSnapshot returns the room's current state. Inactive rooms are sent as
// room.closed so subscribers know no further updates will follow.
func (p *RoomStateProvider) RoomSnapshot(ctx context.Context, roomID uuid.UUID) (*Message, error) {
	room, err := p.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	msgType := MessageRoomSnapshot
	if !room.IsActive {
		msgType = MessageRoomClosed
	}
	return NewMessage(msgType, RoomTopic(roomID), rooms.RoomResponse{Room: rooms.RoomToMsg(room)}, p.clock.Now())
}

// StatsSnapshot returns the leaderboard by total sushi.
func (p *RoomStateProvider) StatsSnapshot(ctx context.Context) (*Message, error) {
	top, err := p.rankings.TopByTotalSushi(ctx, p.topN)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	users := make([]rankings.UserStatsMsg, len(top))
	for i := range top {
		users[i] = rankings.StatsToMsg(&top[i])
	}
	return NewMessage(MessageStatsSnapshot, StatsTopic, rankings.TopByTotalSushiResponse{Users: users}, p.clock.Now())
}
