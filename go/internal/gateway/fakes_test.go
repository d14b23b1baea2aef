package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mcdev12/sushirush/go/internal/auth"
	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/rooms"
)

type fakeRooms struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]models.Room
	reads int
}

func (f *fakeRooms) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	room, ok := f.rooms[id]
	if !ok {
		return nil, rooms.ErrRoomNotFound
	}
	return &room, nil
}

func (f *fakeRooms) ListActiveRooms(ctx context.Context) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	var out []models.Room
	for _, room := range f.rooms {
		if room.IsActive {
			out = append(out, room)
		}
	}
	return out, nil
}

type fakeLeaderboard struct {
	mu  sync.Mutex
	top []models.UserStats
	n   int
}

func (f *fakeLeaderboard) TopByTotalSushi(ctx context.Context, n int) ([]models.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n = n
	return f.top, nil
}

type fakeAuthenticator struct {
	tokens map[string]auth.Identity
}

func (f fakeAuthenticator) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	id, ok := f.tokens[token]
	if !ok {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return id, nil
}

type broadcast struct {
	topic string
	msg   *Message
}

type recordingBroadcaster struct {
	mu          sync.Mutex
	subscribers map[string]bool
	sent        []broadcast
}

func (b *recordingBroadcaster) Broadcast(topic string, msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcast{topic: topic, msg: msg})
}

func (b *recordingBroadcaster) HasSubscribers(topic string) bool {
	return b.subscribers[topic]
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.sent))
	for i, s := range b.sent {
		out[i] = s.topic + " " + string(s.msg.Type)
	}
	return out
}

func activeRoom(name string) models.Room {
	return models.Room{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: uuid.New(),
		IsActive:  true,
		Players: []models.Player{
			{ID: uuid.New(), Name: "Kenji", SushiCount: 4},
		},
	}
}
