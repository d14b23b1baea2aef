package rooms

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/sushirush/go/internal/events"
	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/outbox"
)

// fakeRepo keeps rooms in memory. WithinTx works on a copy and only commits
// it when fn succeeds, so failed transactions leave no trace.
type fakeRepo struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*models.Room
	events   []outbox.OutboxEvent
	failEmit error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rooms: make(map[uuid.UUID]*models.Room)}
}

func (f *fakeRepo) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (f *fakeRepo) ListActiveRooms(ctx context.Context) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Room
	for _, room := range f.rooms {
		if room.IsActive {
			out = append(out, *cloneRoom(room))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) ListAbandonedRooms(ctx context.Context, createdBefore time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for id, room := range f.rooms {
		if room.IsActive && len(room.Players) == 0 && room.CreatedAt.Before(createdBefore) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeRepo) WithinTx(ctx context.Context, fn func(tx RoomStore) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	store := &fakeStore{rooms: make(map[uuid.UUID]*models.Room, len(f.rooms)), failEmit: f.failEmit}
	for id, room := range f.rooms {
		store.rooms[id] = cloneRoom(room)
	}
	if err := fn(store); err != nil {
		return err
	}
	f.rooms = store.rooms
	f.events = append(f.events, store.events...)
	return nil
}

func (f *fakeRepo) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.EventType
	}
	return out
}

type fakeStore struct {
	rooms    map[uuid.UUID]*models.Room
	events   []outbox.OutboxEvent
	failEmit error
}

func (s *fakeStore) CreateRoom(ctx context.Context, room models.Room) error {
	s.rooms[room.ID] = cloneRoom(&room)
	return nil
}

func (s *fakeStore) LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *fakeStore) AddPlayer(ctx context.Context, roomID uuid.UUID, player models.Player) error {
	room := s.rooms[roomID]
	room.Players = append(room.Players, player)
	return nil
}

func (s *fakeStore) RemovePlayer(ctx context.Context, roomID, playerID uuid.UUID) (bool, error) {
	room := s.rooms[roomID]
	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) SetPlayerCount(ctx context.Context, roomID, playerID uuid.UUID, count int) (int, error) {
	p := s.rooms[roomID].FindPlayer(playerID)
	if p == nil {
		return 0, ErrPlayerNotInRoom
	}
	p.SushiCount = models.ClampCount(count)
	return p.SushiCount, nil
}

func (s *fakeStore) AddToPlayerCount(ctx context.Context, roomID, playerID uuid.UUID, delta int) (int, error) {
	p := s.rooms[roomID].FindPlayer(playerID)
	if p == nil {
		return 0, ErrPlayerNotInRoom
	}
	p.SushiCount = models.ClampCount(p.SushiCount + delta)
	return p.SushiCount, nil
}

func (s *fakeStore) CloseRoom(ctx context.Context, roomID uuid.UUID, at time.Time) (bool, error) {
	room := s.rooms[roomID]
	if !room.IsActive {
		return false, nil
	}
	room.IsActive = false
	room.ClosedAt = &at
	return true, nil
}

func (s *fakeStore) UpdateDetails(ctx context.Context, roomID uuid.UUID, photoURL, location *string) error {
	room := s.rooms[roomID]
	room.PhotoURL = photoURL
	room.Location = location
	return nil
}

func (s *fakeStore) AddRating(ctx context.Context, roomID uuid.UUID, rating models.Rating) (bool, error) {
	room := s.rooms[roomID]
	if room.HasRated(rating.AuthorID) {
		return false, nil
	}
	room.Ratings = append(room.Ratings, rating)
	return true, nil
}

func (s *fakeStore) Emit(ctx context.Context, evs ...outbox.OutboxEvent) error {
	if s.failEmit != nil {
		return s.failEmit
	}
	s.events = append(s.events, evs...)
	return nil
}

func cloneRoom(room *models.Room) *models.Room {
	out := *room
	out.Players = append([]models.Player{}, room.Players...)
	out.Ratings = append([]models.Rating{}, room.Ratings...)
	return &out
}

func newTestApp(t *testing.T) (*App, *fakeRepo, *clockwork.FakeClock) {
	t.Helper()
	repo := newFakeRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC))
	return NewApp(repo, clock, Config{}), repo, clock
}

func mustCreateRoom(t *testing.T, app *App, creator uuid.UUID) *models.Room {
	t.Helper()
	room, err := app.CreateRoom(context.Background(), CreateRoomRequest{Name: "Friday Omakase", CreatedBy: creator})
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}
	return room
}

func mustJoin(t *testing.T, app *App, roomID, playerID uuid.UUID, name string) *JoinResult {
	t.Helper()
	result, err := app.JoinRoom(context.Background(), roomID, JoinRoomRequest{PlayerID: playerID, Name: name})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	return result
}

func TestCreateRoom(t *testing.T) {
	app, repo, clock := newTestApp(t)
	creator := uuid.New()
	photo := "  "

	room, err := app.CreateRoom(context.Background(), CreateRoomRequest{Name: "  Sushi Bar  ", CreatedBy: creator, PhotoURL: &photo})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := models.Room{
		ID:        room.ID,
		Name:      "Sushi Bar",
		CreatedBy: creator,
		CreatedAt: clock.Now(),
		IsActive:  true,
		Players:   []models.Player{},
		Ratings:   []models.Rating{},
	}
	if diff := cmp.Diff(want, *room); diff != "" {
		t.Errorf("unexpected room (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{events.RoomCreated}, repo.eventTypes()); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestCreateRoom_SeatsCreatorAtomically(t *testing.T) {
	app, repo, _ := newTestApp(t)
	creator := uuid.New()

	room, err := app.CreateRoom(context.Background(), CreateRoomRequest{Name: "Lunch", CreatedBy: creator, CreatorName: " Hana "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(room.Players) != 1 || room.Players[0].ID != creator || room.Players[0].Name != "Hana" {
		t.Fatalf("expected creator seated, got %+v", room.Players)
	}
	stored, _ := app.GetRoom(context.Background(), room.ID)
	if !stored.HasPlayer(creator) {
		t.Error("expected stored room to contain the creator")
	}
	if diff := cmp.Diff([]string{events.RoomCreated, events.PlayerJoined}, repo.eventTypes()); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}

	failing, failRepo, _ := newTestApp(t)
	failRepo.failEmit = errors.New("outbox down")
	if _, err := failing.CreateRoom(context.Background(), CreateRoomRequest{Name: "Dinner", CreatedBy: creator, CreatorName: "Hana"}); err == nil {
		t.Fatal("expected create to fail")
	}
	if len(failRepo.rooms) != 0 {
		t.Errorf("expected no half-created room, got %d", len(failRepo.rooms))
	}
}

func TestCreateRoom_BlankName(t *testing.T) {
	app, repo, _ := newTestApp(t)

	_, err := app.CreateRoom(context.Background(), CreateRoomRequest{Name: "   ", CreatedBy: uuid.New()})
	if !errors.Is(err, ErrInvalidRoomName) {
		t.Fatalf("expected ErrInvalidRoomName, got %v", err)
	}
	if len(repo.rooms) != 0 {
		t.Errorf("expected no room to be stored, got %d", len(repo.rooms))
	}
}

func TestJoinRoom_CreatorStartsAtZero(t *testing.T) {
	app, _, _ := newTestApp(t)
	creator := uuid.New()
	room := mustCreateRoom(t, app, creator)

	result := mustJoin(t, app, room.ID, creator, "Kenji")

	if !result.Joined {
		t.Fatal("expected creator to be seated")
	}
	if len(result.Room.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(result.Room.Players))
	}
	p := result.Room.Players[0]
	if p.ID != creator || p.Name != "Kenji" || p.SushiCount != 0 {
		t.Errorf("unexpected player: %+v", p)
	}
}

func TestJoinRoom_Capacity(t *testing.T) {
	app, _, _ := newTestApp(t)
	room := mustCreateRoom(t, app, uuid.New())

	for i := 0; i < models.MaxPlayersPerRoom; i++ {
		mustJoin(t, app, room.ID, uuid.New(), "player")
	}

	_, err := app.JoinRoom(context.Background(), room.ID, JoinRoomRequest{PlayerID: uuid.New(), Name: "late"})
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull for the 7th player, got %v", err)
	}

	got, err := app.GetRoom(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("get room failed: %v", err)
	}
	if len(got.Players) != models.MaxPlayersPerRoom {
		t.Errorf("expected %d players, got %d", models.MaxPlayersPerRoom, len(got.Players))
	}
}

func TestJoinRoom_ConfiguredCapacity(t *testing.T) {
	repo := newFakeRepo()
	app := NewApp(repo, clockwork.NewFakeClock(), Config{MaxPlayers: 2})
	room := mustCreateRoom(t, app, uuid.New())

	mustJoin(t, app, room.ID, uuid.New(), "a")
	mustJoin(t, app, room.ID, uuid.New(), "b")
	if _, err := app.JoinRoom(context.Background(), room.ID, JoinRoomRequest{PlayerID: uuid.New(), Name: "c"}); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestJoinRoom_DuplicateIsNoOp(t *testing.T) {
	app, repo, _ := newTestApp(t)
	room := mustCreateRoom(t, app, uuid.New())
	player := uuid.New()

	mustJoin(t, app, room.ID, player, "Yuki")
	if _, err := app.UpdateCount(context.Background(), room.ID, player, 4); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	before := len(repo.eventTypes())

	result := mustJoin(t, app, room.ID, player, "Yuki again")

	if result.Joined {
		t.Error("expected second join to report Joined=false")
	}
	if len(result.Room.Players) != 1 || result.Room.Players[0].SushiCount != 4 {
		t.Errorf("expected the original seat untouched, got %+v", result.Room.Players)
	}
	if after := len(repo.eventTypes()); after != before {
		t.Errorf("expected no new events, got %d more", after-before)
	}
}

func TestJoinRoom_Rejections(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	creator := uuid.New()
	room := mustCreateRoom(t, app, creator)

	if _, err := app.JoinRoom(ctx, uuid.New(), JoinRoomRequest{PlayerID: uuid.New(), Name: "x"}); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := app.JoinRoom(ctx, room.ID, JoinRoomRequest{PlayerID: uuid.New(), Name: " "}); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("expected ErrInvalidPlayer, got %v", err)
	}

	if err := app.CloseRoom(ctx, room.ID, creator); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := app.JoinRoom(ctx, room.ID, JoinRoomRequest{PlayerID: uuid.New(), Name: "x"}); !errors.Is(err, ErrRoomInactive) {
		t.Errorf("expected ErrRoomInactive, got %v", err)
	}
}

func TestUpdateCount(t *testing.T) {
	app, repo, _ := newTestApp(t)
	ctx := context.Background()
	room := mustCreateRoom(t, app, uuid.New())
	alice, bob := uuid.New(), uuid.New()
	mustJoin(t, app, room.ID, alice, "Alice")
	mustJoin(t, app, room.ID, bob, "Bob")

	count, err := app.UpdateCount(ctx, room.ID, alice, 7)
	if err != nil || count != 7 {
		t.Fatalf("expected 7, got %d (%v)", count, err)
	}
	count, err = app.UpdateCount(ctx, room.ID, alice, -3)
	if err != nil || count != 0 {
		t.Fatalf("expected clamp to 0, got %d (%v)", count, err)
	}

	got, _ := app.GetRoom(ctx, room.ID)
	if got.FindPlayer(bob).SushiCount != 0 {
		t.Errorf("expected other player untouched, got %d", got.FindPlayer(bob).SushiCount)
	}
	if _, err := app.UpdateCount(ctx, room.ID, uuid.New(), 1); !errors.Is(err, ErrPlayerNotInRoom) {
		t.Errorf("expected ErrPlayerNotInRoom, got %v", err)
	}

	types := repo.eventTypes()
	if types[len(types)-1] != events.CountUpdated {
		t.Errorf("expected last event CountUpdated, got %s", types[len(types)-1])
	}
}

func TestIncrementCount(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	room := mustCreateRoom(t, app, uuid.New())
	player := uuid.New()
	mustJoin(t, app, room.ID, player, "P")

	for i := 0; i < 3; i++ {
		if _, err := app.IncrementCount(ctx, room.ID, player, 1); err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}
	count, err := app.IncrementCount(ctx, room.ID, player, -10)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected floor at 0, got %d", count)
	}
}

func TestCounts_RejectOutOfRange(t *testing.T) {
	app, repo, _ := newTestApp(t)
	ctx := context.Background()
	room := mustCreateRoom(t, app, uuid.New())
	player := uuid.New()
	mustJoin(t, app, room.ID, player, "P")
	if _, err := app.UpdateCount(ctx, room.ID, player, 12); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	before := len(repo.eventTypes())

	for _, n := range []int{1<<32 + 5, 1 << 31, -(1<<31 + 1)} {
		if _, err := app.UpdateCount(ctx, room.ID, player, n); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("UpdateCount(%d): expected ErrInvalidCount, got %v", n, err)
		}
		if _, err := app.IncrementCount(ctx, room.ID, player, n); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("IncrementCount(%d): expected ErrInvalidCount, got %v", n, err)
		}
	}

	got, _ := app.GetRoom(ctx, room.ID)
	if c := got.FindPlayer(player).SushiCount; c != 12 {
		t.Errorf("expected count to stay 12, got %d", c)
	}
	if after := len(repo.eventTypes()); after != before {
		t.Errorf("expected no events for rejected counts, got %d new", after-before)
	}

	count, err := app.IncrementCount(ctx, room.ID, player, math.MaxInt32-12)
	if err != nil || count != math.MaxInt32 {
		t.Errorf("expected %d, got %d (%v)", math.MaxInt32, count, err)
	}
}

func TestUpdateCount_InactiveRoom(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	creator := uuid.New()
	room := mustCreateRoom(t, app, creator)
	mustJoin(t, app, room.ID, creator, "C")
	if err := app.CloseRoom(ctx, room.ID, creator); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, err := app.UpdateCount(ctx, room.ID, creator, 3); !errors.Is(err, ErrRoomInactive) {
		t.Errorf("expected ErrRoomInactive, got %v", err)
	}
}

func TestLeaveRoom_LastPlayerClosesRoom(t *testing.T) {
	app, repo, _ := newTestApp(t)
	ctx := context.Background()
	room := mustCreateRoom(t, app, uuid.New())
	a, b := uuid.New(), uuid.New()
	mustJoin(t, app, room.ID, a, "A")
	mustJoin(t, app, room.ID, b, "B")

	result, err := app.LeaveRoom(ctx, room.ID, a)
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if result.Remaining != 1 || result.Closed {
		t.Errorf("expected 1 remaining and open, got %+v", result)
	}

	result, err = app.LeaveRoom(ctx, room.ID, b)
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if result.Remaining != 0 || !result.Closed {
		t.Errorf("expected room closed with nobody left, got %+v", result)
	}

	got, _ := app.GetRoom(ctx, room.ID)
	if got.IsActive {
		t.Error("expected room to be inactive")
	}
	types := repo.eventTypes()
	want := []string{events.PlayerLeft, events.RoomClosed}
	if diff := cmp.Diff(want, types[len(types)-2:]); diff != "" {
		t.Errorf("unexpected trailing events (-want +got):\n%s", diff)
	}
}

func TestCloseRoom_Idempotent(t *testing.T) {
	app, repo, _ := newTestApp(t)
	ctx := context.Background()
	creator := uuid.New()
	room := mustCreateRoom(t, app, creator)
	mustJoin(t, app, room.ID, creator, "C")

	if err := app.CloseRoom(ctx, room.ID, creator); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := app.CloseRoom(ctx, room.ID, creator); err != nil {
		t.Fatalf("expected second close to be a no-op, got %v", err)
	}

	closes := 0
	for _, typ := range repo.eventTypes() {
		if typ == events.RoomClosed {
			closes++
		}
	}
	if closes != 1 {
		t.Errorf("expected exactly one RoomClosed event, got %d", closes)
	}
}

func TestCloseRoom_OnlyCreatorWhilePlayersRemain(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	creator, guest := uuid.New(), uuid.New()
	room := mustCreateRoom(t, app, creator)
	mustJoin(t, app, room.ID, guest, "G")

	if err := app.CloseRoom(ctx, room.ID, guest); !errors.Is(err, ErrNotRoomCreator) {
		t.Fatalf("expected ErrNotRoomCreator, got %v", err)
	}

	empty := mustCreateRoom(t, app, creator)
	if err := app.CloseRoom(ctx, empty.ID, guest); err != nil {
		t.Fatalf("expected anyone to close an empty room, got %v", err)
	}
}

func TestAddRating(t *testing.T) {
	app, repo, _ := newTestApp(t)
	ctx := context.Background()
	room := mustCreateRoom(t, app, uuid.New())
	author := uuid.New()

	for _, score := range []int{0, 6} {
		if _, err := app.AddRating(ctx, room.ID, AddRatingRequest{AuthorID: author, AuthorName: "A", Score: score}); !errors.Is(err, ErrInvalidScore) {
			t.Errorf("expected ErrInvalidScore for %d, got %v", score, err)
		}
	}

	if _, err := app.AddRating(ctx, room.ID, AddRatingRequest{AuthorID: author, AuthorName: "A", Score: 5}); err != nil {
		t.Fatalf("rating failed: %v", err)
	}
	if _, err := app.AddRating(ctx, room.ID, AddRatingRequest{AuthorID: author, AuthorName: "A", Score: 1}); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}
	if _, err := app.AddRating(ctx, room.ID, AddRatingRequest{AuthorID: uuid.New(), AuthorName: "B", Score: 4}); err != nil {
		t.Fatalf("rating failed: %v", err)
	}

	got, _ := app.GetRoom(ctx, room.ID)
	if avg := got.AverageRating(); avg != 4.5 {
		t.Errorf("expected average 4.5, got %v", avg)
	}

	var payload events.RatingAddedPayload
	last := repo.events[len(repo.events)-1]
	if err := last.Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.Average != 4.5 {
		t.Errorf("expected event average 4.5, got %v", payload.Average)
	}
}

func TestUpdateRoomDetails(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	creator := uuid.New()
	room := mustCreateRoom(t, app, creator)
	photo, location := "https://img.example/roll.jpg", "Shibuya"

	if _, err := app.UpdateRoomDetails(ctx, room.ID, uuid.New(), UpdateRoomDetailsRequest{Location: &location}); !errors.Is(err, ErrNotRoomCreator) {
		t.Fatalf("expected ErrNotRoomCreator, got %v", err)
	}

	got, err := app.UpdateRoomDetails(ctx, room.ID, creator, UpdateRoomDetailsRequest{PhotoURL: &photo, Location: &location})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.PhotoURL == nil || *got.PhotoURL != photo || got.Location == nil || *got.Location != location {
		t.Fatalf("unexpected details: photo=%v location=%v", got.PhotoURL, got.Location)
	}

	blank := ""
	got, err = app.UpdateRoomDetails(ctx, room.ID, creator, UpdateRoomDetailsRequest{Location: &blank})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Location != nil {
		t.Errorf("expected location cleared, got %q", *got.Location)
	}
	if got.PhotoURL == nil {
		t.Error("expected photo untouched")
	}
}

func TestCloseAbandonedRooms(t *testing.T) {
	app, _, clock := newTestApp(t)
	ctx := context.Background()

	stale := mustCreateRoom(t, app, uuid.New())
	busy := mustCreateRoom(t, app, uuid.New())
	mustJoin(t, app, busy.ID, uuid.New(), "still here")

	clock.Advance(3 * time.Hour)
	fresh := mustCreateRoom(t, app, uuid.New())

	closed, err := app.CloseAbandonedRooms(ctx, 2*time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 room closed, got %d", closed)
	}

	for id, wantActive := range map[uuid.UUID]bool{stale.ID: false, busy.ID: true, fresh.ID: true} {
		got, _ := app.GetRoom(ctx, id)
		if got.IsActive != wantActive {
			t.Errorf("room %s: expected active=%v, got %v", id, wantActive, got.IsActive)
		}
	}
}

func TestWithinTx_FailedEmitRollsBack(t *testing.T) {
	app, repo, _ := newTestApp(t)
	room := mustCreateRoom(t, app, uuid.New())

	repo.failEmit = errors.New("outbox unavailable")
	_, err := app.JoinRoom(context.Background(), room.ID, JoinRoomRequest{PlayerID: uuid.New(), Name: "X"})
	if err == nil {
		t.Fatal("expected join to fail")
	}

	repo.failEmit = nil
	got, _ := app.GetRoom(context.Background(), room.ID)
	if len(got.Players) != 0 {
		t.Errorf("expected no players after rollback, got %d", len(got.Players))
	}
}

func TestListActiveRooms_NewestFirst(t *testing.T) {
	app, _, clock := newTestApp(t)
	ctx := context.Background()
	creator := uuid.New()

	first := mustCreateRoom(t, app, creator)
	clock.Advance(time.Minute)
	second := mustCreateRoom(t, app, creator)
	clock.Advance(time.Minute)
	closed := mustCreateRoom(t, app, creator)
	if err := app.CloseRoom(ctx, closed.ID, creator); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	rooms, err := app.ListActiveRooms(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var ids []uuid.UUID
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]uuid.UUID{second.ID, first.ID}, ids); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}
