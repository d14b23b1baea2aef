package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*OutboxEvent
	order  []uuid.UUID
}

func newFakeRepo(events ...OutboxEvent) *fakeRepo {
	r := &fakeRepo{events: map[uuid.UUID]*OutboxEvent{}}
	for _, e := range events {
		r.add(e)
	}
	return r
}

func (r *fakeRepo) add(e OutboxEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = &e
	r.order = append(r.order, e.ID)
}

func (r *fakeRepo) sent(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	return ok && e.SentAt != nil
}

func (r *fakeRepo) FetchUnsentOutbox(_ context.Context, limit int32) ([]OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []OutboxEvent
	for _, id := range r.order {
		if e := r.events[id]; e.SentAt == nil && int32(len(out)) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkOutboxSent(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.events[id].SentAt = &now
	return nil
}

func (r *fakeRepo) FetchOutboxByID(_ context.Context, id uuid.UUID) (*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.SentAt != nil {
		return nil, ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeRepo) CountUnsent(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.events {
		if e.SentAt == nil {
			n++
		}
	}
	return n, nil
}

func mustEvent(t *testing.T, eventType string) OutboxEvent {
	t.Helper()
	e, err := NewEvent(uuid.New(), eventType, map[string]int{"n": 1}, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	return e
}

func TestNewEventMarshalsPayload(t *testing.T) {
	e := mustEvent(t, "RoomCreated")
	if string(e.Payload) != `{"n":1}` {
		t.Fatalf("expected payload {\"n\":1}, got %s", e.Payload)
	}
	if e.ID == uuid.Nil {
		t.Fatal("expected event id to be set")
	}
	env := NewEnvelope(e)
	if env.RoomID != e.RoomID.String() || env.EventType != "RoomCreated" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestNewEventRejectsUnmarshalablePayload(t *testing.T) {
	if _, err := NewEvent(uuid.New(), "RoomCreated", make(chan int), time.Now()); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestProcessUnsentEventsMarksOnlySuccesses(t *testing.T) {
	ok := mustEvent(t, "PlayerJoined")
	bad := mustEvent(t, "PlayerLeft")
	repo := newFakeRepo(ok, bad)
	app := NewApp(repo)

	processed, err := app.ProcessUnsentEvents(context.Background(), 10, func(_ context.Context, e OutboxEvent) error {
		if e.ID == bad.ID {
			return errors.New("bus down")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed != 1 {
		t.Fatalf("expected 1 processed, got %d", processed)
	}
	backlog, _ := app.Backlog(context.Background())
	if backlog != 1 {
		t.Fatalf("expected 1 event left, got %d", backlog)
	}
	if repo.sent(bad.ID) {
		t.Fatal("failed event must stay unsent")
	}
}

func TestFetchUnsentEventsRequiresPositiveLimit(t *testing.T) {
	app := NewApp(newFakeRepo())
	if _, err := app.FetchUnsentEvents(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}
