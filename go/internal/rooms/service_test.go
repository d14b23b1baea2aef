package rooms

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/sushirush/go/internal/auth"
)

func newTestService(t *testing.T) (*Service, *App) {
	t.Helper()
	app := NewApp(newFakeRepo(), clockwork.NewFakeClock(), Config{})
	return NewService(app), app
}

func asUser(id uuid.UUID, name string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: id, DisplayName: name})
}

func TestService_CreateRoomSeatsCreator(t *testing.T) {
	svc, _ := newTestService(t)
	creator := uuid.New()

	res, err := svc.CreateRoom(asUser(creator, "Hana"), connect.NewRequest(&CreateRoomRequestMsg{Name: "Lunch"}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	room := res.Msg.Room
	if room.CreatedBy != creator.String() || !room.IsActive {
		t.Errorf("unexpected room: %+v", room)
	}
	if len(room.Players) != 1 || room.Players[0].ID != creator.String() || room.Players[0].SushiCount != 0 {
		t.Errorf("expected creator seated at 0, got %+v", room.Players)
	}
}

func TestService_RequiresIdentity(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateRoom(context.Background(), connect.NewRequest(&CreateRoomRequestMsg{Name: "Lunch"}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("expected unauthenticated, got %v", err)
	}
}

func TestService_ErrorCodes(t *testing.T) {
	svc, _ := newTestService(t)
	creator, guest := uuid.New(), uuid.New()
	ctx := asUser(creator, "Host")

	created, err := svc.CreateRoom(ctx, connect.NewRequest(&CreateRoomRequestMsg{Name: "Dinner"}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	roomID := created.Msg.Room.ID

	_, err = svc.GetRoom(ctx, connect.NewRequest(&GetRoomRequest{RoomID: "nope"}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected invalid_argument for bad id, got %v", err)
	}

	_, err = svc.GetRoom(ctx, connect.NewRequest(&GetRoomRequest{RoomID: uuid.NewString()}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected not_found, got %v", err)
	}

	_, err = svc.CreateRoom(ctx, connect.NewRequest(&CreateRoomRequestMsg{Name: " "}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected invalid_argument for blank name, got %v", err)
	}

	if _, err := svc.JoinRoom(asUser(guest, "Guest"), connect.NewRequest(&JoinRoomRequestMsg{RoomID: roomID})); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	_, err = svc.CloseRoom(asUser(guest, "Guest"), connect.NewRequest(&CloseRoomRequest{RoomID: roomID}))
	if connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("expected permission_denied, got %v", err)
	}

	_, err = svc.AddRating(ctx, connect.NewRequest(&AddRatingRequestMsg{RoomID: roomID, Score: 9}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected invalid_argument for score, got %v", err)
	}

	if _, err := svc.CloseRoom(ctx, connect.NewRequest(&CloseRoomRequest{RoomID: roomID})); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	_, err = svc.JoinRoom(asUser(uuid.New(), "Late"), connect.NewRequest(&JoinRoomRequestMsg{RoomID: roomID}))
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("expected failed_precondition for closed room, got %v", err)
	}

	if err := toConnectError(ErrInvalidCount); err.Code() != connect.CodeInvalidArgument {
		t.Errorf("expected invalid_argument for out of range count, got %v", err.Code())
	}

	if err := toConnectError(errors.New("boom")); err.Code() != connect.CodeInternal {
		t.Errorf("expected internal for unknown errors, got %v", err.Code())
	}
}

func TestService_CountsActOnCaller(t *testing.T) {
	svc, app := newTestService(t)
	host, guest := uuid.New(), uuid.New()

	created, err := svc.CreateRoom(asUser(host, "Host"), connect.NewRequest(&CreateRoomRequestMsg{Name: "Bar"}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	roomID := created.Msg.Room.ID
	if _, err := svc.JoinRoom(asUser(guest, "Guest"), connect.NewRequest(&JoinRoomRequestMsg{RoomID: roomID, Name: "G"})); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	res, err := svc.IncrementCount(asUser(guest, "Guest"), connect.NewRequest(&IncrementCountRequest{RoomID: roomID, Delta: 2}))
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if res.Msg.SushiCount != 2 {
		t.Errorf("expected 2, got %d", res.Msg.SushiCount)
	}

	room, err := app.GetRoom(context.Background(), uuid.MustParse(roomID))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if room.FindPlayer(host).SushiCount != 0 || room.FindPlayer(guest).SushiCount != 2 {
		t.Errorf("expected only the caller's count to change, got %+v", room.Players)
	}
	if room.FindPlayer(guest).Name != "G" {
		t.Errorf("expected name override G, got %s", room.FindPlayer(guest).Name)
	}
}
