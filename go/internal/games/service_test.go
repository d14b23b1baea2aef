package games

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/sushirush/go/internal/auth"
	"github.com/mcdev12/sushirush/go/internal/models"
)

func TestService_FinishGame(t *testing.T) {
	app, repo, _ := newTestApp(t)
	svc := NewService(app)
	creator := uuid.New()
	room := seedRoom(repo, creator, models.Player{ID: creator, Name: "Host", SushiCount: 9})
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: creator})

	res, err := svc.FinishGame(ctx, connect.NewRequest(&FinishGameRequestMsg{RoomID: room.ID.String()}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Msg.Game.WinnerID != creator.String() || res.Msg.Game.WinnerCount != 9 {
		t.Errorf("unexpected game: %+v", res.Msg.Game)
	}

	other := auth.WithIdentity(context.Background(), auth.Identity{UserID: uuid.New()})
	_, err = svc.FinishGame(other, connect.NewRequest(&FinishGameRequestMsg{RoomID: room.ID.String()}))
	if connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("expected permission_denied for non-creator, got %v", err)
	}

	_, err = svc.FinishGame(ctx, connect.NewRequest(&FinishGameRequestMsg{RoomID: "x"}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected invalid_argument, got %v", err)
	}
}

func TestService_DeleteGameRequiresAdmin(t *testing.T) {
	app, repo, _ := newTestApp(t)
	svc := NewService(app)
	creator := uuid.New()
	room := seedRoom(repo, creator, models.Player{ID: creator, Name: "Host", SushiCount: 1})
	out, err := app.FinishGame(context.Background(), FinishGameRequest{RoomID: room.ID, RequestedBy: creator})
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	req := &DeleteGameRequest{GameID: out.Result.ID.String()}

	player := auth.WithIdentity(context.Background(), auth.Identity{UserID: creator})
	if _, err := svc.DeleteGame(player, connect.NewRequest(req)); connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("expected permission_denied, got %v", err)
	}

	admin := auth.WithIdentity(context.Background(), auth.Identity{UserID: uuid.New(), IsAdmin: true})
	if _, err := svc.DeleteGame(admin, connect.NewRequest(req)); err != nil {
		t.Fatalf("expected admin delete to succeed, got %v", err)
	}
	if _, err := svc.DeleteGame(admin, connect.NewRequest(req)); connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected not_found on second delete, got %v", err)
	}
}

func TestService_FinishSoloGame(t *testing.T) {
	app, _, _ := newTestApp(t)
	svc := NewService(app)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: uuid.New()})

	if _, err := svc.FinishSoloGame(ctx, connect.NewRequest(&FinishSoloGameRequest{Count: -1})); connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected invalid_argument, got %v", err)
	}
	res, err := svc.FinishSoloGame(ctx, connect.NewRequest(&FinishSoloGameRequest{Count: 3}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Msg.Sushi != 3 || res.Msg.Day != "2026-07-04" {
		t.Errorf("unexpected response: %+v", res.Msg)
	}
}
