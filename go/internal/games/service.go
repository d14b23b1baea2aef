package games

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sushirush/go/internal/auth"
	"github.com/mcdev12/sushirush/go/internal/models"
)

const (
	GameServiceName = "sushirush.game.v1.GameService"

	GameServiceFinishGameProcedure     = "/sushirush.game.v1.GameService/FinishGame"
	GameServiceFinishSoloGameProcedure = "/sushirush.game.v1.GameService/FinishSoloGame"
	GameServiceGetGameProcedure        = "/sushirush.game.v1.GameService/GetGame"
	GameServiceDeleteGameProcedure     = "/sushirush.game.v1.GameService/DeleteGame"
)

// GamesApp defines what the service layer needs from the games application
type GamesApp interface {
	FinishGame(ctx context.Context, req FinishGameRequest) (*FinishResult, error)
	FinishSoloGame(ctx context.Context, userID uuid.UUID, count int) (*models.StatDelta, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.GameResult, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
}

// Service implements the GameService Connect procedures
type Service struct {
	app GamesApp
}

// NewService creates a new games service
func NewService(app GamesApp) *Service {
	return &Service{app: app}
}

// NewGameServiceHandler mounts every GameService procedure
func NewGameServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GameServiceFinishGameProcedure, connect.NewUnaryHandler(GameServiceFinishGameProcedure, svc.FinishGame, opts...))
	mux.Handle(GameServiceFinishSoloGameProcedure, connect.NewUnaryHandler(GameServiceFinishSoloGameProcedure, svc.FinishSoloGame, opts...))
	mux.Handle(GameServiceGetGameProcedure, connect.NewUnaryHandler(GameServiceGetGameProcedure, svc.GetGame, opts...))
	mux.Handle(GameServiceDeleteGameProcedure, connect.NewUnaryHandler(GameServiceDeleteGameProcedure, svc.DeleteGame, opts...))
	return "/" + GameServiceName + "/", mux
}

// FinishGame ends a room and records its winner
func (s *Service) FinishGame(ctx context.Context, req *connect.Request[FinishGameRequestMsg]) (*connect.Response[FinishGameResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := uuid.Parse(req.Msg.RoomID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid room id"))
	}

	result, err := s.app.FinishGame(ctx, FinishGameRequest{RoomID: roomID, RequestedBy: caller.UserID})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&FinishGameResponse{
		Game:     GameToMsg(result.Result),
		Replayed: result.Replayed,
	}), nil
}

// FinishSoloGame credits the caller's solo session
func (s *Service) FinishSoloGame(ctx context.Context, req *connect.Request[FinishSoloGameRequest]) (*connect.Response[FinishSoloGameResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	delta, err := s.app.FinishSoloGame(ctx, caller.UserID, req.Msg.Count)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&FinishSoloGameResponse{Sushi: delta.Sushi, Day: delta.Day}), nil
}

// GetGame retrieves one finished game
func (s *Service) GetGame(ctx context.Context, req *connect.Request[GetGameRequest]) (*connect.Response[GetGameResponse], error) {
	gameID, err := uuid.Parse(req.Msg.GameID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid game id"))
	}
	game, err := s.app.GetGame(ctx, gameID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetGameResponse{Game: GameToMsg(game)}), nil
}

// DeleteGame removes a game from history; admins only
func (s *Service) DeleteGame(ctx context.Context, req *connect.Request[DeleteGameRequest]) (*connect.Response[DeleteGameResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !caller.IsAdmin {
		return nil, connect.NewError(connect.CodePermissionDenied, auth.ErrForbidden)
	}
	gameID, err := uuid.Parse(req.Msg.GameID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid game id"))
	}
	if err := s.app.DeleteGame(ctx, gameID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteGameResponse{}), nil
}

func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, ErrInvalidCount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrGameNotFound),
		errors.Is(err, ErrRoomNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrNoPlayers),
		errors.Is(err, ErrRoomInactive):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ErrNotRoomCreator):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		log.Error().Err(err).Msg("game request failed")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}
