package rooms

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
	RoomServiceName = "sushirush.room.v1.RoomService"

	RoomServiceCreateRoomProcedure        = "/sushirush.room.v1.RoomService/CreateRoom"
	RoomServiceGetRoomProcedure           = "/sushirush.room.v1.RoomService/GetRoom"
	RoomServiceListActiveRoomsProcedure   = "/sushirush.room.v1.RoomService/ListActiveRooms"
	RoomServiceJoinRoomProcedure          = "/sushirush.room.v1.RoomService/JoinRoom"
	RoomServiceUpdateCountProcedure       = "/sushirush.room.v1.RoomService/UpdateCount"
	RoomServiceIncrementCountProcedure    = "/sushirush.room.v1.RoomService/IncrementCount"
	RoomServiceLeaveRoomProcedure         = "/sushirush.room.v1.RoomService/LeaveRoom"
	RoomServiceCloseRoomProcedure         = "/sushirush.room.v1.RoomService/CloseRoom"
	RoomServiceAddRatingProcedure         = "/sushirush.room.v1.RoomService/AddRating"
	RoomServiceUpdateRoomDetailsProcedure = "/sushirush.room.v1.RoomService/UpdateRoomDetails"
)

// RoomsApp defines what the service layer needs from the rooms application
type RoomsApp interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	ListActiveRooms(ctx context.Context) ([]models.Room, error)
	JoinRoom(ctx context.Context, roomID uuid.UUID, req JoinRoomRequest) (*JoinResult, error)
	UpdateCount(ctx context.Context, roomID, playerID uuid.UUID, newCount int) (int, error)
	IncrementCount(ctx context.Context, roomID, playerID uuid.UUID, delta int) (int, error)
	LeaveRoom(ctx context.Context, roomID, playerID uuid.UUID) (*LeaveResult, error)
	CloseRoom(ctx context.Context, roomID, requestedBy uuid.UUID) error
	AddRating(ctx context.Context, roomID uuid.UUID, req AddRatingRequest) (*models.Rating, error)
	UpdateRoomDetails(ctx context.Context, roomID, requestedBy uuid.UUID, req UpdateRoomDetailsRequest) (*models.Room, error)
}

// Service implements the RoomService Connect procedures. Players always act
// as themselves: the player id comes from the authenticated caller.
type Service struct {
	app RoomsApp
}

// NewService creates a new rooms service
func NewService(app RoomsApp) *Service {
	return &Service{app: app}
}

// NewRoomServiceHandler mounts every RoomService procedure
func NewRoomServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(RoomServiceCreateRoomProcedure, connect.NewUnaryHandler(RoomServiceCreateRoomProcedure, svc.CreateRoom, opts...))
	mux.Handle(RoomServiceGetRoomProcedure, connect.NewUnaryHandler(RoomServiceGetRoomProcedure, svc.GetRoom, opts...))
	mux.Handle(RoomServiceListActiveRoomsProcedure, connect.NewUnaryHandler(RoomServiceListActiveRoomsProcedure, svc.ListActiveRooms, opts...))
	mux.Handle(RoomServiceJoinRoomProcedure, connect.NewUnaryHandler(RoomServiceJoinRoomProcedure, svc.JoinRoom, opts...))
	mux.Handle(RoomServiceUpdateCountProcedure, connect.NewUnaryHandler(RoomServiceUpdateCountProcedure, svc.UpdateCount, opts...))
	mux.Handle(RoomServiceIncrementCountProcedure, connect.NewUnaryHandler(RoomServiceIncrementCountProcedure, svc.IncrementCount, opts...))
	mux.Handle(RoomServiceLeaveRoomProcedure, connect.NewUnaryHandler(RoomServiceLeaveRoomProcedure, svc.LeaveRoom, opts...))
	mux.Handle(RoomServiceCloseRoomProcedure, connect.NewUnaryHandler(RoomServiceCloseRoomProcedure, svc.CloseRoom, opts...))
	mux.Handle(RoomServiceAddRatingProcedure, connect.NewUnaryHandler(RoomServiceAddRatingProcedure, svc.AddRating, opts...))
	mux.Handle(RoomServiceUpdateRoomDetailsProcedure, connect.NewUnaryHandler(RoomServiceUpdateRoomDetailsProcedure, svc.UpdateRoomDetails, opts...))
	return "/" + RoomServiceName + "/", mux
}

// CreateRoom opens a room and seats the caller as its first player
func (s *Service) CreateRoom(ctx context.Context, req *connect.Request[CreateRoomRequestMsg]) (*connect.Response[RoomResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	room, err := s.app.CreateRoom(ctx, CreateRoomRequest{
		Name:        req.Msg.Name,
		CreatedBy:   caller.UserID,
		PhotoURL:    req.Msg.PhotoURL,
		Location:    req.Msg.Location,
		CreatorName: caller.DisplayName,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&RoomResponse{Room: RoomToMsg(room)}), nil
}

// GetRoom retrieves a room by ID
func (s *Service) GetRoom(ctx context.Context, req *connect.Request[GetRoomRequest]) (*connect.Response[RoomResponse], error) {
	roomID, err := parseRoomID(req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	room, err := s.app.GetRoom(ctx, roomID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RoomResponse{Room: RoomToMsg(room)}), nil
}

// ListActiveRooms retrieves the current room directory
func (s *Service) ListActiveRooms(ctx context.Context, req *connect.Request[ListActiveRoomsRequest]) (*connect.Response[ListActiveRoomsResponse], error) {
	rooms, err := s.app.ListActiveRooms(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListActiveRoomsResponse{Rooms: RoomsToMsg(rooms)}), nil
}

// JoinRoom seats the caller
func (s *Service) JoinRoom(ctx context.Context, req *connect.Request[JoinRoomRequestMsg]) (*connect.Response[JoinRoomResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := parseRoomID(req.Msg.RoomID)
	if err != nil {
		return nil, err
	}

	name := req.Msg.Name
	if name == "" {
		name = caller.DisplayName
	}
	result, err := s.app.JoinRoom(ctx, roomID, JoinRoomRequest{PlayerID: caller.UserID, Name: name})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&JoinRoomResponse{Room: RoomToMsg(result.Room), Joined: result.Joined}), nil
}

// UpdateCount sets the caller's counter
func (s *Service) UpdateCount(ctx context.Context, req *connect.Request[UpdateCountRequest]) (*connect.Response[CountResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := parseRoomID(req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	count, err := s.app.UpdateCount(ctx, roomID, caller.UserID, req.Msg.Count)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CountResponse{SushiCount: count}), nil
}

// IncrementCount adds to the caller's counter
func (s *Service) IncrementCount(ctx context.Context, req *connect.Request[IncrementCountRequest]) (*connect.Response[CountResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := parseRoomID(req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	count, err := s.app.IncrementCount(ctx, roomID, caller.UserID, req.Msg.Delta)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CountResponse{SushiCount: count}), nil
}

// LeaveRoom removes the caller from a room
func (s *Service) LeaveRoom(ctx context.Context, req *connect.Request[LeaveRoomRequest]) (*connect.Response[LeaveRoomResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := parseRoomID(req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	result, err := s.app.LeaveRoom(ctx, roomID, caller.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&LeaveRoomResponse{Remaining: result.Remaining, Closed: result.Closed}), nil
}

// CloseRoom ends a room without recording a result
func (s *Service) CloseRoom(ctx context.Context, req *connect.Request[CloseRoomRequest]) (*connect.Response[CloseRoomResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := parseRoomID(req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.app.CloseRoom(ctx, roomID, caller.UserID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CloseRoomResponse{}), nil
}

// AddRating rates a room as the caller
func (s *Service) AddRating(ctx context.Context, req *connect.Request[AddRatingRequestMsg]) (*connect.Response[AddRatingResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := parseRoomID(req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	rating, err := s.app.AddRating(ctx, roomID, AddRatingRequest{
		AuthorID:   caller.UserID,
		AuthorName: caller.DisplayName,
		Score:      req.Msg.Score,
		Comment:    req.Msg.Comment,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddRatingResponse{Rating: ratingToMsg(*rating)}), nil
}

// UpdateRoomDetails changes photo and location
func (s *Service) UpdateRoomDetails(ctx context.Context, req *connect.Request[UpdateRoomDetailsRequestMsg]) (*connect.Response[RoomResponse], error) {
	caller, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := parseRoomID(req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	room, err := s.app.UpdateRoomDetails(ctx, roomID, caller.UserID, UpdateRoomDetailsRequest{
		PhotoURL: req.Msg.PhotoURL,
		Location: req.Msg.Location,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RoomResponse{Room: RoomToMsg(room)}), nil
}

func parseRoomID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid room id"))
	}
	return id, nil
}

func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, ErrInvalidRoomName),
		errors.Is(err, ErrInvalidPlayer),
		errors.Is(err, ErrInvalidScore),
		errors.Is(err, ErrInvalidCount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrPlayerNotInRoom):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrRoomFull),
		errors.Is(err, ErrRoomInactive),
		errors.Is(err, ErrAlreadyRated):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ErrNotRoomCreator):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		log.Error().Err(err).Msg("room request failed")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}
