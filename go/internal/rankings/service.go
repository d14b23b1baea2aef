package rankings

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
	RankingServiceName = "sushirush.ranking.v1.RankingService"

	RankingServiceTopByTotalSushiProcedure = "/sushirush.ranking.v1.RankingService/TopByTotalSushi"
	RankingServiceGamesOnDateProcedure     = "/sushirush.ranking.v1.RankingService/GamesOnDate"
	RankingServiceGameHistoryProcedure     = "/sushirush.ranking.v1.RankingService/GameHistory"
	RankingServiceGetUserStatsProcedure    = "/sushirush.ranking.v1.RankingService/GetUserStats"
)

// PublicProcedures can be called without a session
var PublicProcedures = []string{
	RankingServiceTopByTotalSushiProcedure,
	RankingServiceGamesOnDateProcedure,
	RankingServiceGameHistoryProcedure,
}

// RankingsApp defines what the service layer needs from the rankings application
type RankingsApp interface {
	TopByTotalSushi(ctx context.Context, n int) ([]models.UserStats, error)
	GamesOnDate(ctx context.Context, date string) ([]models.GameResult, error)
	GameHistory(ctx context.Context, limit int) ([]models.GameResult, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

// Service implements the RankingService Connect procedures
type Service struct {
	app RankingsApp
}

// NewService creates a new rankings service
func NewService(app RankingsApp) *Service {
	return &Service{app: app}
}

// NewRankingServiceHandler mounts every RankingService procedure
func NewRankingServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(RankingServiceTopByTotalSushiProcedure, connect.NewUnaryHandler(RankingServiceTopByTotalSushiProcedure, svc.TopByTotalSushi, opts...))
	mux.Handle(RankingServiceGamesOnDateProcedure, connect.NewUnaryHandler(RankingServiceGamesOnDateProcedure, svc.GamesOnDate, opts...))
	mux.Handle(RankingServiceGameHistoryProcedure, connect.NewUnaryHandler(RankingServiceGameHistoryProcedure, svc.GameHistory, opts...))
	mux.Handle(RankingServiceGetUserStatsProcedure, connect.NewUnaryHandler(RankingServiceGetUserStatsProcedure, svc.GetUserStats, opts...))
	return "/" + RankingServiceName + "/", mux
}

// TopByTotalSushi returns the global leaderboard
func (s *Service) TopByTotalSushi(ctx context.Context, req *connect.Request[TopByTotalSushiRequest]) (*connect.Response[TopByTotalSushiResponse], error) {
	stats, err := s.app.TopByTotalSushi(ctx, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	users := make([]UserStatsMsg, len(stats))
	for i := range stats {
		users[i] = StatsToMsg(&stats[i])
	}
	return connect.NewResponse(&TopByTotalSushiResponse{Users: users}), nil
}

// GamesOnDate lists games finished on one day
func (s *Service) GamesOnDate(ctx context.Context, req *connect.Request[GamesOnDateRequest]) (*connect.Response[GamesResponse], error) {
	results, err := s.app.GamesOnDate(ctx, req.Msg.Date)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GamesResponse{Games: gamesToMsg(results)}), nil
}

// GameHistory lists recent games
func (s *Service) GameHistory(ctx context.Context, req *connect.Request[GameHistoryRequest]) (*connect.Response[GamesResponse], error) {
	results, err := s.app.GameHistory(ctx, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GamesResponse{Games: gamesToMsg(results)}), nil
}

// GetUserStats returns one user's totals, the caller's by default
func (s *Service) GetUserStats(ctx context.Context, req *connect.Request[GetUserStatsRequest]) (*connect.Response[GetUserStatsResponse], error) {
	var userID uuid.UUID
	if req.Msg.UserID == "" {
		caller, err := auth.RequireIdentity(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		userID = caller.UserID
	} else {
		id, err := uuid.Parse(req.Msg.UserID)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid user id"))
		}
		userID = id
	}

	stats, err := s.app.GetUserStats(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetUserStatsResponse{Stats: StatsToMsg(stats)}), nil
}

func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, ErrInvalidDate):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		log.Error().Err(err).Msg("rankings request failed")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}
