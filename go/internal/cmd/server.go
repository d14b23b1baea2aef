package main

import (
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/sushirush/go/internal/auth"
	"github.com/mcdev12/sushirush/go/internal/config"
	"github.com/mcdev12/sushirush/go/internal/games"
	"github.com/mcdev12/sushirush/go/internal/rankings"
	"github.com/mcdev12/sushirush/go/internal/rooms"
	"github.com/mcdev12/sushirush/go/internal/rpcjson"
)

func setupServer(services *Services, cfg *config.Config) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Connect-Protocol-Version"},
	})

	registerServices(mux, services)

	mux.Handle(rooms.QRRoute, rooms.NewQRHandler(services.RoomsApp, cfg.Share.PublicURL))

	setupHealthCheck(mux)

	handler := c.Handler(mux)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	public := append([]string{}, auth.PublicProcedures...)
	public = append(public, rankings.PublicProcedures...)

	opts := connect.WithHandlerOptions(
		rpcjson.WithCodec(),
		connect.WithInterceptors(auth.NewInterceptor(services.AuthApp, public...)),
	)

	// Register auth service
	authPath, authHandler := auth.NewAuthServiceHandler(services.Auth, opts)
	mux.Handle(authPath, authHandler)

	// Register room service
	roomPath, roomHandler := rooms.NewRoomServiceHandler(services.Rooms, opts)
	mux.Handle(roomPath, roomHandler)

	// Register game service
	gamePath, gameHandler := games.NewGameServiceHandler(services.Games, opts)
	mux.Handle(gamePath, gameHandler)

	// Register ranking service
	rankingPath, rankingHandler := rankings.NewRankingServiceHandler(services.Rankings, opts)
	mux.Handle(rankingPath, rankingHandler)
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
