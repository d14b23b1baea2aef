package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sushirush/go/internal/auth"
	authdb "github.com/mcdev12/sushirush/go/internal/auth/db"
	"github.com/mcdev12/sushirush/go/internal/config"
	"github.com/mcdev12/sushirush/go/internal/dbconfig"
	"github.com/mcdev12/sushirush/go/internal/gateway"
	"github.com/mcdev12/sushirush/go/internal/outbox"
	outboxdb "github.com/mcdev12/sushirush/go/internal/outbox/db"
	"github.com/mcdev12/sushirush/go/internal/rankings"
	rankingsdb "github.com/mcdev12/sushirush/go/internal/rankings/db"
	"github.com/mcdev12/sushirush/go/internal/rooms"
	roomsdb "github.com/mcdev12/sushirush/go/internal/rooms/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	dbCfg := dbconfig.NewConfigFromEnv()
	db, err := dbCfg.Open(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	log.Info().
		Str("database", dbCfg.Database).
		Str("nats_url", cfg.NatsURL).
		Str("port", cfg.GatewayPort).
		Msg("starting room gateway")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	authApp, stateProvider := setupApps(db, cfg, clock)

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.JetStreamConfig.URL = cfg.NatsURL

	gatewayService, err := gateway.NewService(ctx, gatewayConfig, stateProvider, authApp, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway service")
	}

	mux := http.NewServeMux()
	gatewayService.RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// No WriteTimeout: it would cut long-lived websocket connections.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.GatewayPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- gatewayService.Start(ctx)
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("gateway service exited unexpectedly")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("room gateway shutdown complete")
}

func setupApps(db *sql.DB, cfg *config.Config, clock clockwork.Clock) (*auth.App, *gateway.RoomStateProvider) {
	authApp := auth.NewApp(auth.NewRepository(db, authdb.New(db)), clock, auth.Config{
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		SessionTTL:  cfg.Auth.SessionTTL,
		AdminEmails: cfg.Auth.AdminEmails,
	})

	outboxRepo := outbox.NewRepository(outboxdb.New(db))
	roomsApp := rooms.NewApp(rooms.NewRepository(db, roomsdb.New(db), outboxRepo), clock,
		rooms.Config{MaxPlayers: cfg.Game.MaxPlayers})

	// Leaderboard pushes read through to Postgres; a GameFinished event can
	// arrive before the API has invalidated the shared cache.
	rankingsApp := rankings.NewApp(rankings.NewRepository(rankingsdb.New(db)), nil)

	return authApp, gateway.NewRoomStateProvider(roomsApp, rankingsApp, clock, cfg.Rankings.DefaultLimit)
}
