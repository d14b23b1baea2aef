package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/sushirush/go/internal/auth"
	authdb "github.com/mcdev12/sushirush/go/internal/auth/db"
	"github.com/mcdev12/sushirush/go/internal/config"
	"github.com/mcdev12/sushirush/go/internal/games"
	gamesdb "github.com/mcdev12/sushirush/go/internal/games/db"
	"github.com/mcdev12/sushirush/go/internal/outbox"
	outboxdb "github.com/mcdev12/sushirush/go/internal/outbox/db"
	"github.com/mcdev12/sushirush/go/internal/rankings"
	rankingsdb "github.com/mcdev12/sushirush/go/internal/rankings/db"
	"github.com/mcdev12/sushirush/go/internal/rooms"
	roomsdb "github.com/mcdev12/sushirush/go/internal/rooms/db"
)

type Services struct {
	AuthApp  *auth.App
	RoomsApp *rooms.App

	Auth     *auth.Service
	Rooms    *rooms.Service
	Games    *games.Service
	Rankings *rankings.Service
}

func setupServices(database *sql.DB, redisClient *redis.Client, cfg *config.Config) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer
	clock := clockwork.NewRealClock()
	outboxRepo := outbox.NewRepository(outboxdb.New(database))

	// Auth
	authRepo := auth.NewRepository(database, authdb.New(database))
	authApp := auth.NewApp(authRepo, clock, auth.Config{
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		SessionTTL:  cfg.Auth.SessionTTL,
		AdminEmails: cfg.Auth.AdminEmails,
	})

	// Rooms
	roomQueries := roomsdb.New(database)
	roomsRepo := rooms.NewRepository(database, roomQueries, outboxRepo)
	roomsApp := rooms.NewApp(roomsRepo, clock, rooms.Config{MaxPlayers: cfg.Game.MaxPlayers})

	// Rankings
	var cache rankings.Cache
	if redisClient != nil {
		cache = rankings.NewRedisCache(redisClient, cfg.Rankings.CacheTTL)
	}
	rankingsRepo := rankings.NewRepository(rankingsdb.New(database))
	rankingsApp := rankings.NewApp(rankingsRepo, cache)

	// Games
	gamesRepo := games.NewRepository(database, gamesdb.New(database), roomQueries, outboxRepo)
	gamesApp := games.NewApp(gamesRepo, clock, rankingsApp)

	return &Services{
		AuthApp:  authApp,
		RoomsApp: roomsApp,
		Auth:     auth.NewService(authApp),
		Rooms:    rooms.NewService(roomsApp),
		Games:    games.NewService(gamesApp),
		Rankings: rankings.NewService(rankingsApp),
	}
}
