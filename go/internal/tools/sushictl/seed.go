package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcdev12/sushirush/go/internal/models"
)

var seedNames = []string{
	"Aiko", "Kenji", "Yuki", "Haruto", "Mei", "Sora", "Ren", "Hana", "Daichi", "Emi",
}

var seedRooms = []string{
	"Friday Omakase", "Conveyor Belt Challenge", "Lunch Rush", "Birthday Bento", "Late Night Maki",
}

type seedOptions struct {
	users    int
	games    int
	days     int
	password string
	seed     uint64
}

type seedUser struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// seedPlan is everything seed writes, built up front so it can be checked
// without a database.
type seedPlan struct {
	Users  []seedUser
	Games  []models.GameResult
	Deltas []models.StatDelta
}

func buildSeedPlan(rng *rand.Rand, opts seedOptions, now time.Time) seedPlan {
	var plan seedPlan
	for i := range opts.users {
		name := seedNames[i%len(seedNames)]
		if i >= len(seedNames) {
			name = fmt.Sprintf("%s %d", name, i/len(seedNames)+1)
		}
		plan.Users = append(plan.Users, seedUser{
			ID:          uuid.New(),
			Email:       fmt.Sprintf("seed-%d@sushirush.local", i+1),
			DisplayName: name,
		})
	}
	if len(plan.Users) == 0 {
		return plan
	}

	maxSeats := min(len(plan.Users), models.MaxPlayersPerRoom)
	for range opts.games {
		finishedAt := now.Add(-time.Duration(rng.Int64N(int64(opts.days)*24)) * time.Hour).UTC()
		seats := 1 + rng.IntN(maxSeats)
		picked := rng.Perm(len(plan.Users))[:seats]

		players := make([]models.Player, seats)
		for i, idx := range picked {
			u := plan.Users[idx]
			players[i] = models.Player{
				ID:         u.ID,
				Name:       u.DisplayName,
				SushiCount: rng.IntN(31),
				JoinedAt:   finishedAt.Add(-time.Hour + time.Duration(i)*time.Minute),
			}
		}

		winner, _ := models.SelectWinner(players)
		day := models.GameDate(finishedAt)
		plan.Games = append(plan.Games, models.GameResult{
			ID:          uuid.New(),
			RoomID:      uuid.New(),
			RoomName:    seedRooms[rng.IntN(len(seedRooms))],
			WinnerID:    winner.ID,
			WinnerName:  winner.Name,
			WinnerCount: winner.SushiCount,
			Players:     players,
			FinishedAt:  finishedAt,
			Date:        day,
		})
		plan.Deltas = append(plan.Deltas, models.FinishDeltas(players, winner.ID, day)...)
	}
	return plan
}

func newSeedCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users and finished games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.users < 1 || opts.days < 1 {
				return fmt.Errorf("--users and --days must be positive")
			}
			seed := opts.seed
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			plan := buildSeedPlan(rand.New(rand.NewPCG(seed, seed)), opts, time.Now())

			hash, err := bcrypt.GenerateFromPassword([]byte(opts.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			pool, err := cfg.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pgx.BeginFunc(cmd.Context(), pool, func(tx pgx.Tx) error {
				return writeSeedPlan(cmd.Context(), tx, plan, string(hash))
			}); err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users and %d games (password %q)\n",
				len(plan.Users), len(plan.Games), opts.password)
			if cfg.verbose {
				for _, u := range plan.Users {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", u.Email, u.DisplayName)
				}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&opts.users, "users", 8, "number of users to create (env: SUSHICTL_USERS)")
	fs.IntVar(&opts.games, "games", 20, "number of finished games to create (env: SUSHICTL_GAMES)")
	fs.IntVar(&opts.days, "days", 14, "spread games over this many past days (env: SUSHICTL_DAYS)")
	fs.StringVar(&opts.password, "password", "sushi123", "password for every seeded user (env: SUSHICTL_PASSWORD)")
	fs.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one (env: SUSHICTL_SEED)")
	bindEnv(v, fs)

	return cmd
}

func writeSeedPlan(ctx context.Context, tx pgx.Tx, plan seedPlan, passwordHash string) error {
	for _, u := range plan.Users {
		if _, err := tx.Exec(ctx, `
            INSERT INTO users (id, email, display_name, password_hash, role)
            VALUES ($1, $2, $3, $4, 'player')
            ON CONFLICT (email) DO NOTHING
        `, u.ID, u.Email, u.DisplayName, passwordHash); err != nil {
			return fmt.Errorf("insert user %s: %w", u.Email, err)
		}
	}

	// Seeded users that already existed keep their ids, so remap by email.
	ids := make(map[uuid.UUID]uuid.UUID, len(plan.Users))
	for _, u := range plan.Users {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, u.Email).Scan(&id); err != nil {
			return fmt.Errorf("lookup user %s: %w", u.Email, err)
		}
		ids[u.ID] = id
	}

	for _, g := range plan.Games {
		if err := writeSeedGame(ctx, tx, g, ids); err != nil {
			return err
		}
	}

	for _, d := range plan.Deltas {
		wins := 0
		if d.Win {
			wins = 1
		}
		userID := ids[d.UserID]
		if _, err := tx.Exec(ctx, `
            INSERT INTO user_stats (user_id, total_sushi, games_played, wins, updated_at)
            VALUES ($1, $2, 1, $3, now())
            ON CONFLICT (user_id) DO UPDATE
            SET total_sushi  = user_stats.total_sushi + EXCLUDED.total_sushi,
                games_played = user_stats.games_played + 1,
                wins         = user_stats.wins + EXCLUDED.wins,
                updated_at   = EXCLUDED.updated_at
        `, userID, d.Sushi, wins); err != nil {
			return fmt.Errorf("apply stats: %w", err)
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO user_daily_sushi (user_id, day, sushi)
            VALUES ($1, $2::date, $3)
            ON CONFLICT (user_id, day) DO UPDATE
            SET sushi = user_daily_sushi.sushi + EXCLUDED.sushi
        `, userID, d.Day, d.Sushi); err != nil {
			return fmt.Errorf("apply daily sushi: %w", err)
		}
	}
	return nil
}

func writeSeedGame(ctx context.Context, tx pgx.Tx, g models.GameResult, ids map[uuid.UUID]uuid.UUID) error {
	players := make([]models.Player, len(g.Players))
	for i, p := range g.Players {
		p.ID = ids[p.ID]
		players[i] = p
	}
	snapshot, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	creator := players[0].ID
	if _, err := tx.Exec(ctx, `
        INSERT INTO rooms (id, name, created_by, is_active, created_at, closed_at)
        VALUES ($1, $2, $3, FALSE, $4, $5)
    `, g.RoomID, g.RoomName, creator, players[0].JoinedAt, g.FinishedAt); err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	for i, p := range players {
		if _, err := tx.Exec(ctx, `
            INSERT INTO room_players (room_id, player_id, name, sushi_count, position, joined_at)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, g.RoomID, p.ID, p.Name, p.SushiCount, i, p.JoinedAt); err != nil {
			return fmt.Errorf("insert room player: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `
        INSERT INTO game_results (id, room_id, room_name, winner_id, winner_name, winner_count, players, finished_at, game_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date)
    `, g.ID, g.RoomID, g.RoomName, ids[g.WinnerID], g.WinnerName, g.WinnerCount, snapshot, g.FinishedAt, g.Date); err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	return nil
}
