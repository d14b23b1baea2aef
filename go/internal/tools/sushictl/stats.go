package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

type dbStats struct {
	Users       int64
	ActiveRooms int64
	Games       int64
	UnsentEvent int64
	Top         []leader
}

type leader struct {
	DisplayName string
	TotalSushi  int64
	Wins        int64
}

func newStatsCmd(cfg *Config) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print row counts and the current leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := cfg.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := loadStats(cmd.Context(), pool, top)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "number of leaders to show")
	return cmd
}

func loadStats(ctx context.Context, pool *pgxpool.Pool, top int) (*dbStats, error) {
	var s dbStats
	err := pool.QueryRow(ctx, `
        SELECT
            (SELECT count(*) FROM users),
            (SELECT count(*) FROM rooms WHERE is_active),
            (SELECT count(*) FROM game_results),
            (SELECT count(*) FROM room_outbox WHERE sent_at IS NULL)
    `).Scan(&s.Users, &s.ActiveRooms, &s.Games, &s.UnsentEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	rows, err := pool.Query(ctx, `
        SELECT u.display_name, s.total_sushi, s.wins
        FROM user_stats s
        JOIN users u ON u.id = s.user_id
        ORDER BY s.total_sushi DESC, s.updated_at ASC
        LIMIT $1
    `, top)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l leader
		if err := rows.Scan(&l.DisplayName, &l.TotalSushi, &l.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan leader: %w", err)
		}
		s.Top = append(s.Top, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return &s, nil
}

func printStats(w io.Writer, s *dbStats) {
	fmt.Fprintf(w, "users:          %d\n", s.Users)
	fmt.Fprintf(w, "active rooms:   %d\n", s.ActiveRooms)
	fmt.Fprintf(w, "games:          %d\n", s.Games)
	fmt.Fprintf(w, "unsent events:  %d\n", s.UnsentEvent)
	if len(s.Top) == 0 {
		return
	}
	fmt.Fprintln(w, "\nleaderboard:")
	for i, l := range s.Top {
		fmt.Fprintf(w, "%2d. %-20s %6d sushi  %3d wins\n", i+1, l.DisplayName, l.TotalSushi, l.Wins)
	}
}
