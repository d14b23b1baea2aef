package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNotConfirmed = errors.New("refusing to purge without --yes")

var purgeTargets = []string{"users", "games", "rooms", "all"}

// purgeStatements returns the statements that empty target. Game purges also
// reset the aggregates derived from them.
func purgeStatements(target string) ([]string, error) {
	games := []string{
		"TRUNCATE game_results",
		"TRUNCATE user_daily_sushi",
		"UPDATE user_stats SET total_sushi = 0, games_played = 0, wins = 0, updated_at = now()",
	}
	rooms := []string{
		"TRUNCATE rooms CASCADE",
		"TRUNCATE room_outbox",
	}
	users := []string{
		"TRUNCATE users CASCADE",
	}

	switch target {
	case "games":
		return games, nil
	case "rooms":
		return rooms, nil
	case "users":
		return users, nil
	case "all":
		return slices.Concat(users, rooms, []string{"TRUNCATE game_results"}), nil
	}
	return nil, fmt.Errorf("unknown purge target %q (expected one of %v)", target, purgeTargets)
}

func newPurgeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:       "purge [users|games|rooms|all]",
		Short:     "Delete data from the database",
		Args:      cobra.ExactArgs(1),
		ValidArgs: purgeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			statements, err := purgeStatements(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return errNotConfirmed
			}

			pool, err := cfg.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pgx.BeginFunc(cmd.Context(), pool, func(tx pgx.Tx) error {
				return execAll(cmd.Context(), tx, statements)
			}); err != nil {
				return fmt.Errorf("failed to purge %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the purge (env: SUSHICTL_YES)")
	bindEnv(v, cmd.Flags())
	return cmd
}

func execAll(ctx context.Context, tx pgx.Tx, statements []string) error {
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
