package main

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/sushirush/go/internal/models"
)

func TestPurgeStatements(t *testing.T) {
	for _, target := range purgeTargets {
		stmts, err := purgeStatements(target)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", target, err)
		}
		if len(stmts) == 0 {
			t.Errorf("%s: expected statements", target)
		}
	}

	all, _ := purgeStatements("all")
	if !slices.Contains(all, "TRUNCATE users CASCADE") || !slices.Contains(all, "TRUNCATE rooms CASCADE") {
		t.Errorf("expected all to truncate users and rooms, got %v", all)
	}

	if _, err := purgeStatements("sessions"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestPurgeRequiresConfirmation(t *testing.T) {
	cmd := newRootCmd(&Config{})
	cmd.SetArgs([]string{"purge", "games", "--dsn", "postgres://unused"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.Execute(); !errors.Is(err, errNotConfirmed) {
		t.Fatalf("expected errNotConfirmed, got %v", err)
	}
}

func TestRootCmd_EnvBinding(t *testing.T) {
	t.Setenv("SUSHICTL_DSN", "postgres://from-env/sushirush")
	cfg := &Config{}
	newRootCmd(cfg)

	if cfg.dsn != "postgres://from-env/sushirush" {
		t.Errorf("expected dsn from env, got %s", cfg.dsn)
	}
}

func TestBuildSeedPlan(t *testing.T) {
	now := time.Date(2026, 7, 4, 20, 0, 0, 0, time.UTC)
	opts := seedOptions{users: 12, games: 30, days: 7}
	plan := buildSeedPlan(rand.New(rand.NewPCG(1, 1)), opts, now)

	if len(plan.Users) != 12 || len(plan.Games) != 30 {
		t.Fatalf("expected 12 users and 30 games, got %d and %d", len(plan.Users), len(plan.Games))
	}
	if plan.Users[10].DisplayName != "Aiko 2" {
		t.Errorf("expected repeated names to be numbered, got %s", plan.Users[10].DisplayName)
	}

	deltas := 0
	for _, g := range plan.Games {
		if len(g.Players) < 1 || len(g.Players) > models.MaxPlayersPerRoom {
			t.Fatalf("game has %d players", len(g.Players))
		}
		winner, _ := models.SelectWinner(g.Players)
		if g.WinnerID != winner.ID || g.WinnerCount != winner.SushiCount {
			t.Errorf("winner mismatch in game %s", g.ID)
		}
		if g.FinishedAt.After(now) || g.FinishedAt.Before(now.AddDate(0, 0, -7)) {
			t.Errorf("finished at %s outside the window", g.FinishedAt)
		}
		if g.Date != models.GameDate(g.FinishedAt) {
			t.Errorf("expected date %s, got %s", models.GameDate(g.FinishedAt), g.Date)
		}
		seen := map[uuid.UUID]bool{}
		for _, p := range g.Players {
			if seen[p.ID] {
				t.Errorf("player %s seated twice", p.Name)
			}
			seen[p.ID] = true
		}
		deltas += len(g.Players)
	}
	if len(plan.Deltas) != deltas {
		t.Errorf("expected %d deltas, got %d", deltas, len(plan.Deltas))
	}

	wins := 0
	for _, d := range plan.Deltas {
		if d.Win {
			wins++
		}
	}
	if wins != len(plan.Games) {
		t.Errorf("expected one win per game, got %d", wins)
	}
}

func TestStatsOutput(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, &dbStats{Users: 3, Games: 2, Top: []leader{{DisplayName: "Aiko", TotalSushi: 42, Wins: 2}}})

	out := buf.String()
	for _, want := range []string{"users:          3", "games:          2", "Aiko", "42 sushi"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
