package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestSelectWinner(t *testing.T) {
	a := Player{ID: uuid.New(), Name: "A", SushiCount: 3}
	b := Player{ID: uuid.New(), Name: "B", SushiCount: 7}
	c := Player{ID: uuid.New(), Name: "C", SushiCount: 7}

	winner, ok := SelectWinner([]Player{a, b, c})
	if !ok {
		t.Fatal("expected a winner")
	}
	if winner.ID != b.ID {
		t.Errorf("expected first of the tied leaders (B), got %s", winner.Name)
	}

	winner, _ = SelectWinner([]Player{{ID: a.ID, Name: "A"}, {ID: b.ID, Name: "B"}})
	if winner.ID != a.ID {
		t.Errorf("expected A to win an all-zero game, got %s", winner.Name)
	}

	if _, ok := SelectWinner(nil); ok {
		t.Error("expected no winner for an empty room")
	}
}

func TestFinishDeltas(t *testing.T) {
	a := Player{ID: uuid.New(), SushiCount: 3}
	b := Player{ID: uuid.New(), SushiCount: 7}

	got := FinishDeltas([]Player{a, b}, b.ID, "2026-05-01")
	want := []StatDelta{
		{UserID: a.ID, Sushi: 3, Win: false, Day: "2026-05-01"},
		{UserID: b.ID, Sushi: 7, Win: true, Day: "2026-05-01"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected deltas (-want +got):\n%s", diff)
	}
}

func TestGameDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	got := GameDate(time.Date(2026, 5, 2, 3, 0, 0, 0, tokyo))
	if got != "2026-05-01" {
		t.Errorf("expected UTC day 2026-05-01, got %s", got)
	}
}
