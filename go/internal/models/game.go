package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format used for game dates and daily buckets.
const DateLayout = "2006-01-02"

// GameResult is the immutable record of one finished room
type GameResult struct {
	ID          uuid.UUID `json:"id"`
	RoomID      uuid.UUID `json:"room_id"`
	RoomName    string    `json:"room_name"`
	WinnerID    uuid.UUID `json:"winner_id"`
	WinnerName  string    `json:"winner_name"`
	WinnerCount int       `json:"winner_count"`
	Players     []Player  `json:"players"`
	FinishedAt  time.Time `json:"finished_at"`
	Date        string    `json:"date"`
}

// UserStats is a per-user lifetime aggregate
type UserStats struct {
	UserID      uuid.UUID        `json:"user_id"`
	DisplayName string           `json:"display_name,omitempty"`
	TotalSushi  int64            `json:"total_sushi"`
	GamesPlayed int              `json:"games_played"`
	Wins        int              `json:"wins"`
	Daily       map[string]int64 `json:"daily,omitempty"`
}

// StatDelta is one additive update to a user's stats.
type StatDelta struct {
	UserID uuid.UUID
	Sushi  int
	Win    bool
	Day    string
}

// SelectWinner returns the player with the strictly greatest count. Ties go
// to whoever joined first. ok is false for an empty list.
func SelectWinner(players []Player) (winner Player, ok bool) {
	if len(players) == 0 {
		return Player{}, false
	}
	winner = players[0]
	for _, p := range players[1:] {
		if p.SushiCount > winner.SushiCount {
			winner = p
		}
	}
	return winner, true
}

// GameDate formats t as the UTC calendar day of a finished game.
func GameDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FinishDeltas builds the stat updates a finished game applies: every player
// gets their count and one game, the winner also gets a win.
func FinishDeltas(players []Player, winnerID uuid.UUID, day string) []StatDelta {
	deltas := make([]StatDelta, len(players))
	for i, p := range players {
		deltas[i] = StatDelta{
			UserID: p.ID,
			Sushi:  p.SushiCount,
			Win:    p.ID == winnerID,
			Day:    day,
		}
	}
	return deltas
}
