package games

import (
	"time"

	"github.com/mcdev12/sushirush/go/internal/models"
)

type GameResultMsg struct {
	ID          string          `json:"id"`
	RoomID      string          `json:"roomId"`
	RoomName    string          `json:"roomName"`
	WinnerID    string          `json:"winnerId"`
	WinnerName  string          `json:"winnerName"`
	WinnerCount int             `json:"winnerCount"`
	Players     []GamePlayerMsg `json:"players"`
	FinishedAt  time.Time       `json:"finishedAt"`
	Date        string          `json:"date"`
}

type GamePlayerMsg struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SushiCount int    `json:"sushiCount"`
}

type FinishGameRequestMsg struct {
	RoomID string `json:"roomId"`
}

type FinishGameResponse struct {
	Game     GameResultMsg `json:"game"`
	Replayed bool          `json:"replayed"`
}

type FinishSoloGameRequest struct {
	Count int `json:"count"`
}

type FinishSoloGameResponse struct {
	Sushi int    `json:"sushi"`
	Day   string `json:"day"`
}

type GetGameRequest struct {
	GameID string `json:"gameId"`
}

type GetGameResponse struct {
	Game GameResultMsg `json:"game"`
}

type DeleteGameRequest struct {
	GameID string `json:"gameId"`
}

type DeleteGameResponse struct{}

// GameToMsg converts a game result to its wire shape
func GameToMsg(game *models.GameResult) GameResultMsg {
	msg := GameResultMsg{
		ID:          game.ID.String(),
		RoomID:      game.RoomID.String(),
		RoomName:    game.RoomName,
		WinnerID:    game.WinnerID.String(),
		WinnerName:  game.WinnerName,
		WinnerCount: game.WinnerCount,
		Players:     make([]GamePlayerMsg, len(game.Players)),
		FinishedAt:  game.FinishedAt,
		Date:        game.Date,
	}
	for i, p := range game.Players {
		msg.Players[i] = GamePlayerMsg{ID: p.ID.String(), Name: p.Name, SushiCount: p.SushiCount}
	}
	return msg
}
