package rankings

import (
	"github.com/mcdev12/sushirush/go/internal/games"
	"github.com/mcdev12/sushirush/go/internal/models"
)

type UserStatsMsg struct {
	UserID      string           `json:"userId"`
	DisplayName string           `json:"displayName,omitempty"`
	TotalSushi  int64            `json:"totalSushi"`
	GamesPlayed int              `json:"gamesPlayed"`
	Wins        int              `json:"wins"`
	Daily       map[string]int64 `json:"daily,omitempty"`
}

type TopByTotalSushiRequest struct {
	Limit int `json:"limit,omitempty"`
}

type TopByTotalSushiResponse struct {
	Users []UserStatsMsg `json:"users"`
}

type GamesOnDateRequest struct {
	Date string `json:"date"`
}

type GamesResponse struct {
	Games []games.GameResultMsg `json:"games"`
}

type GameHistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

type GetUserStatsRequest struct {
	// UserID defaults to the caller
	UserID string `json:"userId,omitempty"`
}

type GetUserStatsResponse struct {
	Stats UserStatsMsg `json:"stats"`
}

func StatsToMsg(s *models.UserStats) UserStatsMsg {
	return UserStatsMsg{
		UserID:      s.UserID.String(),
		DisplayName: s.DisplayName,
		TotalSushi:  s.TotalSushi,
		GamesPlayed: s.GamesPlayed,
		Wins:        s.Wins,
		Daily:       s.Daily,
	}
}

func gamesToMsg(results []models.GameResult) []games.GameResultMsg {
	out := make([]games.GameResultMsg, len(results))
	for i := range results {
		out[i] = games.GameToMsg(&results[i])
	}
	return out
}
