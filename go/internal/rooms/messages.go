package rooms

import (
	"time"

	"github.com/mcdev12/sushirush/go/internal/models"
)

type RoomMsg struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	CreatedBy     string      `json:"createdBy"`
	CreatedAt     time.Time   `json:"createdAt"`
	IsActive      bool        `json:"isActive"`
	Players       []PlayerMsg `json:"players"`
	PhotoURL      string      `json:"photoUrl,omitempty"`
	Location      string      `json:"location,omitempty"`
	Ratings       []RatingMsg `json:"ratings"`
	AverageRating float64     `json:"averageRating"`
	ClosedAt      *time.Time  `json:"closedAt,omitempty"`
}

type PlayerMsg struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SushiCount int       `json:"sushiCount"`
	JoinedAt   time.Time `json:"joinedAt"`
}

type RatingMsg struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Score      int       `json:"score"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateRoomRequestMsg struct {
	Name     string  `json:"name"`
	PhotoURL *string `json:"photoUrl,omitempty"`
	Location *string `json:"location,omitempty"`
}

type RoomResponse struct {
	Room RoomMsg `json:"room"`
}

type GetRoomRequest struct {
	RoomID string `json:"roomId"`
}

type ListActiveRoomsRequest struct{}

type ListActiveRoomsResponse struct {
	Rooms []RoomMsg `json:"rooms"`
}

type JoinRoomRequestMsg struct {
	RoomID string `json:"roomId"`
	// Name overrides the caller's display name for this room
	Name string `json:"name,omitempty"`
}

type JoinRoomResponse struct {
	Room   RoomMsg `json:"room"`
	Joined bool    `json:"joined"`
}

type UpdateCountRequest struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count"`
}

type IncrementCountRequest struct {
	RoomID string `json:"roomId"`
	Delta  int    `json:"delta"`
}

type CountResponse struct {
	SushiCount int `json:"sushiCount"`
}

type LeaveRoomRequest struct {
	RoomID string `json:"roomId"`
}

type LeaveRoomResponse struct {
	Remaining int  `json:"remaining"`
	Closed    bool `json:"closed"`
}

type CloseRoomRequest struct {
	RoomID string `json:"roomId"`
}

type CloseRoomResponse struct{}

type AddRatingRequestMsg struct {
	RoomID  string  `json:"roomId"`
	Score   int     `json:"score"`
	Comment *string `json:"comment,omitempty"`
}

type AddRatingResponse struct {
	Rating RatingMsg `json:"rating"`
}

type UpdateRoomDetailsRequestMsg struct {
	RoomID   string  `json:"roomId"`
	PhotoURL *string `json:"photoUrl,omitempty"`
	Location *string `json:"location,omitempty"`
}

// RoomToMsg converts a room to its wire shape
func RoomToMsg(room *models.Room) RoomMsg {
	msg := RoomMsg{
		ID:            room.ID.String(),
		Name:          room.Name,
		CreatedBy:     room.CreatedBy.String(),
		CreatedAt:     room.CreatedAt,
		IsActive:      room.IsActive,
		Players:       make([]PlayerMsg, len(room.Players)),
		Ratings:       make([]RatingMsg, len(room.Ratings)),
		AverageRating: room.AverageRating(),
		ClosedAt:      room.ClosedAt,
	}
	if room.PhotoURL != nil {
		msg.PhotoURL = *room.PhotoURL
	}
	if room.Location != nil {
		msg.Location = *room.Location
	}
	for i, p := range room.Players {
		msg.Players[i] = PlayerMsg{
			ID:         p.ID.String(),
			Name:       p.Name,
			SushiCount: p.SushiCount,
			JoinedAt:   p.JoinedAt,
		}
	}
	for i, rt := range room.Ratings {
		msg.Ratings[i] = ratingToMsg(rt)
	}
	return msg
}

// RoomsToMsg converts a room list to its wire shape
func RoomsToMsg(rooms []models.Room) []RoomMsg {
	out := make([]RoomMsg, len(rooms))
	for i := range rooms {
		out[i] = RoomToMsg(&rooms[i])
	}
	return out
}

func ratingToMsg(rt models.Rating) RatingMsg {
	msg := RatingMsg{
		ID:         rt.ID.String(),
		AuthorID:   rt.AuthorID.String(),
		AuthorName: rt.AuthorName,
		Score:      rt.Score,
		CreatedAt:  rt.CreatedAt,
	}
	if rt.Comment != nil {
		msg.Comment = *rt.Comment
	}
	return msg
}
