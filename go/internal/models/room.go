package models

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxPlayersPerRoom is the default seat limit of a room.
const MaxPlayersPerRoom = 6

var (
	ErrRoomFull     = errors.New("room is full")
	ErrRoomInactive = errors.New("room is no longer active")
)

// Room represents a shared game session
type Room struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	IsActive  bool       `json:"is_active"`
	Players   []Player   `json:"players"`
	PhotoURL  *string    `json:"photo_url,omitempty"`
	Location  *string    `json:"location,omitempty"`
	Ratings   []Rating   `json:"ratings"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Player is a participant's running counter within one room
type Player struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	SushiCount int       `json:"sushi_count"`
	JoinedAt   time.Time `json:"joined_at"`
}

// Rating is a 1-5 score left on a room by one author
type Rating struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Score      int       `json:"score"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasPlayer reports whether playerID already holds a seat.
func (r *Room) HasPlayer(playerID uuid.UUID) bool {
	return r.FindPlayer(playerID) != nil
}

// FindPlayer returns the player with the given id, or nil.
func (r *Room) FindPlayer(playerID uuid.UUID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// CanJoin decides whether playerID may take a seat. A player who is already
// seated gets (false, nil): joining again is a no-op, not an error.
func (r *Room) CanJoin(playerID uuid.UUID, maxPlayers int) (bool, error) {
	if !r.IsActive {
		return false, ErrRoomInactive
	}
	if r.HasPlayer(playerID) {
		return false, nil
	}
	if len(r.Players) >= maxPlayers {
		return false, ErrRoomFull
	}
	return true, nil
}

// AverageRating is the mean score rounded to one decimal, 0 without ratings.
func (r *Room) AverageRating() float64 {
	if len(r.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, rt := range r.Ratings {
		sum += rt.Score
	}
	avg := float64(sum) / float64(len(r.Ratings))
	return math.Round(avg*10) / 10
}

// HasRated reports whether authorID already rated the room.
func (r *Room) HasRated(authorID uuid.UUID) bool {
	for _, rt := range r.Ratings {
		if rt.AuthorID == authorID {
			return true
		}
	}
	return false
}

// ClampCount keeps sushi counters non-negative.
func ClampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
