package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/sushirush/go/internal/models"
)

// Event types written to the room outbox and relayed to JetStream.
const (
	RoomCreated  = "RoomCreated"
	PlayerJoined = "PlayerJoined"
	PlayerLeft   = "PlayerLeft"
	CountUpdated = "CountUpdated"
	RoomClosed   = "RoomClosed"
	RoomUpdated  = "RoomUpdated"
	RatingAdded  = "RatingAdded"
	GameFinished = "GameFinished"
)

// Known reports whether eventType is one of the room event types.
func Known(eventType string) bool {
	switch eventType {
	case RoomCreated, PlayerJoined, PlayerLeft, CountUpdated, RoomClosed, RoomUpdated, RatingAdded, GameFinished:
		return true
	}
	return false
}

// RoomCreatedPayload is the payload for a RoomCreated event
type RoomCreatedPayload struct {
	RoomID    uuid.UUID `json:"room_id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerJoinedPayload is the payload for a PlayerJoined event
type PlayerJoinedPayload struct {
	RoomID   uuid.UUID `json:"room_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Seats    int       `json:"seats"`
	JoinedAt time.Time `json:"joined_at"`
}

// PlayerLeftPayload is the payload for a PlayerLeft event
type PlayerLeftPayload struct {
	RoomID    uuid.UUID `json:"room_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	Remaining int       `json:"remaining"`
	LeftAt    time.Time `json:"left_at"`
}

// CountUpdatedPayload is the payload for a CountUpdated event
type CountUpdatedPayload struct {
	RoomID     uuid.UUID `json:"room_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	SushiCount int       `json:"sushi_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RoomClosedPayload is the payload for a RoomClosed event
type RoomClosedPayload struct {
	RoomID   uuid.UUID `json:"room_id"`
	Reason   string    `json:"reason"`
	ClosedAt time.Time `json:"closed_at"`
}

// RoomUpdatedPayload is the payload for a RoomUpdated event
type RoomUpdatedPayload struct {
	RoomID    uuid.UUID `json:"room_id"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	Location  *string   `json:"location,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingAddedPayload is the payload for a RatingAdded event
type RatingAddedPayload struct {
	RoomID  uuid.UUID     `json:"room_id"`
	Rating  models.Rating `json:"rating"`
	Average float64       `json:"average"`
}

// GameFinishedPayload is the payload for a GameFinished event
type GameFinishedPayload struct {
	RoomID      uuid.UUID `json:"room_id"`
	GameID      uuid.UUID `json:"game_id"`
	WinnerID    uuid.UUID `json:"winner_id"`
	WinnerName  string    `json:"winner_name"`
	WinnerCount int       `json:"winner_count"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Close reasons carried by RoomClosedPayload.
const (
	ReasonClosedByCreator = "closed_by_creator"
	ReasonEmpty           = "empty"
	ReasonGameFinished    = "game_finished"
	ReasonAbandoned       = "abandoned"
)
