package rooms

import (
	"github.com/google/uuid"
	"github.com/mcdev12/sushirush/go/internal/models"
)

// Config holds the room rules
type Config struct {
	MaxPlayers int
}

// CreateRoomRequest represents the data needed to create a new room
type CreateRoomRequest struct {
	Name      string
	CreatedBy uuid.UUID
	PhotoURL  *string
	Location  *string

	// CreatorName, when set, seats the creator in the same transaction.
	CreatorName string
}

// JoinRoomRequest identifies the player taking a seat
type JoinRoomRequest struct {
	PlayerID uuid.UUID
	Name     string
}

// JoinResult reports the room after a join. Joined is false when the player
// was already seated.
type JoinResult struct {
	Room   *models.Room
	Joined bool
}

// LeaveResult reports how many players remain and whether leaving closed the room.
type LeaveResult struct {
	Remaining int
	Closed    bool
}

type AddRatingRequest struct {
	AuthorID   uuid.UUID
	AuthorName string
	Score      int
	Comment    *string
}

// UpdateRoomDetailsRequest changes the optional room details. A nil field is
// left untouched; an empty string clears it.
type UpdateRoomDetailsRequest struct {
	PhotoURL *string
	Location *string
}
