package games

import (
	"github.com/google/uuid"
	"github.com/mcdev12/sushirush/go/internal/models"
)

// FinishGameRequest identifies the room to finish and who asked
type FinishGameRequest struct {
	RoomID      uuid.UUID
	RequestedBy uuid.UUID
}

// FinishResult carries the stored result. Replayed is true when the room had
// already been finished and nothing was written.
type FinishResult struct {
	Result   *models.GameResult
	Replayed bool
}
