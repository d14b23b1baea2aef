package rooms

import (
	"errors"

	"github.com/mcdev12/sushirush/go/internal/models"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = models.ErrRoomFull
	ErrRoomInactive    = models.ErrRoomInactive
	ErrInvalidRoomName = errors.New("room name is required")
	ErrInvalidPlayer   = errors.New("player id and name are required")
	ErrPlayerNotInRoom = errors.New("player is not in this room")
	ErrNotRoomCreator  = errors.New("only the room creator can do this")
	ErrInvalidScore    = errors.New("rating score must be between 1 and 5")
	ErrAlreadyRated    = errors.New("room already rated by this user")
	ErrInvalidCount    = errors.New("sushi count is out of range")
)
