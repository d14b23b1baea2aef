package games

import (
	"errors"

	"github.com/mcdev12/sushirush/go/internal/rooms"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrNoPlayers      = errors.New("cannot finish a game without players")
	ErrInvalidCount   = errors.New("sushi count must be positive")
	ErrRoomNotFound   = rooms.ErrRoomNotFound
	ErrRoomInactive   = rooms.ErrRoomInactive
	ErrNotRoomCreator = rooms.ErrNotRoomCreator
)
