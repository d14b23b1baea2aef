package rooms

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/mcdev12/sushirush/go/internal/models"
)

const (
	QRRoute = "GET /rooms/{id}/qr.png"
	qrSize  = 320
)

// RoomGetter looks up one room
type RoomGetter interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
}

// ShareURL is the link other players open to join a room
func ShareURL(publicURL string, roomID uuid.UUID) string {
	return strings.TrimRight(publicURL, "/") + "/room/" + roomID.String()
}

// NewQRHandler serves a PNG QR code of a room's share link
func NewQRHandler(rooms RoomGetter, publicURL string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, "invalid room id", http.StatusBadRequest)
			return
		}

		room, err := rooms.GetRoom(r.Context(), roomID)
		if err != nil {
			if errors.Is(err, ErrRoomNotFound) {
				http.Error(w, "room not found", http.StatusNotFound)
				return
			}
			log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to load room for qr code")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !room.IsActive {
			http.Error(w, "room is closed", http.StatusGone)
			return
		}

		png, err := qrcode.Encode(ShareURL(publicURL, roomID), qrcode.Medium, qrSize)
		if err != nil {
			log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to encode qr code")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	})
}
