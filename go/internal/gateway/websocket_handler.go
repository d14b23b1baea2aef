package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sushirush/go/internal/auth"
	"github.com/mcdev12/sushirush/go/internal/rooms"
)

// WebSocketHandler authenticates subscribers and hands them to the
// connection manager with an initial snapshot.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	state             StateProvider
	authn             auth.Authenticator
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, state StateProvider, authn auth.Authenticator) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		state:             state,
		authn:             authn,
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/rooms", h.HandleDirectory)
	mux.HandleFunc("GET /ws/room", h.HandleRoom)
	mux.HandleFunc("GET /ws/stats", h.HandleStats)
	mux.HandleFunc("GET /ws/connections", h.HandleConnectionStats)
}

// HandleDirectory subscribes to the active room list.
func (h *WebSocketHandler) HandleDirectory(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	snapshot, err := h.state.DirectorySnapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to build directory snapshot")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.upgrade(w, r, identity, DirectoryTopic, snapshot)
}

// HandleRoom subscribes to one room, identified by the room_id query param.
func (h *WebSocketHandler) HandleRoom(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("room_id")
	if raw == "" {
		http.Error(w, "room_id is required", http.StatusBadRequest)
		return
	}
	roomID, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid room_id format", http.StatusBadRequest)
		return
	}

	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	snapshot, err := h.state.RoomSnapshot(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to build room snapshot")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.upgrade(w, r, identity, RoomTopic(roomID), snapshot)
}

// HandleStats subscribes to the leaderboard.
func (h *WebSocketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	snapshot, err := h.state.StatsSnapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to build stats snapshot")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.upgrade(w, r, identity, StatsTopic, snapshot)
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to write connection stats")
	}
}

// authenticate reads the session token from the token query param, since
// browsers cannot set headers on a websocket handshake. An Authorization
// header is accepted as well.
func (h *WebSocketHandler) authenticate(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = auth.BearerToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		http.Error(w, "token is required", http.StatusUnauthorized)
		return auth.Identity{}, false
	}

	identity, err := h.authn.Authenticate(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrSessionExpired),
			errors.Is(err, auth.ErrSessionNotFound):
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
		default:
			log.Error().Err(err).Msg("failed to authenticate websocket subscriber")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return auth.Identity{}, false
	}
	return identity, true
}

func (h *WebSocketHandler) upgrade(w http.ResponseWriter, r *http.Request, identity auth.Identity, topic string, snapshot *Message) {
	// The upgrader has already written an HTTP error on failure.
	if err := h.connectionManager.UpgradeConnection(w, r, identity.UserID.String(), topic, snapshot); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("user_id", identity.UserID.String()).
			Msg("failed to upgrade WebSocket connection")
	}
}
