package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topics a connection can subscribe to. Room topics are the room id.
const (
	DirectoryTopic = "directory"
	StatsTopic     = "stats"
)

// MessageType identifies the shape of Message.Data
type MessageType string

const (
	MessageDirectorySnapshot MessageType = "directory.snapshot"
	MessageRoomSnapshot      MessageType = "room.snapshot"
	MessageRoomClosed        MessageType = "room.closed"
	MessageStatsSnapshot     MessageType = "stats.snapshot"
	MessageGameFinished      MessageType = "game.finished"
)

// Message is the JSON frame pushed to websocket clients
type Message struct {
	Type      MessageType     `json:"type"`
	Topic     string          `json:"topic"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// RoomTopic returns the topic carrying snapshots of a single room.
func RoomTopic(roomID uuid.UUID) string {
	return roomID.String()
}

// NewMessage marshals data into a frame for topic.
func NewMessage(msgType MessageType, topic string, data any, now time.Time) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s data: %w", msgType, err)
	}
	return &Message{
		Type:      msgType,
		Topic:     topic,
		Timestamp: now.UTC(),
		Data:      raw,
	}, nil
}
