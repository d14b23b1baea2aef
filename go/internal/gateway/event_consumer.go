package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sushirush/go/internal/events"
	"github.com/mcdev12/sushirush/go/internal/outbox"
	"github.com/mcdev12/sushirush/go/internal/rooms"
)

// JetStreamConsumerConfig holds configuration for the JetStream consumer
type JetStreamConsumerConfig struct {
	URL               string
	StreamName        string
	SubjectFilter     string
	InactiveThreshold time.Duration
	MaxReconnects     int
	ReconnectWait     time.Duration
}

// DefaultJetStreamConsumerConfig returns default JetStream consumer configuration
func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	return JetStreamConsumerConfig{
		URL:               nats.DefaultURL,
		StreamName:        "ROOM_EVENTS",
		SubjectFilter:     "room.events.>",
		InactiveThreshold: 5 * time.Minute,
		MaxReconnects:     -1,
		ReconnectWait:     2 * time.Second,
	}
}

// Broadcaster delivers frames to topic subscribers
type Broadcaster interface {
	Broadcast(topic string, msg *Message)
	HasSubscribers(topic string) bool
}

// EventConsumer turns room events from JetStream into fresh snapshots for
// websocket subscribers. Every gateway instance gets its own ephemeral
// consumer starting at new messages, so each one sees every event.
type EventConsumer struct {
	broadcaster Broadcaster
	state       StateProvider
	clock       clockwork.Clock
	nc          *nats.Conn
	consumer    jetstream.Consumer
	config      JetStreamConsumerConfig
}

// NewEventConsumer connects to NATS and creates the ephemeral consumer
func NewEventConsumer(ctx context.Context, broadcaster Broadcaster, state StateProvider, clock clockwork.Clock, config JetStreamConsumerConfig) (*EventConsumer, error) {
	nc, err := outbox.ConnectNATS(config.URL, config.MaxReconnects, config.ReconnectWait)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	consumer, err := js.OrderedConsumer(ctx, config.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects:    []string{config.SubjectFilter},
		DeliverPolicy:     jetstream.DeliverNewPolicy,
		InactiveThreshold: config.InactiveThreshold,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	log.Info().
		Str("stream", config.StreamName).
		Str("filter", config.SubjectFilter).
		Msg("created ephemeral JetStream consumer")

	return &EventConsumer{
		broadcaster: broadcaster,
		state:       state,
		clock:       clock,
		nc:          nc,
		consumer:    consumer,
		config:      config,
	}, nil
}

// Start consumes events until ctx is cancelled
func (ec *EventConsumer) Start(ctx context.Context) error {
	log.Info().
		Str("stream", ec.config.StreamName).
		Msg("starting JetStream event consumer")

	messageCh := make(chan jetstream.Msg, 100)
	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case msg := <-messageCh:
			if err := ec.processMessage(ctx, msg.Data()); err != nil {
				log.Error().
					Err(err).
					Str("subject", msg.Subject()).
					Msg("failed to process message")
			}
		}
	}
}

func (ec *EventConsumer) processMessage(ctx context.Context, data []byte) error {
	var envelope outbox.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}
	return ec.HandleEnvelope(ctx, envelope)
}

// HandleEnvelope pushes the snapshots affected by one room event.
func (ec *EventConsumer) HandleEnvelope(ctx context.Context, envelope outbox.Envelope) error {
	if !events.Known(envelope.EventType) {
		log.Warn().
			Str("event_id", envelope.EventID).
			Str("event_type", envelope.EventType).
			Msg("skipping unknown event type")
		return nil
	}

	roomID, err := uuid.Parse(envelope.RoomID)
	if err != nil {
		return fmt.Errorf("parse room ID: %w", err)
	}

	log.Debug().
		Str("event_id", envelope.EventID).
		Str("room_id", envelope.RoomID).
		Str("event_type", envelope.EventType).
		Msg("processing room event")

	var errs []error
	if err := ec.pushRoom(ctx, roomID); err != nil {
		errs = append(errs, err)
	}
	if err := ec.pushDirectory(ctx); err != nil {
		errs = append(errs, err)
	}
	if envelope.EventType == events.GameFinished {
		if err := ec.pushGameFinished(ctx, roomID, envelope.Payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ec *EventConsumer) pushRoom(ctx context.Context, roomID uuid.UUID) error {
	topic := RoomTopic(roomID)
	if !ec.broadcaster.HasSubscribers(topic) {
		return nil
	}
	msg, err := ec.state.RoomSnapshot(ctx, roomID)
	if errors.Is(err, rooms.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	ec.broadcaster.Broadcast(topic, msg)
	return nil
}

func (ec *EventConsumer) pushDirectory(ctx context.Context) error {
	if !ec.broadcaster.HasSubscribers(DirectoryTopic) {
		return nil
	}
	msg, err := ec.state.DirectorySnapshot(ctx)
	if err != nil {
		return err
	}
	ec.broadcaster.Broadcast(DirectoryTopic, msg)
	return nil
}

// pushGameFinished announces the winner to the room and refreshes the
// leaderboard, which only changes when a game finishes.
func (ec *EventConsumer) pushGameFinished(ctx context.Context, roomID uuid.UUID, payload json.RawMessage) error {
	var finished events.GameFinishedPayload
	if err := json.Unmarshal(payload, &finished); err != nil {
		return fmt.Errorf("decode %s payload: %w", events.GameFinished, err)
	}

	topic := RoomTopic(roomID)
	if ec.broadcaster.HasSubscribers(topic) {
		msg, err := NewMessage(MessageGameFinished, topic, finished, ec.clock.Now())
		if err != nil {
			return err
		}
		ec.broadcaster.Broadcast(topic, msg)
	}

	if !ec.broadcaster.HasSubscribers(StatsTopic) {
		return nil
	}
	msg, err := ec.state.StatsSnapshot(ctx)
	if err != nil {
		return err
	}
	ec.broadcaster.Broadcast(StatsTopic, msg)
	return nil
}

// Stop closes the NATS connection
func (ec *EventConsumer) Stop() {
	log.Info().Msg("stopping event consumer")
	if ec.nc != nil {
		ec.nc.Close()
	}
}
