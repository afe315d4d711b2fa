package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/moviestack/moviestack/internal/movie/domain"
	"github.com/moviestack/moviestack/pkg/interfaces"
)

// EventEnvelope wraps an event with metadata for transport
type EventEnvelope struct {
	ID          string           `json:"id"`
	AggregateID string           `json:"aggregate_id"`
	EventType   string           `json:"event_type"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Data        interfaces.Event `json:"data"`
}

// Publisher relays movie events from the in-process bus to NATS JetStream.
// Relay failures are logged and dropped; downstream consumers are not part
// of the write path.
type Publisher struct {
	client *Client
	logger interfaces.Logger
}

// NewPublisher creates a new NATS event publisher
func NewPublisher(client *Client, logger interfaces.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger,
	}
}

// EventType identifies this handler on the bus.
func (p *Publisher) EventType() string {
	return "nats-event-relay"
}

// Register subscribes the relay to every movie event type.
func (p *Publisher) Register(bus interfaces.EventBus) error {
	for _, eventType := range []string{
		domain.EventMovieCreated,
		domain.EventMovieUpdated,
		domain.EventMovieDeleted,
		domain.EventMovieLiked,
		domain.EventMovieUnliked,
	} {
		if err := bus.Subscribe(eventType, p); err != nil {
			return err
		}
	}
	return nil
}

// Handle publishes the event to JetStream under its event type as subject.
func (p *Publisher) Handle(ctx context.Context, event interfaces.Event) error {
	envelope := EventEnvelope{
		ID:          uuid.New().String(),
		AggregateID: event.AggregateID(),
		EventType:   event.EventType(),
		OccurredAt:  time.Unix(0, event.Timestamp()).UTC(),
		Data:        event,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ack, err := p.client.JetStream().Publish(pubCtx, event.EventType(), data,
		jetstream.WithMsgID(envelope.ID))
	if err != nil {
		p.logger.Error("Failed to publish event to NATS",
			interfaces.String("event_type", event.EventType()),
			interfaces.String("aggregate_id", event.AggregateID()),
			interfaces.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published to NATS",
		interfaces.String("event_type", event.EventType()),
		interfaces.String("stream", ack.Stream),
		interfaces.Int64("sequence", int64(ack.Sequence)))

	return nil
}
