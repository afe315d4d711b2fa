package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/moviestack/moviestack/internal/movie/domain"
	"github.com/moviestack/moviestack/pkg/interfaces"
)

// Message is the wire form of a relayed event.
type Message struct {
	ID          string           `json:"id"`
	AggregateID string           `json:"aggregate_id"`
	EventType   string           `json:"event_type"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Data        interfaces.Event `json:"data"`
}

// Publisher relays movie events from the in-process bus to a Kafka topic,
// keyed by aggregate id so events for one movie stay ordered.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   interfaces.Logger
}

// NewPublisher creates a new Kafka event publisher
func NewPublisher(brokers []string, topic string, logger interfaces.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("creating producer: %w", err)
	}

	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// EventType identifies this handler on the bus.
func (p *Publisher) EventType() string {
	return "kafka-event-relay"
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

// Handle publishes the event to the configured topic.
func (p *Publisher) Handle(_ context.Context, event interfaces.Event) error {
	message := Message{
		ID:          uuid.New().String(),
		AggregateID: event.AggregateID(),
		EventType:   event.EventType(),
		OccurredAt:  time.Unix(0, event.Timestamp()).UTC(),
		Data:        event,
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.AggregateID()),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(event.EventType()),
			},
		},
	}

	if _, _, err := p.producer.SendMessage(kafkaMsg); err != nil {
		p.logger.Error("Failed to publish event to Kafka",
			interfaces.String("event_type", event.EventType()),
			interfaces.String("aggregate_id", event.AggregateID()),
			interfaces.Error(err))
		return fmt.Errorf("sending message: %w", err)
	}

	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	return p.producer.Close()
}
