package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/wms-platform/fulfillment-service/pkg/kafka"
	"github.com/wms-platform/fulfillment-service/pkg/logging"

	"github.com/wms-platform/fulfillment-service/internal/domain"
)

// Topic names this service publishes to
const (
	TopicOrderEvents = "wms.fulfillment.orders.events"
	TopicWaveEvents  = "wms.fulfillment.waves.events"
)

// EventPublisher implements domain.EventPublisher on top of Kafka. Events
// are routed by type prefix: order events and wave events land on separate
// topics so downstream consumers subscribe to what they need.
type EventPublisher struct {
	producer *kafka.Producer
	logger   *logging.Logger
}

// NewEventPublisher creates a new EventPublisher
func NewEventPublisher(producer *kafka.Producer, logger *logging.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		logger:   logger,
	}
}

// Publish publishes a single domain event
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	topic := topicFor(event)

	msg := kafka.Message{
		Key:       event.AggregateID(),
		EventType: event.EventType(),
		Payload:   event,
		Time:      event.OccurredAt(),
	}
	if err := p.producer.Publish(ctx, topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType(), err)
	}

	p.logger.Debug("Published event", "eventType", event.EventType(), "topic", topic)
	return nil
}

// PublishAll publishes events in order, stopping at the first failure
func (p *EventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func topicFor(event domain.DomainEvent) string {
	if strings.HasPrefix(event.EventType(), "wms.wave.") {
		return TopicWaveEvents
	}
	return TopicOrderEvents
}
