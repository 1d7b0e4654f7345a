package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Config holds Kafka producer configuration
type Config struct {
	Brokers      []string
	ClientID     string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig(clientID string) *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     clientID,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// Message is one event envelope published to a topic
type Message struct {
	Key       string
	EventType string
	Payload   any
	Time      time.Time
}

// Producer handles publishing messages to Kafka topics, keeping one writer
// per topic
type Producer struct {
	mu      sync.Mutex
	writers map[string]*kafka.Writer
	config  *Config
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config) *Producer {
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		config:  config,
	}
}

func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

// Publish serializes the payload as JSON and writes it to the topic. The
// event type travels in a header so consumers can route without decoding.
func (p *Producer) Publish(ctx context.Context, topic string, msg Message) error {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ts := msg.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: data,
		Time:  ts,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(msg.EventType)},
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "producer", Value: []byte(p.config.ClientID)},
		},
	}

	if err := p.getWriter(topic).WriteMessages(ctx, kafkaMsg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close closes all topic writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer for %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return firstErr
}
