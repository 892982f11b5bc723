// Package events publishes import lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/segmentio/kafka-go"
)

// EventTypeImportCompleted is carried in the event-type header.
const EventTypeImportCompleted = "inventory.import.completed"

const publishTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements core.EventPublisher.
type KafkaPublisher struct {
	writer messageWriter
}

var _ core.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
		},
	}
}

// PublishImportCompleted writes one event keyed by tenant, so a tenant's
// imports stay ordered within a partition.
func (p *KafkaPublisher) PublishImportCompleted(ctx context.Context, event core.ImportCompleted) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write import %s event: %w", event.ImportID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(event core.ImportCompleted) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal import %s event: %w", event.ImportID, err)
	}
	return kafka.Message{
		Key:   []byte(event.TenantID),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventTypeImportCompleted)},
			{Key: "import-id", Value: []byte(event.ImportID)},
		},
	}, nil
}
