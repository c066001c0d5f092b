// Package events publishes reservation lifecycle events to Kafka. Messages
// are CloudEvent envelopes keyed by reservation id so all events for one
// reservation land on the same partition in order.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TopicReservationEvents carries reservation.created, reservation.modified
// and reservation.cancelled.
const TopicReservationEvents = "reservation.events"

const eventSource = "service-booking"

// CloudEvent is the envelope every message on the reservation topic carries.
type CloudEvent struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	SpecVersion string          `json:"specversion"`
	Type        string          `json:"type"`
	Time        time.Time       `json:"time"`
	Data        json.RawMessage `json:"data"`
}

// ParseCloudEvent decodes a raw Kafka message value into a CloudEvent.
func ParseCloudEvent(raw []byte) (CloudEvent, error) {
	var ce CloudEvent
	if err := json.Unmarshal(raw, &ce); err != nil {
		return CloudEvent{}, err
	}
	return ce, nil
}

// ParseData decodes the event payload into v.
func (ce CloudEvent) ParseData(v any) error {
	return json.Unmarshal(ce.Data, v)
}

// Producer writes reservation events. It satisfies the booking workflow's
// publisher contract; publish failures are the caller's to log, never to
// fail the booking on.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a producer for the reservation topic.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  TopicReservationEvents,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, logger: logger}
}

// Publish wraps data in a CloudEvent envelope and writes it keyed by key.
func (p *Producer) Publish(ctx context.Context, eventType, key string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope := CloudEvent{
		ID:          uuid.NewString(),
		Source:      eventSource,
		SpecVersion: "1.0",
		Type:        eventType,
		Time:        time.Now().UTC(),
		Data:        payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
	})
}

// Close closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
