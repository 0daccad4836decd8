package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types published on the booking topic.
const (
	TypeBookingCreated = "booking.created"
	TypeBookingUpdated = "booking.updated"

	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

var ErrPublisherClosed = fmt.Errorf("publisher is closed")

// BookingEvent is the payload downstream consumers (the confirmation-email
// sender among them) receive whenever a booking record is created or changed.
type BookingEvent struct {
	BookingID    string    `json:"booking_id"`
	Reference    string    `json:"reference,omitempty"`
	RoomID       string    `json:"room_id"`
	RoomName     string    `json:"room_name"`
	GuestName    string    `json:"guest_name"`
	GuestEmail   string    `json:"guest_email"`
	CheckInDate  string    `json:"check_in_date"`
	CheckOutDate string    `json:"check_out_date"`
	Nights       int       `json:"nights"`
	TotalCost    float64   `json:"total_cost"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher writes booking events to Kafka, keyed by booking id so events for
// one booking stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
	source string

	mu     sync.RWMutex
	closed bool
}

func NewPublisher(brokers []string, topic, source string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
	}

	return &Publisher{writer: writer, source: source}, nil
}

func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload BookingEvent) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.NewString())},
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderSource, Value: []byte(p.source)},
		},
		Time: time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
