// Package events publishes task lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"task-tracker/models"
)

type Type string

const (
	TaskCreated    Type = "task.created"
	TaskUpdated    Type = "task.updated"
	TaskDeleted    Type = "task.deleted"
	TaskAssigned   Type = "task.assigned"
	TaskUnassigned Type = "task.unassigned"
)

type Event struct {
	Type       Type         `json:"type"`
	TaskID     uuid.UUID    `json:"taskId"`
	UserID     uuid.UUID    `json:"userId"`
	OccurredAt time.Time    `json:"occurredAt"`
	Task       *models.Task `json:"task,omitempty"`
	AssigneeID *uuid.UUID   `json:"assigneeId,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// messageWriter is implemented by *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

// Publish writes e keyed by task so all events of one task land on the same
// partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}

	msg := kafka.Message{
		Key:     []byte(e.TaskID.String()),
		Value:   value,
		Headers: []kafka.Header{{Key: "type", Value: []byte(e.Type)}},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// Discard drops every event; used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
