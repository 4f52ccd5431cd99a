package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event records something significant that happened
// in the ledger; subscribers react with cache invalidation, notifications,
// and audit logging.
const (
	// Student events
	EventStudentRegistered    EventType = "student.registered"
	EventStudentUpdated       EventType = "student.updated"
	EventStudentStatusChanged EventType = "student.status_changed"
	EventStudentDeleted       EventType = "student.deleted"

	// Payment events
	EventPaymentRecorded EventType = "payment.recorded"
	EventPaymentDeleted  EventType = "payment.deleted"

	// Document events
	EventDocumentGenerated EventType = "document.generated"
	EventDocumentFailed    EventType = "document.failed"

	// Notification events
	EventReminderCreated EventType = "notification.reminder_created"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	// For ledger events this is the student registration number; for payment
	// events the receipt number.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single event. Handlers must be safe for
// concurrent use; the bus may dispatch from multiple goroutines.
type EventHandler func(ctx context.Context, event Event) error

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event with a fresh correlation ID.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		AggregateId:   aggregateID,
		CorrelationID: uuid.NewString(),
	}
}

// DocumentEvent reports a document rendering outcome. Kind names the
// document ("receipt", "admission letter"); the aggregate id is the receipt
// or registration number it belongs to.
type DocumentEvent struct {
	BaseEvent
	Kind string
}

// NewDocumentGeneratedEvent creates a success event.
func NewDocumentGeneratedEvent(kind, id string) *DocumentEvent {
	return &DocumentEvent{
		BaseEvent: NewBaseEvent(EventDocumentGenerated, id),
		Kind:      kind,
	}
}

// NewDocumentFailedEvent creates a failure event.
func NewDocumentFailedEvent(kind, id string) *DocumentEvent {
	return &DocumentEvent{
		BaseEvent: NewBaseEvent(EventDocumentFailed, id),
		Kind:      kind,
	}
}

// Payload implements Event.
func (e *DocumentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"kind": e.Kind,
		"id":   e.AggregateID(),
	}
}

// EventPublisher publishes domain events. The ledger service depends on this
// interface; the messaging package provides the in-process implementation.
type EventPublisher interface {
	Publish(event Event)
}

// NopPublisher discards all events. Used in tests and when the bus is
// disabled.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) {}
