package notification

import (
	"github.com/imptech/academy-ledger/internal/domain/shared"
)

// ReminderCreatedEvent is published when a payment reminder is stored.
type ReminderCreatedEvent struct {
	shared.BaseEvent
	NotificationID string
}

// NewReminderCreatedEvent creates a ReminderCreatedEvent.
func NewReminderCreatedEvent(n *Notification) *ReminderCreatedEvent {
	return &ReminderCreatedEvent{
		BaseEvent:      shared.NewBaseEvent(shared.EventReminderCreated, string(n.RegNumber)),
		NotificationID: n.ID,
	}
}

// Payload implements shared.Event.
func (e *ReminderCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"reg_number":      e.AggregateID(),
		"notification_id": e.NotificationID,
	}
}
