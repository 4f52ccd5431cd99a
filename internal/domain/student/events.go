package student

import (
	"github.com/imptech/academy-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// RegisteredEvent is published after a student registration commits.
type RegisteredEvent struct {
	shared.BaseEvent
	Name        string
	Programme   string
	WithPayment bool
}

// NewRegisteredEvent creates a RegisteredEvent.
func NewRegisteredEvent(s *Student, withPayment bool) *RegisteredEvent {
	return &RegisteredEvent{
		BaseEvent:   shared.NewBaseEvent(shared.EventStudentRegistered, string(s.RegNumber)),
		Name:        s.Name,
		Programme:   s.Programme,
		WithPayment: withPayment,
	}
}

// Payload implements shared.Event.
func (e *RegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"reg_number":   e.AggregateID(),
		"name":         e.Name,
		"programme":    e.Programme,
		"with_payment": e.WithPayment,
	}
}

// UpdatedEvent is published after a partial student update commits.
type UpdatedEvent struct {
	shared.BaseEvent
	Fields []string
}

// NewUpdatedEvent creates an UpdatedEvent listing the changed fields.
func NewUpdatedEvent(reg RegNumber, updates Updates) *UpdatedEvent {
	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, string(f))
	}
	return &UpdatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventStudentUpdated, string(reg)),
		Fields:    fields,
	}
}

// Payload implements shared.Event.
func (e *UpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"reg_number": e.AggregateID(),
		"fields":     e.Fields,
	}
}

// StatusChangedEvent is published when a student's enrollment status changes.
type StatusChangedEvent struct {
	shared.BaseEvent
	OldStatus Status
	NewStatus Status
}

// NewStatusChangedEvent creates a StatusChangedEvent.
func NewStatusChangedEvent(reg RegNumber, oldStatus, newStatus Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventStudentStatusChanged, string(reg)),
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

// Payload implements shared.Event.
func (e *StatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"reg_number": e.AggregateID(),
		"old_status": string(e.OldStatus),
		"new_status": string(e.NewStatus),
	}
}

// DeletedEvent is published after a student and their payments are removed.
type DeletedEvent struct {
	shared.BaseEvent
	PaymentsRemoved int
}

// NewDeletedEvent creates a DeletedEvent.
func NewDeletedEvent(reg RegNumber, paymentsRemoved int) *DeletedEvent {
	return &DeletedEvent{
		BaseEvent:       shared.NewBaseEvent(shared.EventStudentDeleted, string(reg)),
		PaymentsRemoved: paymentsRemoved,
	}
}

// Payload implements shared.Event.
func (e *DeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"reg_number":       e.AggregateID(),
		"payments_removed": e.PaymentsRemoved,
	}
}
