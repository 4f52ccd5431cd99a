// Package notification contains stored in-app notifications: payment
// reminders and registration notices surfaced to the academy staff. There is
// no outbound delivery channel; notifications are records the front office
// reads and marks off.
package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// Type classifies a notification.
type Type string

const (
	// TypePaymentReminder - a student has an outstanding balance.
	TypePaymentReminder Type = "payment_reminder"
	// TypeRegistration - a new student was registered.
	TypeRegistration Type = "registration"
)

// IsValid reports whether the type is known.
func (t Type) IsValid() bool {
	return t == TypePaymentReminder || t == TypeRegistration
}

// Notification is a stored message about a student.
type Notification struct {
	ID        string
	RegNumber student.RegNumber
	Message   string
	Type      Type
	CreatedAt time.Time
	Read      bool
}

// New creates a notification with a fresh id.
func New(reg student.RegNumber, typ Type, message string) (*Notification, error) {
	if reg == "" {
		return nil, shared.NewDomainError("notification", "New", shared.ErrEmptyValue, "registration number is required")
	}
	if message == "" {
		return nil, shared.NewDomainError("notification", "New", shared.ErrEmptyValue, "message is required")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidInput, "unknown notification type")
	}

	return &Notification{
		ID:        uuid.NewString(),
		RegNumber: reg,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
		Read:      false,
	}, nil
}
