package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// RecordedEvent is published after a payment commits. The aggregate id is
// the receipt number.
type RecordedEvent struct {
	shared.BaseEvent
	RegNumber student.RegNumber
	Amount    decimal.Decimal
	Balance   decimal.Decimal
}

// NewRecordedEvent creates a RecordedEvent.
func NewRecordedEvent(p *Payment, balance decimal.Decimal) *RecordedEvent {
	return &RecordedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventPaymentRecorded, string(p.ReceiptNumber)),
		RegNumber: p.RegNumber,
		Amount:    p.Amount,
		Balance:   balance,
	}
}

// Payload implements shared.Event.
func (e *RecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"receipt_number": e.AggregateID(),
		"reg_number":     string(e.RegNumber),
		"amount":         e.Amount.String(),
		"balance":        e.Balance.String(),
	}
}

// DeletedEvent is published after a payment record is removed. The aggregate
// id is the payment id, the only identifier deletion requires.
type DeletedEvent struct {
	shared.BaseEvent
	PaymentID int64
}

// NewDeletedEvent creates a DeletedEvent.
func NewDeletedEvent(paymentID int64) *DeletedEvent {
	return &DeletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventPaymentDeleted, fmt.Sprintf("%d", paymentID)),
		PaymentID: paymentID,
	}
}

// Payload implements shared.Event.
func (e *DeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"payment_id": e.PaymentID,
	}
}
