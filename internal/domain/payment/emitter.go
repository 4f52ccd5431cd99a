package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECEIPT EMITTER CONTRACT
// The emitter is an external collaborator: given a committed payment
// snapshot it produces a durable document and returns its path. A failure
// here is reported as shared.ErrDocumentGeneration and never rolls back the
// payment - the financial record always wins.
// ══════════════════════════════════════════════════════════════════════════════

// ReceiptData is the payment snapshot handed to the emitter. TotalPaid and
// Balance are present for regular payments so the document is
// self-describing; they are nil for the initial payment taken at
// registration, where only the single amount is shown.
type ReceiptData struct {
	ReceiptNumber ReceiptNumber
	PaymentDate   time.Time
	Amount        decimal.Decimal
	TotalPaid     *decimal.Decimal
	Balance       *decimal.Decimal
	Note          string
}

// StudentSnapshot is the student block printed on documents.
type StudentSnapshot struct {
	RegNumber    student.RegNumber
	Name         string
	Programme    string
	ProgrammeFee decimal.Decimal
}

// ReceiptEmitter produces payment receipts.
type ReceiptEmitter interface {
	// EmitReceipt renders the receipt document and returns its filesystem path.
	EmitReceipt(ctx context.Context, data ReceiptData, snap StudentSnapshot) (string, error)
}

// LetterEmitter produces admission letters at registration time.
type LetterEmitter interface {
	// EmitAdmissionLetter renders the admission letter and returns its path.
	EmitAdmissionLetter(ctx context.Context, snap StudentSnapshot, startDate, duration, schedule string) (string, error)
}
