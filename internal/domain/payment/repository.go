package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/student"
)

// Repository defines the payment persistence contract.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Insert stores a new payment.
	// Returns shared.ErrDuplicateReceipt when the receipt number is taken and
	// shared.ErrStudentNotFound when the registration number does not exist.
	Insert(ctx context.Context, p *Payment) error

	// TotalPaid returns the sum of a student's payment amounts; zero when the
	// student has no payments. It does not distinguish "student absent" from
	// "student without payments" - callers needing that check existence first.
	TotalPaid(ctx context.Context, reg student.RegNumber) (decimal.Decimal, error)

	// History returns the student's payments newest first, each with its
	// running balance recomputed against the current programme fee.
	History(ctx context.Context, reg student.RegNumber) ([]HistoryEntry, error)

	// List returns payments joined with students, newest first.
	List(ctx context.Context, f ListFilters) ([]LedgerEntry, error)

	// LookupReceipt resolves a receipt number to its payment and student.
	// Returns shared.ErrPaymentNotFound if absent.
	LookupReceipt(ctx context.Context, rcpt ReceiptNumber) (*ReceiptLookup, error)

	// Delete removes a single payment by id. No other record is touched:
	// balances are derived, so nothing needs recomputing.
	// Returns shared.ErrPaymentNotFound if absent.
	Delete(ctx context.Context, paymentID int64) error

	// MaxReceiptNumber returns the highest receipt number with the given day
	// prefix, or "" when none exists. Used by the identifier generator.
	MaxReceiptNumber(ctx context.Context, dayPrefix string) (ReceiptNumber, error)
}
