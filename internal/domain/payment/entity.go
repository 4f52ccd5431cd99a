// Package payment contains the payment domain model: tuition payments,
// receipt numbering, and the receipt emitter contract.
package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// Payment is a single recorded tuition payment. Payments are immutable once
// created; the only mutation the ledger permits is deletion by id.
type Payment struct {
	PaymentID     int64
	RegNumber     student.RegNumber
	Amount        decimal.Decimal
	PaymentDate   time.Time
	ReceiptNumber ReceiptNumber
	Note          string
}

// Validate checks the payment before insertion.
func (p *Payment) Validate() error {
	if p.RegNumber == "" {
		return shared.NewDomainError("payment", "Validate", shared.ErrEmptyValue, "registration number is required")
	}
	if !shared.IsPositive(p.Amount) {
		return shared.ErrNonPositiveAmount
	}
	if p.ReceiptNumber == "" {
		return shared.NewDomainError("payment", "Validate", shared.ErrEmptyValue, "receipt number is required")
	}
	return nil
}

// HistoryEntry is one row of a student's payment history.
//
// RunningBalance is programme_fee minus the sum of amounts with payment_date
// <= this payment's date. It is recomputed on every read against the current
// fee - never stored - so editing the fee retroactively recomputes the
// balance column of old payments. That is deliberate ledger policy.
type HistoryEntry struct {
	PaymentID      int64
	Amount         decimal.Decimal
	PaymentDate    time.Time
	ReceiptNumber  ReceiptNumber
	Note           string
	RunningBalance decimal.Decimal
}

// LedgerEntry is a payment joined with its student, used by the payment
// records listing and the spreadsheet export.
type LedgerEntry struct {
	PaymentID     int64
	PaymentDate   time.Time
	StudentName   string
	RegNumber     student.RegNumber
	Programme     string
	Amount        decimal.Decimal
	ReceiptNumber ReceiptNumber
}

// ReceiptLookup is the result of resolving a receipt number back to its
// payment and student.
type ReceiptLookup struct {
	ReceiptNumber ReceiptNumber
	PaymentDate   time.Time
	Amount        decimal.Decimal
	RegNumber     student.RegNumber
	StudentName   string
}

// ListFilters narrows the joined payment listing. Zero values mean
// "no filter"; From/To bound the payment date inclusively.
type ListFilters struct {
	Programme string
	Search    string // matches student name or programme, case-insensitive
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}
