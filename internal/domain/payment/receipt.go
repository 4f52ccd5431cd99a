package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imptech/academy-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECEIPT NUMBER GENERATION
// Format: RCP-<YYYYMMDD>-<Serial>
// The 4-digit serial is scoped to the calendar day and resets at midnight:
// the first receipt of a new day is RCP-<newdate>-0001 regardless of where
// the previous day ended.
// ══════════════════════════════════════════════════════════════════════════════

// receiptPrefix tags every receipt number.
const receiptPrefix = "RCP"

// receiptSerialWidth is the zero-padding of the daily serial.
const receiptSerialWidth = 4

// ReceiptNumber is the unique human-readable payment identifier.
type ReceiptNumber string

// String returns the string representation.
func (r ReceiptNumber) String() string {
	return string(r)
}

// IsValid reports whether the receipt number parses.
func (r ReceiptNumber) IsValid() bool {
	_, err := ParseReceiptNumber(string(r))
	return err == nil
}

// DayPrefix returns the shared prefix of all receipt numbers issued on the
// given day, e.g. "RCP-20250828-".
func DayPrefix(day time.Time) string {
	return fmt.Sprintf("%s-%s-", receiptPrefix, day.Format("20060102"))
}

// BuildReceiptNumber assembles a full receipt number.
func BuildReceiptNumber(day time.Time, serial int) ReceiptNumber {
	return ReceiptNumber(fmt.Sprintf("%s-%s-%0*d", receiptPrefix, day.Format("20060102"), receiptSerialWidth, serial))
}

// NextReceiptNumber computes the successor of the highest receipt number
// issued on day. last is empty when no receipt exists yet for that day; the
// serial then starts at 0001.
func NextReceiptNumber(day time.Time, last ReceiptNumber) (ReceiptNumber, error) {
	if last == "" {
		return BuildReceiptNumber(day, 1), nil
	}

	parsed, err := ParseReceiptNumber(string(last))
	if err != nil {
		return "", err
	}
	return BuildReceiptNumber(day, parsed.Serial+1), nil
}

// ParsedReceiptNumber is the decomposed form of a receipt number.
type ParsedReceiptNumber struct {
	Day    time.Time
	Serial int
}

// ParseReceiptNumber splits RCP-<YYYYMMDD>-<serial> into its parts.
func ParseReceiptNumber(s string) (ParsedReceiptNumber, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] != receiptPrefix {
		return ParsedReceiptNumber{}, shared.NewDomainError("payment", "ParseReceiptNumber", shared.ErrInvalidFormat,
			fmt.Sprintf("malformed receipt number %q", s))
	}

	day, err := time.Parse("20060102", parts[1])
	if err != nil {
		return ParsedReceiptNumber{}, shared.WrapError("payment", "ParseReceiptNumber", shared.ErrInvalidFormat,
			"receipt date segment is not YYYYMMDD", err)
	}

	serial, err := strconv.Atoi(parts[2])
	if err != nil || serial <= 0 {
		return ParsedReceiptNumber{}, shared.NewDomainError("payment", "ParseReceiptNumber", shared.ErrInvalidFormat,
			fmt.Sprintf("receipt serial %q is not a positive number", parts[2]))
	}

	return ParsedReceiptNumber{Day: day, Serial: serial}, nil
}
