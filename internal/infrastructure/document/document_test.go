package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/student"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	base := t.TempDir()

	cfg := DefaultConfig()
	cfg.ReceiptsDir = filepath.Join(base, "receipts")
	cfg.LettersDir = filepath.Join(base, "letters")
	cfg.ExportsDir = filepath.Join(base, "exports")
	return cfg
}

func testSnapshot() payment.StudentSnapshot {
	return payment.StudentSnapshot{
		RegNumber:    "IMPTECH-WD-2025-001",
		Name:         "Adaeze Obi",
		Programme:    "Web Development",
		ProgrammeFee: decimal.NewFromInt(150000),
	}
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	assert.NoError(t, err)
	if err == nil {
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestEmitReceipt(t *testing.T) {
	emitter, err := NewPDFEmitter(testConfig(t))
	assert.NoError(t, err)

	total := decimal.NewFromInt(50000)
	balance := decimal.NewFromInt(100000)
	data := payment.ReceiptData{
		ReceiptNumber: "RCP-20250828-0001",
		PaymentDate:   time.Date(2025, 8, 28, 10, 0, 0, 0, timeutil.LagosTZ),
		Amount:        decimal.NewFromInt(50000),
		TotalPaid:     &total,
		Balance:       &balance,
		Note:          "first installment",
	}

	path, err := emitter.EmitReceipt(context.Background(), data, testSnapshot())
	assert.NoError(t, err)
	assert.Equal(t, "receipt_RCP-20250828-0001.pdf", filepath.Base(path))
	assertNonEmptyFile(t, path)
}

func TestEmitReceiptWithoutTotals(t *testing.T) {
	emitter, err := NewPDFEmitter(testConfig(t))
	assert.NoError(t, err)

	// Initial registration receipt: no running totals yet.
	data := payment.ReceiptData{
		ReceiptNumber: "RCP-20250828-0002",
		PaymentDate:   time.Date(2025, 8, 28, 10, 0, 0, 0, timeutil.LagosTZ),
		Amount:        decimal.NewFromInt(50000),
	}

	path, err := emitter.EmitReceipt(context.Background(), data, testSnapshot())
	assert.NoError(t, err)
	assertNonEmptyFile(t, path)
}

func TestEmitReceiptRespectsCancelledContext(t *testing.T) {
	emitter, err := NewPDFEmitter(testConfig(t))
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = emitter.EmitReceipt(ctx, payment.ReceiptData{ReceiptNumber: "RCP-20250828-0001"}, testSnapshot())
	assert.Error(t, err)
}

func TestEmitAdmissionLetter(t *testing.T) {
	emitter, err := NewPDFEmitter(testConfig(t))
	assert.NoError(t, err)

	path, err := emitter.EmitAdmissionLetter(context.Background(), testSnapshot(),
		"2025-09-01", "6 months", "Weekdays (Morning)")
	assert.NoError(t, err)
	assert.Equal(t, "admission_IMPTECH-WD-2025-001.pdf", filepath.Base(path))
	assertNonEmptyFile(t, path)
}

func TestExportStudents(t *testing.T) {
	exporter, err := NewExcelExporter(testConfig(t))
	assert.NoError(t, err)

	st := &student.Student{
		RegNumber:        "IMPTECH-WD-2025-001",
		Name:             "Adaeze Obi",
		Age:              24,
		Gender:           "Female",
		Programme:        "Web Development",
		StartDate:        "2025-09-01",
		Duration:         "6 months",
		Schedule:         "Weekdays (Morning)",
		ProgrammeFee:     decimal.NewFromInt(150000),
		RegistrationDate: time.Date(2025, 8, 28, 10, 0, 0, 0, timeutil.LagosTZ),
		Status:           student.StatusActive,
	}

	path, err := exporter.ExportStudents(context.Background(), []StudentExportRow{{
		Student:    st,
		AmountPaid: decimal.NewFromInt(50000),
		Balance:    decimal.NewFromInt(100000),
	}})
	assert.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))
	assertNonEmptyFile(t, path)
}

func TestExportPayments(t *testing.T) {
	exporter, err := NewExcelExporter(testConfig(t))
	assert.NoError(t, err)

	entries := []payment.LedgerEntry{{
		PaymentID:     1,
		PaymentDate:   time.Date(2025, 8, 28, 10, 0, 0, 0, timeutil.LagosTZ),
		StudentName:   "Adaeze Obi",
		RegNumber:     "IMPTECH-WD-2025-001",
		Programme:     "Web Development",
		Amount:        decimal.NewFromInt(50000),
		ReceiptNumber: "RCP-20250828-0001",
	}}

	path, err := exporter.ExportPayments(context.Background(), entries)
	assert.NoError(t, err)
	assertNonEmptyFile(t, path)
}

func TestSanitizeForFilename(t *testing.T) {
	assert.Equal(t, "IMPTECH-WD-2025-001", sanitizeForFilename("IMPTECH-WD-2025-001"))
	assert.Equal(t, "a_b_c", sanitizeForFilename("a/b c"))
}

func TestMoneyLine(t *testing.T) {
	assert.Equal(t, "NGN 150,000.00", moneyLine(decimal.NewFromInt(150000)))
}
