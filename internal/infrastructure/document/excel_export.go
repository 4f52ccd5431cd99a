package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SPREADSHEET EXPORTS
// The front office hands these files to accountants, so amounts are written
// as plain numbers (no currency symbol) and every sheet carries a header row.
// ══════════════════════════════════════════════════════════════════════════════

// StudentExportRow is one line of the student export: the student with the
// derived totals already resolved.
type StudentExportRow struct {
	Student    *student.Student
	AmountPaid decimal.Decimal
	Balance    decimal.Decimal
}

// ExcelExporter writes .xlsx exports into the configured directory.
type ExcelExporter struct {
	cfg Config
}

// NewExcelExporter creates an exporter and ensures the output directory
// exists.
func NewExcelExporter(cfg Config) (*ExcelExporter, error) {
	if err := os.MkdirAll(cfg.ExportsDir, 0o755); err != nil {
		return nil, shared.WrapError("document", "Init", shared.ErrExternalService,
			fmt.Sprintf("cannot create output directory %s", cfg.ExportsDir), err)
	}
	return &ExcelExporter{cfg: cfg}, nil
}

// ExportStudents writes the full student roster with payment totals and
// returns the file path.
func (e *ExcelExporter) ExportStudents(ctx context.Context, rows []StudentExportRow) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", shared.WrapError("document", "ExportStudents", shared.ErrExternalService, "cancelled", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Students"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Reg Number", "Name", "Age", "Gender", "Programme", "Start Date",
		"Duration", "Schedule", "Programme Fee", "Amount Paid", "Balance",
		"Status", "Scholarship", "Registered",
	}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return "", wrapExportErr("ExportStudents", err)
	}

	for i, row := range rows {
		s := row.Student
		cells := []interface{}{
			string(s.RegNumber),
			s.Name,
			s.Age,
			s.Gender,
			s.Programme,
			s.StartDate,
			s.Duration,
			s.Schedule,
			s.ProgrammeFee.InexactFloat64(),
			row.AmountPaid.InexactFloat64(),
			row.Balance.InexactFloat64(),
			string(s.Status),
			s.Scholarship,
			timeutil.FormatDate(s.RegistrationDate),
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return "", wrapExportErr("ExportStudents", err)
		}
	}

	path := e.exportPath("students")
	if err := f.SaveAs(path); err != nil {
		return "", wrapExportErr("ExportStudents", err)
	}
	return path, nil
}

// ExportPayments writes the joined payment ledger and returns the file path.
func (e *ExcelExporter) ExportPayments(ctx context.Context, entries []payment.LedgerEntry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", shared.WrapError("document", "ExportPayments", shared.ErrExternalService, "cancelled", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Receipt Number", "Date", "Student", "Reg Number", "Programme", "Amount",
	}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return "", wrapExportErr("ExportPayments", err)
	}

	for i, entry := range entries {
		cells := []interface{}{
			string(entry.ReceiptNumber),
			timeutil.FormatDateTime(entry.PaymentDate),
			entry.StudentName,
			string(entry.RegNumber),
			entry.Programme,
			entry.Amount.InexactFloat64(),
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return "", wrapExportErr("ExportPayments", err)
		}
	}

	path := e.exportPath("payments")
	if err := f.SaveAs(path); err != nil {
		return "", wrapExportErr("ExportPayments", err)
	}
	return path, nil
}

// exportPath builds a timestamped filename so repeated exports never clobber
// each other.
func (e *ExcelExporter) exportPath(kind string) string {
	stamp := timeutil.Now().Format("20060102_150405")
	return filepath.Join(e.cfg.ExportsDir, fmt.Sprintf("%s_%s.xlsx", kind, stamp))
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []interface{}) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func wrapExportErr(op string, err error) error {
	return shared.WrapError("document", op, shared.ErrExternalService, "spreadsheet export failed", err)
}
