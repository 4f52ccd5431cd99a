// Package document renders the paper artifacts of the ledger: payment
// receipts, admission letters, and spreadsheet exports. Rendering failures
// are reported as shared.ErrDocumentGeneration and never undo the financial
// record the document describes.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds the output directories and the letterhead identity printed on
// every document.
type Config struct {
	// ReceiptsDir is where payment receipts are written.
	ReceiptsDir string

	// LettersDir is where admission letters are written.
	LettersDir string

	// ExportsDir is where spreadsheet exports are written.
	ExportsDir string

	// AcademyName is the letterhead title.
	AcademyName string

	// AcademyAddress is the letterhead address line.
	AcademyAddress string

	// AcademyPhone is the letterhead contact line.
	AcademyPhone string
}

// DefaultConfig returns the standard letterhead and relative output dirs.
func DefaultConfig() Config {
	return Config{
		ReceiptsDir:    "receipts",
		LettersDir:     "letters",
		ExportsDir:     "exports",
		AcademyName:    "IMPTECH TRAINING ACADEMY",
		AcademyAddress: "Lagos, Nigeria",
		AcademyPhone:   "info@imptech.academy",
	}
}

// moneyLine renders an amount for PDFs. The core PDF fonts cannot encode the
// naira sign, so documents carry the ISO code instead.
func moneyLine(d decimal.Decimal) string {
	return "NGN " + shared.GroupDigits(d.StringFixed(2))
}

// ══════════════════════════════════════════════════════════════════════════════
// RECEIPT EMITTER
// ══════════════════════════════════════════════════════════════════════════════

// PDFEmitter renders receipts and admission letters with gofpdf. It
// implements payment.ReceiptEmitter and payment.LetterEmitter.
type PDFEmitter struct {
	cfg Config
}

// NewPDFEmitter creates an emitter and ensures the output directories exist.
func NewPDFEmitter(cfg Config) (*PDFEmitter, error) {
	for _, dir := range []string{cfg.ReceiptsDir, cfg.LettersDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, shared.WrapError("document", "Init", shared.ErrExternalService,
				fmt.Sprintf("cannot create output directory %s", dir), err)
		}
	}
	return &PDFEmitter{cfg: cfg}, nil
}

// EmitReceipt renders the receipt document and returns its filesystem path.
func (e *PDFEmitter) EmitReceipt(ctx context.Context, data payment.ReceiptData, snap payment.StudentSnapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", shared.WrapError("document", "EmitReceipt", shared.ErrExternalService, "cancelled", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	e.letterhead(pdf, "PAYMENT RECEIPT")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, string(data.ReceiptNumber), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, timeutil.FormatDateTime(data.PaymentDate), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Student", snap.Name},
		{"Registration No.", string(snap.RegNumber)},
		{"Programme", snap.Programme},
		{"Programme Fee", moneyLine(snap.ProgrammeFee)},
		{"Amount Paid", moneyLine(data.Amount)},
	}
	// TotalPaid and Balance are omitted on the initial registration receipt.
	if data.TotalPaid != nil {
		rows = append(rows, [2]string{"Total Paid to Date", moneyLine(*data.TotalPaid)})
	}
	if data.Balance != nil {
		rows = append(rows, [2]string{"Outstanding Balance", moneyLine(*data.Balance)})
	}
	if data.Note != "" {
		rows = append(rows, [2]string{"Note", data.Note})
	}

	e.table(pdf, rows)

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for your payment. Keep this receipt for your records.", "", 1, "C", false, 0, "")

	path := filepath.Join(e.cfg.ReceiptsDir, fmt.Sprintf("receipt_%s.pdf", data.ReceiptNumber))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", shared.WrapError("document", "EmitReceipt", shared.ErrExternalService,
			fmt.Sprintf("cannot write %s", path), err)
	}

	return path, nil
}

// letterhead prints the academy header and a document title.
func (e *PDFEmitter) letterhead(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, e.cfg.AcademyName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, e.cfg.AcademyAddress, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, e.cfg.AcademyPhone, "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetDrawColor(60, 60, 60)
	x, y := pdf.GetXY()
	pdf.Line(20, y, 190, y)
	pdf.SetXY(x, y+4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)
}

// table prints label/value rows in a bordered two-column layout.
func (e *PDFEmitter) table(pdf *gofpdf.Fpdf, rows [][2]string) {
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(110, 8, row[1], "1", 1, "L", false, 0, "")
	}
}
