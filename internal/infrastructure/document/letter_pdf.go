package document

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMISSION LETTER
// ══════════════════════════════════════════════════════════════════════════════

func newLetterPage() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	return pdf
}

// EmitAdmissionLetter renders the admission letter and returns its path.
func (e *PDFEmitter) EmitAdmissionLetter(ctx context.Context, snap payment.StudentSnapshot, startDate, duration, schedule string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", shared.WrapError("document", "EmitAdmissionLetter", shared.ErrExternalService, "cancelled", err)
	}

	pdf := newLetterPage()
	e.letterhead(pdf, "ADMISSION LETTER")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Date: "+timeutil.FormatDate(timeutil.Now()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Dear %s,", snap.Name), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	body := fmt.Sprintf(
		"Congratulations! We are pleased to offer you admission into the %s programme at %s. "+
			"Your registration number is %s. Please quote it in all correspondence and payments.",
		snap.Programme, titleCase(e.cfg.AcademyName), snap.RegNumber,
	)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(4)

	rows := [][2]string{
		{"Registration No.", string(snap.RegNumber)},
		{"Programme", snap.Programme},
		{"Programme Fee", moneyLine(snap.ProgrammeFee)},
	}
	if startDate != "" {
		rows = append(rows, [2]string{"Start Date", startDate})
	}
	if duration != "" {
		rows = append(rows, [2]string{"Duration", duration})
	}
	if schedule != "" {
		rows = append(rows, [2]string{"Schedule", schedule})
	}
	e.table(pdf, rows)

	pdf.Ln(8)
	pdf.MultiCell(0, 6,
		"Tuition may be paid in installments. A receipt is issued for every payment; "+
			"your outstanding balance is available from the front office at any time.",
		"", "L", false)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "We look forward to welcoming you.", "", 1, "L", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Registrar", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, e.cfg.AcademyName, "", 1, "L", false, 0, "")

	filename := fmt.Sprintf("admission_%s.pdf", sanitizeForFilename(string(snap.RegNumber)))
	path := filepath.Join(e.cfg.LettersDir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", shared.WrapError("document", "EmitAdmissionLetter", shared.ErrExternalService,
			fmt.Sprintf("cannot write %s", path), err)
	}

	return path, nil
}

func sanitizeForFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
