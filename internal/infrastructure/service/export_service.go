package service

import (
	"context"
	"log/slog"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/student"
	"github.com/imptech/academy-ledger/internal/infrastructure/document"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// ExportService produces spreadsheet exports of the ledger.
type ExportService struct {
	store    Store
	exporter *document.ExcelExporter
	logger   *slog.Logger
}

// NewExportService creates an ExportService.
func NewExportService(store Store, exporter *document.ExcelExporter, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		store:    store,
		exporter: exporter,
		logger:   logger,
	}
}

// ExportStudents writes the student roster matching the filters, with total
// paid and balance resolved per student, and returns the file path. Roster
// and totals come from one snapshot read.
func (s *ExportService) ExportStudents(ctx context.Context, f student.Filters) (string, error) {
	students, totals, err := s.store.StudentTotals(ctx, f)
	if err != nil {
		return "", err
	}

	rows := make([]document.StudentExportRow, 0, len(students))
	for _, st := range students {
		total := totals[st.RegNumber]
		rows = append(rows, document.StudentExportRow{
			Student:    st,
			AmountPaid: total,
			Balance:    st.Balance(total),
		})
	}

	path, err := s.exporter.ExportStudents(ctx, rows)
	if err != nil {
		return "", err
	}

	s.logger.Info("students exported", "count", len(rows), "path", path)
	return path, nil
}

// ExportPayments writes the joined payment ledger matching the filters and
// returns the file path.
func (s *ExportService) ExportPayments(ctx context.Context, f payment.ListFilters) (string, error) {
	entries, err := s.store.Payments().List(ctx, f)
	if err != nil {
		return "", err
	}

	path, err := s.exporter.ExportPayments(ctx, entries)
	if err != nil {
		return "", err
	}

	s.logger.Info("payments exported", "count", len(entries), "path", path)
	return path, nil
}
