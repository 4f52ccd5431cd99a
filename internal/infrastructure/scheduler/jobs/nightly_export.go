package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// NIGHTLY EXPORT JOB
// ══════════════════════════════════════════════════════════════════════════════

// LedgerExporter writes the roster and payment ledger spreadsheets and
// returns the file paths.
type LedgerExporter interface {
	ExportStudents(ctx context.Context, f student.Filters) (string, error)
	ExportPayments(ctx context.Context, f payment.ListFilters) (string, error)
}

// NightlyExportJob writes a full roster and payment ledger spreadsheet once
// a day, so the front office always has a fresh offline copy of the books.
type NightlyExportJob struct {
	exporter LedgerExporter
	logger   *slog.Logger
	timeout  time.Duration
}

// NewNightlyExportJob creates the job. A non-positive timeout defaults to
// five minutes.
func NewNightlyExportJob(exporter LedgerExporter, logger *slog.Logger, timeout time.Duration) *NightlyExportJob {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &NightlyExportJob{
		exporter: exporter,
		logger:   logger,
		timeout:  timeout,
	}
}

// Name returns the job name.
func (j *NightlyExportJob) Name() string {
	return "nightly_export"
}

// Description returns a human-readable description.
func (j *NightlyExportJob) Description() string {
	return "Writes the full roster and payment ledger spreadsheets"
}

// Run writes both exports. Unfiltered: the nightly copy is a full snapshot.
func (j *NightlyExportJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	studentsPath, err := j.exporter.ExportStudents(ctx, student.Filters{})
	if err != nil {
		return fmt.Errorf("failed to export students: %w", err)
	}

	paymentsPath, err := j.exporter.ExportPayments(ctx, payment.ListFilters{})
	if err != nil {
		return fmt.Errorf("failed to export payments: %w", err)
	}

	j.logger.Info("nightly export completed",
		"students", studentsPath,
		"payments", paymentsPath,
	)

	return nil
}
