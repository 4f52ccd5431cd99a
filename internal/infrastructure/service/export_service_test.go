package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/student"
	"github.com/imptech/academy-ledger/internal/infrastructure/document"
)

func newExportFixture(t *testing.T) (*ExportService, *fixture) {
	t.Helper()
	f := newFixture()

	cfg := document.DefaultConfig()
	cfg.ExportsDir = filepath.Join(t.TempDir(), "exports")
	exporter, err := document.NewExcelExporter(cfg)
	assert.NoError(t, err)

	return NewExportService(f.store, exporter, nil), f
}

func TestExportStudentsResolvesTotals(t *testing.T) {
	svc, f := newExportFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, webDevDraft(150000), decimal.NewFromInt(50000), "")
	assert.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, res.Student.RegNumber, decimal.NewFromInt(25000), "")
	assert.NoError(t, err)

	path, err := svc.ExportStudents(ctx, student.Filters{})
	assert.NoError(t, err)

	info, statErr := os.Stat(path)
	assert.NoError(t, statErr)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportPayments(t *testing.T) {
	svc, f := newExportFixture(t)
	ctx := context.Background()

	reg := registered(t, f, 150000)
	_, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(25000), "")
	assert.NoError(t, err)

	path, err := svc.ExportPayments(ctx, payment.ListFilters{})
	assert.NoError(t, err)

	info, statErr := os.Stat(path)
	assert.NoError(t, statErr)
	assert.Greater(t, info.Size(), int64(0))
}
