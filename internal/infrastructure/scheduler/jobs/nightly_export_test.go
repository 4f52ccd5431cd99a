package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// fakeExporter counts export calls; fail switches it to errors.
type fakeExporter struct {
	studentCalls int
	paymentCalls int
	fail         bool
}

func (e *fakeExporter) ExportStudents(ctx context.Context, f student.Filters) (string, error) {
	e.studentCalls++
	if e.fail {
		return "", errors.New("disk full")
	}
	return "exports/students.xlsx", nil
}

func (e *fakeExporter) ExportPayments(ctx context.Context, f payment.ListFilters) (string, error) {
	e.paymentCalls++
	if e.fail {
		return "", errors.New("disk full")
	}
	return "exports/payments.xlsx", nil
}

func TestNightlyExportWritesBothFiles(t *testing.T) {
	exporter := &fakeExporter{}
	job := NewNightlyExportJob(exporter, nil, 0)

	assert.Equal(t, "nightly_export", job.Name())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, exporter.studentCalls)
	assert.Equal(t, 1, exporter.paymentCalls)
}

func TestNightlyExportStopsOnFirstFailure(t *testing.T) {
	exporter := &fakeExporter{fail: true}
	job := NewNightlyExportJob(exporter, nil, 0)

	err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, exporter.studentCalls)
	assert.Equal(t, 0, exporter.paymentCalls)
}
