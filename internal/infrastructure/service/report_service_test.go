package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/imptech/academy-ledger/internal/domain/report"
)

// fakeReports serves canned projections and records which queries ran.
type fakeReports struct {
	calls   []string
	trendAt time.Time
}

func (f *fakeReports) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeReports) PaymentStatistics(ctx context.Context) (*report.PaymentStatistics, error) {
	f.record("payment_statistics")
	return &report.PaymentStatistics{
		TotalFees:      decimal.NewFromInt(300000),
		TotalRevenue:   decimal.NewFromInt(120000),
		CollectionRate: 40,
		TotalStudents:  2,
	}, nil
}

func (f *fakeReports) StudentStatistics(ctx context.Context) (*report.StudentStatistics, error) {
	f.record("student_statistics")
	return &report.StudentStatistics{Total: 2, Active: 2}, nil
}

func (f *fakeReports) OutstandingBalances(ctx context.Context) ([]report.OutstandingBalance, error) {
	f.record("outstanding_balances")
	return []report.OutstandingBalance{{RegNumber: "IMPTECH-WD-2025-001", Balance: decimal.NewFromInt(100000)}}, nil
}

func (f *fakeReports) ScheduleStatistics(ctx context.Context) ([]report.ScheduleStatistics, error) {
	f.record("schedule_statistics")
	return nil, nil
}

func (f *fakeReports) ScheduleRevenue(ctx context.Context) ([]report.ScheduleRevenue, error) {
	f.record("schedule_revenue")
	return nil, nil
}

func (f *fakeReports) ScheduleTrends(ctx context.Context, now time.Time) ([]report.ScheduleTrend, error) {
	f.record("schedule_trends")
	f.trendAt = now
	return nil, nil
}

func (f *fakeReports) ProgrammeEnrollment(ctx context.Context) ([]report.ProgrammeEnrollment, error) {
	f.record("programme_enrollment")
	return nil, nil
}

func (f *fakeReports) ProgrammeRevenue(ctx context.Context) ([]report.ProgrammeRevenue, error) {
	f.record("programme_revenue")
	return nil, nil
}

func (f *fakeReports) ProgrammeCompletion(ctx context.Context) ([]report.ProgrammeCompletion, error) {
	f.record("programme_completion")
	return nil, nil
}

func (f *fakeReports) ProgrammeRetention(ctx context.Context) ([]report.ProgrammeRetention, error) {
	f.record("programme_retention")
	return nil, nil
}

func (f *fakeReports) MonthlyRevenue(ctx context.Context) ([]report.MonthlyRevenue, error) {
	f.record("monthly_revenue")
	return nil, nil
}

func (f *fakeReports) PaymentTrends(ctx context.Context) ([]report.PaymentTrend, error) {
	f.record("payment_trends")
	return nil, nil
}

func (f *fakeReports) CohortProgression(ctx context.Context) ([]report.CohortPeriod, error) {
	f.record("cohort_progression")
	return nil, nil
}

func (f *fakeReports) GenderDistribution(ctx context.Context) (map[string]int, error) {
	f.record("gender_distribution")
	return map[string]int{"Female": 1, "Male": 1}, nil
}

func TestReportServiceReadsThroughWithoutCache(t *testing.T) {
	repo := &fakeReports{}
	svc := NewReportService(repo, nil, nil)
	ctx := context.Background()

	stats, err := svc.PaymentStatistics(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 40.0, stats.CollectionRate)

	debtors, err := svc.OutstandingBalances(ctx)
	assert.NoError(t, err)
	assert.Len(t, debtors, 1)

	genders, err := svc.GenderDistribution(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, genders["Female"])

	assert.Equal(t, []string{"payment_statistics", "outstanding_balances", "gender_distribution"}, repo.calls)
}

func TestScheduleTrendsUsesServiceClock(t *testing.T) {
	repo := &fakeReports{}
	svc := NewReportService(repo, nil, nil)

	_, err := svc.ScheduleTrends(context.Background())
	assert.NoError(t, err)
	assert.False(t, repo.trendAt.IsZero())
}
