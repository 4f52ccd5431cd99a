package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/imptech/academy-ledger/internal/domain/report"
	"github.com/imptech/academy-ledger/internal/infrastructure/persistence/redis"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT SERVICE
// Cache-aside over the report projections: check Redis, fall back to the
// database, cache the result. A nil cache degrades to direct reads, and a
// broken cache is logged and bypassed - reports must work when Redis is
// down.
// ══════════════════════════════════════════════════════════════════════════════

// ReportService serves the reporting dashboard.
type ReportService struct {
	repo   report.Repository
	cache  *redis.ReportCache
	logger *slog.Logger
	now    func() time.Time
}

// NewReportService creates a ReportService. cache may be nil.
func NewReportService(repo report.Repository, cache *redis.ReportCache, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    timeutil.Now,
	}
}

// cached runs the loader through the cache-aside path. dest must be a
// pointer to the result type; load must fill the same type.
func cached[T any](ctx context.Context, s *ReportService, name string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if s.cache != nil {
		var hit T
		err := s.cache.Get(ctx, name, &hit)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("report cache read failed", "report", name, "error", err)
		}
	}

	result, err := load(ctx)
	if err != nil {
		return zero, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, name, result); err != nil {
			s.logger.Warn("report cache write failed", "report", name, "error", err)
		}
	}

	return result, nil
}

// PaymentStatistics returns the headline financial block.
func (s *ReportService) PaymentStatistics(ctx context.Context) (*report.PaymentStatistics, error) {
	return cached(ctx, s, "payment_statistics", s.repo.PaymentStatistics)
}

// StudentStatistics returns student counts by status and scholarship.
func (s *ReportService) StudentStatistics(ctx context.Context) (*report.StudentStatistics, error) {
	return cached(ctx, s, "student_statistics", s.repo.StudentStatistics)
}

// OutstandingBalances lists students who still owe money, largest first.
func (s *ReportService) OutstandingBalances(ctx context.Context) ([]report.OutstandingBalance, error) {
	return cached(ctx, s, "outstanding_balances", s.repo.OutstandingBalances)
}

// ScheduleStatistics returns enrollment and payment state per schedule.
func (s *ReportService) ScheduleStatistics(ctx context.Context) ([]report.ScheduleStatistics, error) {
	return cached(ctx, s, "schedule_statistics", s.repo.ScheduleStatistics)
}

// ScheduleRevenue returns expected-vs-received revenue per schedule.
func (s *ReportService) ScheduleRevenue(ctx context.Context) ([]report.ScheduleRevenue, error) {
	return cached(ctx, s, "schedule_revenue", s.repo.ScheduleRevenue)
}

// ScheduleTrends compares this month's registrations to last month's.
func (s *ReportService) ScheduleTrends(ctx context.Context) ([]report.ScheduleTrend, error) {
	return cached(ctx, s, "schedule_trends", func(ctx context.Context) ([]report.ScheduleTrend, error) {
		return s.repo.ScheduleTrends(ctx, s.now())
	})
}

// ProgrammeEnrollment returns student counts per programme.
func (s *ReportService) ProgrammeEnrollment(ctx context.Context) ([]report.ProgrammeEnrollment, error) {
	return cached(ctx, s, "programme_enrollment", s.repo.ProgrammeEnrollment)
}

// ProgrammeRevenue returns received revenue per programme.
func (s *ReportService) ProgrammeRevenue(ctx context.Context) ([]report.ProgrammeRevenue, error) {
	return cached(ctx, s, "programme_revenue", s.repo.ProgrammeRevenue)
}

// ProgrammeCompletion returns completion rates per programme.
func (s *ReportService) ProgrammeCompletion(ctx context.Context) ([]report.ProgrammeCompletion, error) {
	return cached(ctx, s, "programme_completion", s.repo.ProgrammeCompletion)
}

// ProgrammeRetention returns retained vs dropped counts per programme.
func (s *ReportService) ProgrammeRetention(ctx context.Context) ([]report.ProgrammeRetention, error) {
	return cached(ctx, s, "programme_retention", s.repo.ProgrammeRetention)
}

// MonthlyRevenue returns collected revenue per month.
func (s *ReportService) MonthlyRevenue(ctx context.Context) ([]report.MonthlyRevenue, error) {
	return cached(ctx, s, "monthly_revenue", s.repo.MonthlyRevenue)
}

// PaymentTrends returns payment count and volume per month.
func (s *ReportService) PaymentTrends(ctx context.Context) ([]report.PaymentTrend, error) {
	return cached(ctx, s, "payment_trends", s.repo.PaymentTrends)
}

// CohortProgression returns registrations per cohort and month.
func (s *ReportService) CohortProgression(ctx context.Context) ([]report.CohortPeriod, error) {
	return cached(ctx, s, "cohort_progression", s.repo.CohortProgression)
}

// GenderDistribution returns student counts per gender.
func (s *ReportService) GenderDistribution(ctx context.Context) (map[string]int, error) {
	return cached(ctx, s, "gender_distribution", s.repo.GenderDistribution)
}
