// Package postgres implements the PostgreSQL persistence layer for the
// academy ledger.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/report"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT REPOSITORY IMPLEMENTATION
// Every projection is a single aggregation query built on the same
// StudentPayments shape: students LEFT JOINed with the sum of their payments.
// LEFT JOIN keeps zero-payment students in every report, and empty tables
// produce empty results, not errors.
// ══════════════════════════════════════════════════════════════════════════════

// ReportRepository implements report.Repository for PostgreSQL.
type ReportRepository struct {
	conn *Connection
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(conn *Connection) *ReportRepository {
	return &ReportRepository{conn: conn}
}

// studentPaymentsCTE is the shared per-student totals projection.
const studentPaymentsCTE = `
	WITH student_payments AS (
		SELECT
			s.reg_number,
			s.name,
			s.programme,
			s.schedule,
			s.status,
			s.scholarship,
			s.registration_date,
			s.programme_fee,
			COALESCE(SUM(p.amount), 0) AS amount_paid
		FROM students s
		LEFT JOIN payments p ON p.reg_number = s.reg_number
		GROUP BY s.reg_number
	)`

// ─────────────────────────────────────────────────────────────────────────────
// Headline Statistics
// ─────────────────────────────────────────────────────────────────────────────

// PaymentStatistics returns the headline financial dashboard block.
func (r *ReportRepository) PaymentStatistics(ctx context.Context) (*report.PaymentStatistics, error) {
	query := studentPaymentsCTE + `
		SELECT
			COALESCE(SUM(programme_fee), 0)::text,
			COALESCE(SUM(amount_paid), 0)::text,
			COALESCE(SUM(GREATEST(programme_fee - amount_paid, 0)), 0)::text,
			COUNT(*),
			COUNT(*) FILTER (WHERE amount_paid >= programme_fee AND programme_fee > 0)
		FROM student_payments
	`

	var stats report.PaymentStatistics
	var feesText, revenueText, outstandingText string

	err := r.conn.QueryRow(ctx, query).Scan(
		&feesText, &revenueText, &outstandingText,
		&stats.TotalStudents, &stats.FullyPaidStudents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment statistics: %w", err)
	}

	if stats.TotalFees, err = decimal.NewFromString(feesText); err != nil {
		return nil, fmt.Errorf("invalid total fees %q: %w", feesText, err)
	}
	if stats.TotalRevenue, err = decimal.NewFromString(revenueText); err != nil {
		return nil, fmt.Errorf("invalid total revenue %q: %w", revenueText, err)
	}
	if stats.TotalOutstanding, err = decimal.NewFromString(outstandingText); err != nil {
		return nil, fmt.Errorf("invalid total outstanding %q: %w", outstandingText, err)
	}

	if stats.TotalFees.IsPositive() {
		rate, _ := stats.TotalRevenue.Div(stats.TotalFees).Mul(decimal.NewFromInt(100)).Float64()
		stats.CollectionRate = rate
	}

	return &stats, nil
}

// StudentStatistics counts students by status and scholarship.
func (r *ReportRepository) StudentStatistics(ctx context.Context) (*report.StudentStatistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Active'),
			COUNT(*) FILTER (WHERE status = 'Graduated'),
			COUNT(*) FILTER (WHERE status = 'Dropped Out'),
			COUNT(*) FILTER (WHERE scholarship)
		FROM students
	`

	var stats report.StudentStatistics
	err := r.conn.QueryRow(ctx, query).Scan(
		&stats.Total, &stats.Active, &stats.Graduated, &stats.DroppedOut, &stats.Scholarship,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query student statistics: %w", err)
	}
	return &stats, nil
}

// OutstandingBalances returns students who still owe money, largest balance
// first.
func (r *ReportRepository) OutstandingBalances(ctx context.Context) ([]report.OutstandingBalance, error) {
	query := studentPaymentsCTE + `
		SELECT reg_number, name, programme,
		       programme_fee::text, amount_paid::text,
		       (programme_fee - amount_paid)::text AS balance
		FROM student_payments
		WHERE amount_paid < programme_fee
		ORDER BY (programme_fee - amount_paid) DESC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding balances: %w", err)
	}
	defer rows.Close()

	var result []report.OutstandingBalance
	for rows.Next() {
		var b report.OutstandingBalance
		var feeText, paidText, balanceText string

		if err := rows.Scan(&b.RegNumber, &b.Name, &b.Programme, &feeText, &paidText, &balanceText); err != nil {
			return nil, fmt.Errorf("failed to scan outstanding balance: %w", err)
		}
		if b.ProgrammeFee, err = decimal.NewFromString(feeText); err != nil {
			return nil, err
		}
		if b.AmountPaid, err = decimal.NewFromString(paidText); err != nil {
			return nil, err
		}
		if b.Balance, err = decimal.NewFromString(balanceText); err != nil {
			return nil, err
		}
		result = append(result, b)
	}

	return result, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Schedule Reports
// ─────────────────────────────────────────────────────────────────────────────

// ScheduleStatistics breaks enrollment and payment state down per schedule.
func (r *ReportRepository) ScheduleStatistics(ctx context.Context) ([]report.ScheduleStatistics, error) {
	query := studentPaymentsCTE + `
		SELECT schedule,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE amount_paid >= programme_fee AND programme_fee > 0),
		       COUNT(*) FILTER (WHERE amount_paid > 0 AND amount_paid < programme_fee),
		       COUNT(*) FILTER (WHERE amount_paid = 0),
		       COALESCE(SUM(amount_paid), 0)::text
		FROM student_payments
		WHERE schedule <> ''
		GROUP BY schedule
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule statistics: %w", err)
	}
	defer rows.Close()

	var result []report.ScheduleStatistics
	for rows.Next() {
		var s report.ScheduleStatistics
		var revenueText string

		if err := rows.Scan(&s.Schedule, &s.TotalStudents, &s.FullyPaid, &s.PartiallyPaid, &s.Unpaid, &revenueText); err != nil {
			return nil, fmt.Errorf("failed to scan schedule statistics: %w", err)
		}
		if s.TotalRevenue, err = decimal.NewFromString(revenueText); err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

// ScheduleRevenue is the expected-vs-received analysis per schedule.
func (r *ReportRepository) ScheduleRevenue(ctx context.Context) ([]report.ScheduleRevenue, error) {
	query := studentPaymentsCTE + `
		SELECT schedule,
		       COALESCE(SUM(programme_fee), 0)::text,
		       COALESCE(SUM(amount_paid), 0)::text
		FROM student_payments
		WHERE schedule <> ''
		GROUP BY schedule
		ORDER BY SUM(amount_paid) DESC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule revenue: %w", err)
	}
	defer rows.Close()

	var result []report.ScheduleRevenue
	for rows.Next() {
		var s report.ScheduleRevenue
		var expectedText, receivedText string

		if err := rows.Scan(&s.Schedule, &expectedText, &receivedText); err != nil {
			return nil, fmt.Errorf("failed to scan schedule revenue: %w", err)
		}
		if s.ExpectedRevenue, err = decimal.NewFromString(expectedText); err != nil {
			return nil, err
		}
		if s.ReceivedRevenue, err = decimal.NewFromString(receivedText); err != nil {
			return nil, err
		}
		s.Outstanding = s.ExpectedRevenue.Sub(s.ReceivedRevenue)
		if s.ExpectedRevenue.IsPositive() {
			rate, _ := s.ReceivedRevenue.Div(s.ExpectedRevenue).Mul(decimal.NewFromInt(100)).Float64()
			s.CollectionRate = rate
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

// ScheduleTrends compares this month's registrations to last month's per
// schedule. Month boundaries are taken in the academy's timezone.
func (r *ReportRepository) ScheduleTrends(ctx context.Context, now time.Time) ([]report.ScheduleTrend, error) {
	thisMonthStart := timeutil.StartOfMonth(now)
	lastMonthStart := timeutil.StartOfPreviousMonth(now)

	query := `
		SELECT schedule,
		       COUNT(*) FILTER (WHERE registration_date >= $1),
		       COUNT(*) FILTER (WHERE registration_date >= $2 AND registration_date < $1)
		FROM students
		WHERE schedule <> ''
		GROUP BY schedule
		ORDER BY schedule
	`

	rows, err := r.conn.Query(ctx, query, thisMonthStart, lastMonthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule trends: %w", err)
	}
	defer rows.Close()

	var result []report.ScheduleTrend
	for rows.Next() {
		var t report.ScheduleTrend
		if err := rows.Scan(&t.Schedule, &t.ThisMonth, &t.LastMonth); err != nil {
			return nil, fmt.Errorf("failed to scan schedule trend: %w", err)
		}
		if t.LastMonth > 0 {
			t.GrowthPct = float64(t.ThisMonth-t.LastMonth) / float64(t.LastMonth) * 100
		}
		result = append(result, t)
	}

	return result, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Programme Reports
// ─────────────────────────────────────────────────────────────────────────────

// ProgrammeEnrollment counts students per programme.
func (r *ReportRepository) ProgrammeEnrollment(ctx context.Context) ([]report.ProgrammeEnrollment, error) {
	query := `
		SELECT programme,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'Graduated')
		FROM students
		GROUP BY programme
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query programme enrollment: %w", err)
	}
	defer rows.Close()

	var result []report.ProgrammeEnrollment
	for rows.Next() {
		var e report.ProgrammeEnrollment
		if err := rows.Scan(&e.Programme, &e.TotalStudents, &e.Graduated); err != nil {
			return nil, fmt.Errorf("failed to scan programme enrollment: %w", err)
		}
		result = append(result, e)
	}

	return result, rows.Err()
}

// ProgrammeRevenue sums received revenue per programme.
func (r *ReportRepository) ProgrammeRevenue(ctx context.Context) ([]report.ProgrammeRevenue, error) {
	query := studentPaymentsCTE + `
		SELECT programme,
		       COALESCE(SUM(amount_paid), 0)::text,
		       COUNT(*)
		FROM student_payments
		GROUP BY programme
		ORDER BY SUM(amount_paid) DESC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query programme revenue: %w", err)
	}
	defer rows.Close()

	var result []report.ProgrammeRevenue
	for rows.Next() {
		var p report.ProgrammeRevenue
		var revenueText string

		if err := rows.Scan(&p.Programme, &revenueText, &p.TotalStudents); err != nil {
			return nil, fmt.Errorf("failed to scan programme revenue: %w", err)
		}
		if p.TotalRevenue, err = decimal.NewFromString(revenueText); err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	return result, rows.Err()
}

// ProgrammeCompletion is the completion-rate report per programme.
func (r *ReportRepository) ProgrammeCompletion(ctx context.Context) ([]report.ProgrammeCompletion, error) {
	query := `
		SELECT programme,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'Graduated')
		FROM students
		GROUP BY programme
		ORDER BY programme
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query programme completion: %w", err)
	}
	defer rows.Close()

	var result []report.ProgrammeCompletion
	for rows.Next() {
		var c report.ProgrammeCompletion
		if err := rows.Scan(&c.Programme, &c.TotalStudents, &c.Graduated); err != nil {
			return nil, fmt.Errorf("failed to scan programme completion: %w", err)
		}
		if c.TotalStudents > 0 {
			c.CompletionRate = float64(c.Graduated) / float64(c.TotalStudents) * 100
		}
		result = append(result, c)
	}

	return result, rows.Err()
}

// ProgrammeRetention counts retained vs dropped students per programme.
func (r *ReportRepository) ProgrammeRetention(ctx context.Context) ([]report.ProgrammeRetention, error) {
	query := `
		SELECT programme,
		       COUNT(*) FILTER (WHERE status <> 'Dropped Out'),
		       COUNT(*) FILTER (WHERE status = 'Dropped Out')
		FROM students
		GROUP BY programme
		ORDER BY programme
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query programme retention: %w", err)
	}
	defer rows.Close()

	var result []report.ProgrammeRetention
	for rows.Next() {
		var p report.ProgrammeRetention
		if err := rows.Scan(&p.Programme, &p.Retained, &p.Dropped); err != nil {
			return nil, fmt.Errorf("failed to scan programme retention: %w", err)
		}
		result = append(result, p)
	}

	return result, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Time Series
// ─────────────────────────────────────────────────────────────────────────────

// MonthlyRevenue returns collected revenue per calendar month, oldest first.
// Months are bucketed in the academy's timezone, not the session timezone.
func (r *ReportRepository) MonthlyRevenue(ctx context.Context) ([]report.MonthlyRevenue, error) {
	query := `
		SELECT to_char(payment_date AT TIME ZONE 'Africa/Lagos', 'YYYY-MM') AS month,
		       COALESCE(SUM(amount), 0)::text
		FROM payments
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly revenue: %w", err)
	}
	defer rows.Close()

	var result []report.MonthlyRevenue
	for rows.Next() {
		var m report.MonthlyRevenue
		var revenueText string

		if err := rows.Scan(&m.Month, &revenueText); err != nil {
			return nil, fmt.Errorf("failed to scan monthly revenue: %w", err)
		}
		if m.TotalRevenue, err = decimal.NewFromString(revenueText); err != nil {
			return nil, err
		}
		result = append(result, m)
	}

	return result, rows.Err()
}

// PaymentTrends returns payment count and volume per calendar month, with
// months bucketed in the academy's timezone.
func (r *ReportRepository) PaymentTrends(ctx context.Context) ([]report.PaymentTrend, error) {
	query := `
		SELECT to_char(payment_date AT TIME ZONE 'Africa/Lagos', 'YYYY-MM') AS month,
		       COUNT(*),
		       COALESCE(SUM(amount), 0)::text
		FROM payments
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment trends: %w", err)
	}
	defer rows.Close()

	var result []report.PaymentTrend
	for rows.Next() {
		var t report.PaymentTrend
		var amountText string

		if err := rows.Scan(&t.Month, &t.PaymentCount, &amountText); err != nil {
			return nil, fmt.Errorf("failed to scan payment trend: %w", err)
		}
		if t.TotalAmount, err = decimal.NewFromString(amountText); err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	return result, rows.Err()
}

// CohortProgression counts registrations per (registration year, month)
// cell, bucketed in the academy's timezone.
func (r *ReportRepository) CohortProgression(ctx context.Context) ([]report.CohortPeriod, error) {
	query := `
		SELECT to_char(registration_date AT TIME ZONE 'Africa/Lagos', 'YYYY') AS cohort,
		       to_char(registration_date AT TIME ZONE 'Africa/Lagos', 'YYYY-MM') AS period,
		       COUNT(*)
		FROM students
		GROUP BY cohort, period
		ORDER BY cohort, period
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cohort progression: %w", err)
	}
	defer rows.Close()

	var result []report.CohortPeriod
	for rows.Next() {
		var c report.CohortPeriod
		if err := rows.Scan(&c.Cohort, &c.Period, &c.Students); err != nil {
			return nil, fmt.Errorf("failed to scan cohort period: %w", err)
		}
		result = append(result, c)
	}

	return result, rows.Err()
}

// GenderDistribution counts students per gender.
func (r *ReportRepository) GenderDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := r.conn.Query(ctx, `SELECT gender, COUNT(*) FROM students GROUP BY gender`)
	if err != nil {
		return nil, fmt.Errorf("failed to query gender distribution: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var gender string
		var count int
		if err := rows.Scan(&gender, &count); err != nil {
			return nil, fmt.Errorf("failed to scan gender distribution: %w", err)
		}
		result[gender] = count
	}

	return result, rows.Err()
}
