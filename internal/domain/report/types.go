// Package report defines the read-only projections the reporting layer
// consumes. Every query is an aggregation over students joined with
// payments; all of them tolerate zero rows and return empty results rather
// than failing.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatistics is the headline financial dashboard block.
type PaymentStatistics struct {
	TotalFees         decimal.Decimal
	TotalRevenue      decimal.Decimal
	TotalOutstanding  decimal.Decimal
	TotalStudents     int
	FullyPaidStudents int
	CollectionRate    float64 // percent of fees collected, 0 when no fees
}

// StudentStatistics counts students by status and scholarship.
type StudentStatistics struct {
	Total       int
	Active      int
	Graduated   int
	DroppedOut  int
	Scholarship int
}

// OutstandingBalance is one row of the outstanding-payments report,
// ordered by balance descending.
type OutstandingBalance struct {
	RegNumber    string
	Name         string
	Programme    string
	ProgrammeFee decimal.Decimal
	AmountPaid   decimal.Decimal
	Balance      decimal.Decimal
}

// ScheduleStatistics breaks enrollment and payment state down per schedule.
type ScheduleStatistics struct {
	Schedule      string
	TotalStudents int
	FullyPaid     int
	PartiallyPaid int
	Unpaid        int
	TotalRevenue  decimal.Decimal
}

// ScheduleRevenue is the expected-vs-received analysis per schedule.
type ScheduleRevenue struct {
	Schedule        string
	ExpectedRevenue decimal.Decimal
	ReceivedRevenue decimal.Decimal
	Outstanding     decimal.Decimal
	CollectionRate  float64
}

// ScheduleTrend compares this month's registrations to last month's.
type ScheduleTrend struct {
	Schedule  string
	ThisMonth int
	LastMonth int
	GrowthPct float64
}

// ProgrammeEnrollment counts students per programme.
type ProgrammeEnrollment struct {
	Programme     string
	TotalStudents int
	Graduated     int
}

// ProgrammeRevenue sums received revenue per programme.
type ProgrammeRevenue struct {
	Programme     string
	TotalRevenue  decimal.Decimal
	TotalStudents int
}

// ProgrammeCompletion is the completion-rate report per programme.
type ProgrammeCompletion struct {
	Programme      string
	TotalStudents  int
	Graduated      int
	CompletionRate float64
}

// ProgrammeRetention counts retained vs dropped students per programme.
type ProgrammeRetention struct {
	Programme string
	Retained  int
	Dropped   int
}

// MonthlyRevenue is one month's collected revenue, keyed "YYYY-MM".
type MonthlyRevenue struct {
	Month        string
	TotalRevenue decimal.Decimal
}

// PaymentTrend is one month's payment count and volume.
type PaymentTrend struct {
	Month        string
	PaymentCount int
	TotalAmount  decimal.Decimal
}

// CohortPeriod is one (registration year, month) cell of the cohort
// progression report.
type CohortPeriod struct {
	Cohort   string // registration year
	Period   string // "YYYY-MM"
	Students int
}

// Repository is the read-only reporting contract over the ledger store.
type Repository interface {
	PaymentStatistics(ctx context.Context) (*PaymentStatistics, error)
	StudentStatistics(ctx context.Context) (*StudentStatistics, error)
	OutstandingBalances(ctx context.Context) ([]OutstandingBalance, error)
	ScheduleStatistics(ctx context.Context) ([]ScheduleStatistics, error)
	ScheduleRevenue(ctx context.Context) ([]ScheduleRevenue, error)
	ScheduleTrends(ctx context.Context, now time.Time) ([]ScheduleTrend, error)
	ProgrammeEnrollment(ctx context.Context) ([]ProgrammeEnrollment, error)
	ProgrammeRevenue(ctx context.Context) ([]ProgrammeRevenue, error)
	ProgrammeCompletion(ctx context.Context) ([]ProgrammeCompletion, error)
	ProgrammeRetention(ctx context.Context) ([]ProgrammeRetention, error)
	MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error)
	PaymentTrends(ctx context.Context) ([]PaymentTrend, error)
	CohortProgression(ctx context.Context) ([]CohortPeriod, error)
	GenderDistribution(ctx context.Context) (map[string]int, error)
}
