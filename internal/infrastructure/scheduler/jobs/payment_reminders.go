// Package jobs contains implementations of the academy's scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/imptech/academy-ledger/internal/domain/notification"
	"github.com/imptech/academy-ledger/internal/domain/report"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT REMINDERS JOB
// ══════════════════════════════════════════════════════════════════════════════

// BalanceSource lists students who still owe money.
type BalanceSource interface {
	OutstandingBalances(ctx context.Context) ([]report.OutstandingBalance, error)
}

// ReminderSender creates a payment reminder for one student. A nil
// notification with a nil error means the reminder was suppressed, either
// because one was sent recently or because the balance is settled.
type ReminderSender interface {
	SendPaymentReminder(ctx context.Context, reg student.RegNumber) (*notification.Notification, error)
}

// JobLocker takes a short-lived lock so only one process runs the sweep.
type JobLocker interface {
	AcquireJobLock(ctx context.Context, jobName string, ttl time.Duration) (bool, error)
}

// PaymentRemindersJob walks the outstanding-balance report once a day and
// creates a reminder for every debtor the cooldown allows.
type PaymentRemindersJob struct {
	balances  BalanceSource
	reminders ReminderSender
	locker    JobLocker
	logger    *slog.Logger

	config PaymentRemindersConfig

	lastRunStats atomic.Value // *PaymentRemindersStats
}

// PaymentRemindersConfig contains configuration for the reminders job.
type PaymentRemindersConfig struct {
	// Enabled turns the sweep on or off without unregistering the job.
	Enabled bool

	// Timeout is the maximum duration for one sweep.
	Timeout time.Duration

	// LockTTL is how long the job lock is held. Zero disables locking.
	LockTTL time.Duration
}

// DefaultPaymentRemindersConfig returns sensible defaults.
func DefaultPaymentRemindersConfig() PaymentRemindersConfig {
	return PaymentRemindersConfig{
		Enabled: true,
		Timeout: 5 * time.Minute,
		LockTTL: 10 * time.Minute,
	}
}

// PaymentRemindersStats contains statistics from a sweep.
type PaymentRemindersStats struct {
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	Debtors       int
	RemindersSent int
	Suppressed    int
	Failed        int
	Errors        []error
}

// NewPaymentRemindersJob creates the job. locker may be nil.
func NewPaymentRemindersJob(
	balances BalanceSource,
	reminders ReminderSender,
	locker JobLocker,
	logger *slog.Logger,
	config PaymentRemindersConfig,
) *PaymentRemindersJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentRemindersJob{
		balances:  balances,
		reminders: reminders,
		locker:    locker,
		logger:    logger,
		config:    config,
	}
}

// Name returns the job name.
func (j *PaymentRemindersJob) Name() string {
	return "payment_reminders"
}

// Description returns a human-readable description.
func (j *PaymentRemindersJob) Description() string {
	return "Creates payment reminders for students with outstanding balances"
}

// Run executes one reminder sweep.
func (j *PaymentRemindersJob) Run(ctx context.Context) error {
	if !j.config.Enabled {
		j.logger.Info("payment reminders are disabled")
		return nil
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	if j.locker != nil && j.config.LockTTL > 0 {
		acquired, err := j.locker.AcquireJobLock(ctx, j.Name(), j.config.LockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire job lock: %w", err)
		}
		if !acquired {
			j.logger.Info("payment reminder sweep already running elsewhere")
			return nil
		}
	}

	stats := &PaymentRemindersStats{StartedAt: time.Now()}

	debtors, err := j.balances.OutstandingBalances(ctx)
	if err != nil {
		return fmt.Errorf("failed to list outstanding balances: %w", err)
	}
	stats.Debtors = len(debtors)

	for _, d := range debtors {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := j.reminders.SendPaymentReminder(ctx, student.RegNumber(d.RegNumber))
		switch {
		case err != nil:
			stats.Failed++
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to create reminder",
				"reg_number", d.RegNumber,
				"error", err,
			)
		case n == nil:
			stats.Suppressed++
		default:
			stats.RemindersSent++
		}
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("payment reminder sweep completed",
		"duration", stats.Duration.String(),
		"debtors", stats.Debtors,
		"sent", stats.RemindersSent,
		"suppressed", stats.Suppressed,
		"failed", stats.Failed,
	)

	return nil
}

// LastRunStats returns statistics from the last sweep.
func (j *PaymentRemindersJob) LastRunStats() *PaymentRemindersStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*PaymentRemindersStats)
}
