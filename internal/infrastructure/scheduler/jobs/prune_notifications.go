package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRUNE NOTIFICATIONS JOB
// ══════════════════════════════════════════════════════════════════════════════

// NotificationPruner removes read notifications older than the given age.
type NotificationPruner interface {
	PruneRead(ctx context.Context, olderThan time.Duration) (int, error)
}

// PruneNotificationsJob keeps the notification table from growing without
// bound by deleting read notifications past a retention window.
type PruneNotificationsJob struct {
	pruner    NotificationPruner
	logger    *slog.Logger
	retention time.Duration
}

// NewPruneNotificationsJob creates the job. A non-positive retention
// defaults to 90 days.
func NewPruneNotificationsJob(pruner NotificationPruner, logger *slog.Logger, retention time.Duration) *PruneNotificationsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &PruneNotificationsJob{
		pruner:    pruner,
		logger:    logger,
		retention: retention,
	}
}

// Name returns the job name.
func (j *PruneNotificationsJob) Name() string {
	return "prune_notifications"
}

// Description returns a human-readable description.
func (j *PruneNotificationsJob) Description() string {
	return "Deletes read notifications older than the retention window"
}

// Run executes one prune pass.
func (j *PruneNotificationsJob) Run(ctx context.Context) error {
	removed, err := j.pruner.PruneRead(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("failed to prune notifications: %w", err)
	}

	j.logger.Info("notifications pruned",
		"removed", removed,
		"retention", j.retention.String(),
	)

	return nil
}
