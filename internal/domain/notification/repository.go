package notification

import (
	"context"
	"time"

	"github.com/imptech/academy-ledger/internal/domain/student"
)

// Repository defines the notification persistence contract.
type Repository interface {
	// Create stores a notification.
	Create(ctx context.Context, n *Notification) error

	// ListUnread returns unread notifications, newest first.
	ListUnread(ctx context.Context, limit int) ([]*Notification, error)

	// ListByStudent returns all notifications for one student, newest first.
	ListByStudent(ctx context.Context, reg student.RegNumber) ([]*Notification, error)

	// MarkRead flags one notification as read.
	// Returns shared.ErrNotificationNotFound if absent.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead flags every unread notification as read and returns the
	// number affected.
	MarkAllRead(ctx context.Context) (int, error)

	// HasRecentReminder reports whether a payment reminder was created for
	// the student after the given time. The reminder job uses this to avoid
	// nagging daily about the same balance.
	HasRecentReminder(ctx context.Context, reg student.RegNumber, since time.Time) (bool, error)

	// DeleteOlderThan removes read notifications created before the cutoff
	// and returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
