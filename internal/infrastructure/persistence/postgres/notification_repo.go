// Package postgres implements the PostgreSQL persistence layer for the
// academy ledger.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/imptech/academy-ledger/internal/domain/notification"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create stores a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (id, reg_number, message, type, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID,
		string(n.RegNumber),
		n.Message,
		string(n.Type),
		n.CreatedAt,
		n.Read,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListUnread returns unread notifications, newest first.
func (r *NotificationRepository) ListUnread(ctx context.Context, limit int) ([]*notification.Notification, error) {
	query := `
		SELECT id, reg_number, message, type, created_at, is_read
		FROM notifications
		WHERE is_read = FALSE
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	return r.queryNotifications(ctx, query, args...)
}

// ListByStudent returns all notifications for one student, newest first.
func (r *NotificationRepository) ListByStudent(ctx context.Context, reg student.RegNumber) ([]*notification.Notification, error) {
	query := `
		SELECT id, reg_number, message, type, created_at, is_read
		FROM notifications
		WHERE reg_number = $1
		ORDER BY created_at DESC
	`
	return r.queryNotifications(ctx, query, string(reg))
}

// MarkRead flags one notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context) (int, error) {
	result, err := r.conn.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE is_read = FALSE`)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// HasRecentReminder reports whether a payment reminder was created for the
// student after the given time.
func (r *NotificationRepository) HasRecentReminder(ctx context.Context, reg student.RegNumber, since time.Time) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE reg_number = $1 AND type = $2 AND created_at > $3
		)`,
		string(reg), string(notification.TypePaymentReminder), since,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recent reminders: %w", err)
	}
	return exists, nil
}

// DeleteOlderThan removes read notifications created before the cutoff.
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.conn.Exec(ctx,
		`DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func (r *NotificationRepository) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]*notification.Notification, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var result []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		var reg, typ string

		if err := rows.Scan(&n.ID, &reg, &n.Message, &typ, &n.CreatedAt, &n.Read); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.RegNumber = student.RegNumber(reg)
		n.Type = notification.Type(typ)
		result = append(result, &n)
	}

	return result, rows.Err()
}
