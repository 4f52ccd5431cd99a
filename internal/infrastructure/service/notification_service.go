package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/imptech/academy-ledger/internal/domain/notification"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SERVICE
// Notifications are in-app records the front office works through; there is
// no outbound delivery channel.
// ══════════════════════════════════════════════════════════════════════════════

// ReminderCooldown is how long a student is left alone after a payment
// reminder before the next one may be created.
const ReminderCooldown = 7 * 24 * time.Hour

// NotificationService creates and manages in-app notifications.
type NotificationService struct {
	notifications notification.Repository
	store         Store
	events        shared.EventPublisher
	logger        *slog.Logger
	now           func() time.Time
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(repo notification.Repository, store Store, events shared.EventPublisher, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &NotificationService{
		notifications: repo,
		store:         store,
		events:        events,
		logger:        logger,
		now:           timeutil.Now,
	}
}

// SendPaymentReminder creates a payment reminder for the student unless one
// was created within the cooldown window. Returns the notification, or nil
// when the reminder was suppressed.
func (s *NotificationService) SendPaymentReminder(ctx context.Context, reg student.RegNumber) (*notification.Notification, error) {
	recent, err := s.notifications.HasRecentReminder(ctx, reg, s.now().Add(-ReminderCooldown))
	if err != nil {
		return nil, err
	}
	if recent {
		return nil, nil
	}

	st, err := s.store.Students().GetByRegNumber(ctx, reg)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Payments().TotalPaid(ctx, reg)
	if err != nil {
		return nil, err
	}
	balance := st.Balance(total)
	if !shared.IsPositive(balance) {
		return nil, nil
	}

	message := fmt.Sprintf(
		"Payment Reminder for %s\nProgramme: %s\nTotal Fee: %s\nAmount Paid: %s\nOutstanding Balance: %s",
		st.Name,
		st.Programme,
		shared.FormatAmount(st.ProgrammeFee),
		shared.FormatAmount(total),
		shared.FormatAmount(balance),
	)

	n, err := notification.New(reg, notification.TypePaymentReminder, message)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Info("payment reminder created", "reg_number", reg, "balance", balance.String())
	s.events.Publish(notification.NewReminderCreatedEvent(n))
	return n, nil
}

// NotifyRegistration records a registration notice for the front office.
func (s *NotificationService) NotifyRegistration(ctx context.Context, st *student.Student) (*notification.Notification, error) {
	message := fmt.Sprintf("New student registered: %s (%s) - %s", st.Name, st.RegNumber, st.Programme)

	n, err := notification.New(st.RegNumber, notification.TypeRegistration, message)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListUnread returns unread notifications, newest first.
func (s *NotificationService) ListUnread(ctx context.Context, limit int) ([]*notification.Notification, error) {
	return s.notifications.ListUnread(ctx, limit)
}

// ListByStudent returns all notifications for one student, newest first.
func (s *NotificationService) ListByStudent(ctx context.Context, reg student.RegNumber) ([]*notification.Notification, error) {
	return s.notifications.ListByStudent(ctx, reg)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.notifications.MarkRead(ctx, id)
}

// MarkAllRead flags every unread notification as read.
func (s *NotificationService) MarkAllRead(ctx context.Context) (int, error) {
	return s.notifications.MarkAllRead(ctx)
}

// PruneRead removes read notifications older than the cutoff.
func (s *NotificationService) PruneRead(ctx context.Context, olderThan time.Duration) (int, error) {
	return s.notifications.DeleteOlderThan(ctx, s.now().Add(-olderThan))
}
