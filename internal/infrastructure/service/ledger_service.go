// Package service wires the domain model to persistence, documents, caching,
// and events. Services hold no state beyond their collaborators; all ledger
// state lives in PostgreSQL.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
	"github.com/imptech/academy-ledger/pkg/retry"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLLABORATOR CONTRACTS
// ══════════════════════════════════════════════════════════════════════════════

// Store is the transactional ledger storage the service runs on.
type Store interface {
	// Students returns the student repository.
	Students() student.Repository

	// Payments returns the payment repository.
	Payments() payment.Repository

	// RegisterStudent atomically inserts a student and an optional initial
	// payment.
	RegisterStudent(ctx context.Context, st *student.Student, initial *payment.Payment) error

	// RecordPayment inserts a payment under the student row lock and returns
	// the total paid before this payment.
	RecordPayment(ctx context.Context, p *payment.Payment) (decimal.Decimal, error)

	// DeleteStudent removes the student and every dependent row atomically,
	// returning the number of payments removed.
	DeleteStudent(ctx context.Context, reg student.RegNumber) (int, error)

	// StudentTotals reads the roster matching the filters together with each
	// student's paid total in one consistent snapshot.
	StudentTotals(ctx context.Context, f student.Filters) ([]*student.Student, map[student.RegNumber]decimal.Decimal, error)
}

// CacheInvalidator drops derived caches after a ledger write. A nil
// invalidator disables caching.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// LedgerService implements the ledger's write operations and single-student
// reads: registration, payments, partial updates, and deletion.
type LedgerService struct {
	store    Store
	receipts payment.ReceiptEmitter
	letters  payment.LetterEmitter
	events   shared.EventPublisher
	cache    CacheInvalidator
	retrier  *retry.Retrier
	logger   *slog.Logger
	now      func() time.Time
}

// LedgerServiceConfig carries the collaborators of a LedgerService.
// Receipts, Letters, Events, and Cache may be nil; the corresponding side
// effect is then skipped.
type LedgerServiceConfig struct {
	Store    Store
	Receipts payment.ReceiptEmitter
	Letters  payment.LetterEmitter
	Events   shared.EventPublisher
	Cache    CacheInvalidator
	Logger   *slog.Logger

	// Now overrides the clock, for tests. Defaults to the academy timezone
	// clock.
	Now func() time.Time
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(cfg LedgerServiceConfig) *LedgerService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = timeutil.Now
	}
	if cfg.Events == nil {
		cfg.Events = shared.NopPublisher{}
	}

	return &LedgerService{
		store:    cfg.Store,
		receipts: cfg.Receipts,
		letters:  cfg.Letters,
		events:   cfg.Events,
		cache:    cfg.Cache,
		retrier:  retry.IdentifierRetrier(),
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Registration
// ─────────────────────────────────────────────────────────────────────────────

// RegistrationResult reports a completed registration. Document paths are
// empty when rendering was skipped or failed; DocumentErr then carries the
// failure, wrapped as shared.ErrDocumentGeneration.
type RegistrationResult struct {
	Student     *student.Student
	Payment     *payment.Payment
	ReceiptPath string
	LetterPath  string
	DocumentErr error
}

// Register creates a student with a freshly generated registration number
// and, when initialPayment is positive, records the first payment in the
// same transaction. The identifier is reserved by inserting: if a concurrent
// registration wins the serial, the insert fails on the primary key and the
// whole attempt is recomputed. Persistent collision surfaces as
// shared.ErrDuplicateIdentifier.
func (s *LedgerService) Register(ctx context.Context, draft student.Draft, initialPayment decimal.Decimal, note string) (*RegistrationResult, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if initialPayment.IsNegative() {
		return nil, shared.ErrNonPositiveAmount
	}

	var (
		st  *student.Student
		pay *payment.Payment
	)

	op := func(ctx context.Context) error {
		now := s.now()

		reg, err := s.nextRegNumber(ctx, draft.Programme, now)
		if err != nil {
			return retry.Permanent(err)
		}
		st = student.NewFromDraft(reg, draft, now)

		pay = nil
		if initialPayment.IsPositive() {
			rcpt, err := s.nextReceiptNumber(ctx, now)
			if err != nil {
				return retry.Permanent(err)
			}
			pay = &payment.Payment{
				RegNumber:     reg,
				Amount:        initialPayment,
				PaymentDate:   now,
				ReceiptNumber: rcpt,
				Note:          note,
			}
			if err := pay.Validate(); err != nil {
				return retry.Permanent(err)
			}
		}

		if err := s.store.RegisterStudent(ctx, st, pay); err != nil {
			if shared.IsDuplicate(err) {
				return retry.Retryable(err)
			}
			return retry.Permanent(err)
		}
		return nil
	}

	if err := s.retrier.Do(ctx, op); err != nil {
		if shared.IsDuplicate(err) {
			return nil, shared.ErrDuplicateIdentifier
		}
		return nil, err
	}

	s.logger.Info("student registered",
		"reg_number", st.RegNumber,
		"programme", st.Programme,
		"initial_payment", initialPayment.String(),
	)

	s.events.Publish(student.NewRegisteredEvent(st, pay != nil))
	s.invalidate(ctx)

	result := &RegistrationResult{Student: st, Payment: pay}
	s.emitRegistrationDocuments(ctx, result)
	return result, nil
}

// emitRegistrationDocuments renders the admission letter and, for an initial
// payment, the receipt. Failures are recorded on the result, never returned:
// the registration is already committed.
func (s *LedgerService) emitRegistrationDocuments(ctx context.Context, res *RegistrationResult) {
	snap := snapshotOf(res.Student)

	if s.letters != nil {
		path, err := s.letters.EmitAdmissionLetter(ctx, snap, res.Student.StartDate, res.Student.Duration, res.Student.Schedule)
		if err != nil {
			res.DocumentErr = s.documentFailure("admission letter", string(res.Student.RegNumber), err)
		} else {
			res.LetterPath = path
		}
	}

	if s.receipts != nil && res.Payment != nil {
		// The first receipt shows only the single amount.
		data := payment.ReceiptData{
			ReceiptNumber: res.Payment.ReceiptNumber,
			PaymentDate:   res.Payment.PaymentDate,
			Amount:        res.Payment.Amount,
			Note:          res.Payment.Note,
		}
		path, err := s.receipts.EmitReceipt(ctx, data, snap)
		if err != nil {
			res.DocumentErr = s.documentFailure("receipt", string(res.Payment.ReceiptNumber), err)
		} else {
			res.ReceiptPath = path
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Payments
// ─────────────────────────────────────────────────────────────────────────────

// PaymentResult reports a recorded payment with the derived totals at commit
// time.
type PaymentResult struct {
	Payment     *payment.Payment
	TotalPaid   decimal.Decimal
	Balance     decimal.Decimal
	ReceiptPath string
	DocumentErr error
}

// RecordPayment records a tuition payment with a freshly generated receipt
// number and returns the updated totals. The receipt document is rendered
// after commit; a rendering failure is reported on the result and never
// rolls back the payment.
func (s *LedgerService) RecordPayment(ctx context.Context, reg student.RegNumber, amount decimal.Decimal, note string) (*PaymentResult, error) {
	if !shared.IsPositive(amount) {
		return nil, shared.ErrNonPositiveAmount
	}

	st, err := s.store.Students().GetByRegNumber(ctx, reg)
	if err != nil {
		return nil, err
	}

	var (
		pay        *payment.Payment
		priorTotal decimal.Decimal
	)

	op := func(ctx context.Context) error {
		now := s.now()

		rcpt, err := s.nextReceiptNumber(ctx, now)
		if err != nil {
			return retry.Permanent(err)
		}

		pay = &payment.Payment{
			RegNumber:     reg,
			Amount:        amount,
			PaymentDate:   now,
			ReceiptNumber: rcpt,
			Note:          note,
		}

		priorTotal, err = s.store.RecordPayment(ctx, pay)
		if err != nil {
			if errors.Is(err, shared.ErrDuplicateReceipt) {
				return retry.Retryable(err)
			}
			return retry.Permanent(err)
		}
		return nil
	}

	if err := s.retrier.Do(ctx, op); err != nil {
		if errors.Is(err, shared.ErrDuplicateReceipt) {
			return nil, shared.ErrDuplicateIdentifier
		}
		return nil, err
	}

	totalPaid := priorTotal.Add(amount)
	balance := st.Balance(totalPaid)

	s.logger.Info("payment recorded",
		"reg_number", reg,
		"receipt", pay.ReceiptNumber,
		"amount", amount.String(),
		"balance", balance.String(),
	)

	s.events.Publish(payment.NewRecordedEvent(pay, balance))
	s.invalidate(ctx)

	result := &PaymentResult{
		Payment:   pay,
		TotalPaid: totalPaid,
		Balance:   balance,
	}

	if s.receipts != nil {
		data := payment.ReceiptData{
			ReceiptNumber: pay.ReceiptNumber,
			PaymentDate:   pay.PaymentDate,
			Amount:        pay.Amount,
			TotalPaid:     &totalPaid,
			Balance:       &balance,
			Note:          pay.Note,
		}
		path, err := s.receipts.EmitReceipt(ctx, data, snapshotOf(st))
		if err != nil {
			result.DocumentErr = s.documentFailure("receipt", string(pay.ReceiptNumber), err)
		} else {
			result.ReceiptPath = path
		}
	}

	return result, nil
}

// DeletePayment removes a single payment record. Balances are derived, so no
// other row changes.
func (s *LedgerService) DeletePayment(ctx context.Context, paymentID int64) error {
	if err := s.store.Payments().Delete(ctx, paymentID); err != nil {
		return err
	}

	s.logger.Info("payment deleted", "payment_id", paymentID)
	s.events.Publish(payment.NewDeletedEvent(paymentID))
	s.invalidate(ctx)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetStudent returns a student by registration number.
func (s *LedgerService) GetStudent(ctx context.Context, reg student.RegNumber) (*student.Student, error) {
	return s.store.Students().GetByRegNumber(ctx, reg)
}

// StudentAccount is a student with their derived payment totals.
type StudentAccount struct {
	Student   *student.Student
	TotalPaid decimal.Decimal
	Balance   decimal.Decimal
}

// GetAccount returns the student with total paid and balance derived at read
// time.
func (s *LedgerService) GetAccount(ctx context.Context, reg student.RegNumber) (*StudentAccount, error) {
	st, err := s.store.Students().GetByRegNumber(ctx, reg)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Payments().TotalPaid(ctx, reg)
	if err != nil {
		return nil, err
	}

	return &StudentAccount{
		Student:   st,
		TotalPaid: total,
		Balance:   st.Balance(total),
	}, nil
}

// ListStudents returns students matching the filters, newest first.
func (s *LedgerService) ListStudents(ctx context.Context, f student.Filters) ([]*student.Student, error) {
	return s.store.Students().List(ctx, f)
}

// CountStudents returns the number of students matching the filters.
func (s *LedgerService) CountStudents(ctx context.Context, f student.Filters) (int, error) {
	return s.store.Students().Count(ctx, f)
}

// PaymentHistory returns the student's payments newest first with running
// balances. Returns shared.ErrStudentNotFound for an unknown student rather
// than an empty history.
func (s *LedgerService) PaymentHistory(ctx context.Context, reg student.RegNumber) ([]payment.HistoryEntry, error) {
	exists, err := s.store.Students().Exists(ctx, reg)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrStudentNotFound
	}

	return s.store.Payments().History(ctx, reg)
}

// ListPayments returns the joined payment ledger, newest first.
func (s *LedgerService) ListPayments(ctx context.Context, f payment.ListFilters) ([]payment.LedgerEntry, error) {
	return s.store.Payments().List(ctx, f)
}

// LookupReceipt resolves a receipt number to its payment and student.
func (s *LedgerService) LookupReceipt(ctx context.Context, rcpt payment.ReceiptNumber) (*payment.ReceiptLookup, error) {
	return s.store.Payments().LookupReceipt(ctx, rcpt)
}

// ─────────────────────────────────────────────────────────────────────────────
// Updates
// ─────────────────────────────────────────────────────────────────────────────

// UpdateStudent applies a partial update. Unknown or immutable fields are
// rejected before anything is written; an empty update is an error, not a
// no-op. Editing programme_fee retroactively changes every derived balance,
// including the running balances of past payments.
func (s *LedgerService) UpdateStudent(ctx context.Context, reg student.RegNumber, updates student.Updates) error {
	if len(updates) == 0 {
		return shared.ErrNoFieldsToUpdate
	}
	if err := validateUpdates(updates); err != nil {
		return err
	}

	if err := s.store.Students().UpdateFields(ctx, reg, updates); err != nil {
		return err
	}

	s.logger.Info("student updated", "reg_number", reg, "fields", len(updates))
	s.events.Publish(student.NewUpdatedEvent(reg, updates))
	s.invalidate(ctx)
	return nil
}

// UpdateStatus changes the enrollment status. Any transition between known
// statuses is allowed, including re-activation.
func (s *LedgerService) UpdateStatus(ctx context.Context, reg student.RegNumber, status student.Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("student", "UpdateStatus", shared.ErrInvalidInput,
			fmt.Sprintf("unknown status %q", status))
	}

	st, err := s.store.Students().GetByRegNumber(ctx, reg)
	if err != nil {
		return err
	}
	if st.Status == status {
		return nil
	}

	if err := s.store.Students().UpdateFields(ctx, reg, student.Updates{student.FieldStatus: string(status)}); err != nil {
		return err
	}

	s.logger.Info("student status changed", "reg_number", reg, "from", st.Status, "to", status)
	s.events.Publish(student.NewStatusChangedEvent(reg, st.Status, status))
	s.invalidate(ctx)
	return nil
}

// DeleteStudent removes the student, their payments, and their notifications
// in one transaction.
func (s *LedgerService) DeleteStudent(ctx context.Context, reg student.RegNumber) error {
	paymentsRemoved, err := s.store.DeleteStudent(ctx, reg)
	if err != nil {
		return err
	}

	s.logger.Info("student deleted", "reg_number", reg, "payments_removed", paymentsRemoved)
	s.events.Publish(student.NewDeletedEvent(reg, paymentsRemoved))
	s.invalidate(ctx)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internals
// ─────────────────────────────────────────────────────────────────────────────

// nextRegNumber computes the candidate registration number for the
// programme in the current year.
func (s *LedgerService) nextRegNumber(ctx context.Context, programme string, now time.Time) (student.RegNumber, error) {
	code := student.ProgrammeCode(programme)
	year := timeutil.ToLocal(now).Year()
	prefix := student.RegNumberPrefix(code, year)

	last, err := s.store.Students().MaxRegNumber(ctx, prefix)
	if err != nil {
		return "", err
	}
	return student.NextRegNumber(code, year, last)
}

// nextReceiptNumber computes the candidate receipt number for the current
// academy day.
func (s *LedgerService) nextReceiptNumber(ctx context.Context, now time.Time) (payment.ReceiptNumber, error) {
	day := timeutil.ToLocal(now)
	prefix := payment.DayPrefix(day)

	last, err := s.store.Payments().MaxReceiptNumber(ctx, prefix)
	if err != nil {
		return "", err
	}
	return payment.NextReceiptNumber(day, last)
}

// invalidate drops derived caches after a write. Cache trouble is logged,
// never surfaced: the database is authoritative.
func (s *LedgerService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err)
	}
}

func (s *LedgerService) documentFailure(kind, id string, err error) error {
	s.logger.Error("document generation failed", "kind", kind, "id", id, "error", err)
	s.events.Publish(shared.NewDocumentFailedEvent(kind, id))
	return shared.WrapError("document", "Emit", shared.ErrDocumentGeneration, kind+" generation failed", err)
}

func snapshotOf(st *student.Student) payment.StudentSnapshot {
	return payment.StudentSnapshot{
		RegNumber:    st.RegNumber,
		Name:         st.Name,
		Programme:    st.Programme,
		ProgrammeFee: st.ProgrammeFee,
	}
}

// validateUpdates applies domain validation to the typed update values
// before they reach storage.
func validateUpdates(updates student.Updates) error {
	for field, value := range updates {
		if !student.MutableFields[field] {
			return shared.ErrUnknownField
		}

		switch field {
		case student.FieldStatus:
			sv, ok := value.(string)
			if !ok || !student.Status(sv).IsValid() {
				return shared.NewDomainError("student", "Update", shared.ErrInvalidInput, "invalid status value")
			}
		case student.FieldProgrammeFee:
			d, ok := value.(decimal.Decimal)
			if !ok {
				return shared.NewDomainError("student", "Update", shared.ErrInvalidInput, "programme fee must be a decimal")
			}
			if d.IsNegative() {
				return shared.NewDomainError("student", "Update", shared.ErrNegativeValue, "programme fee cannot be negative")
			}
		case student.FieldAge:
			age, ok := value.(int)
			if !ok || age < 0 {
				return shared.NewDomainError("student", "Update", shared.ErrInvalidInput, "invalid age value")
			}
		case student.FieldName, student.FieldProgramme:
			sv, ok := value.(string)
			if !ok || sv == "" {
				return shared.NewDomainError("student", "Update", shared.ErrEmptyValue,
					fmt.Sprintf("%s cannot be empty", field))
			}
		}
	}
	return nil
}
