// Package postgres implements the PostgreSQL persistence layer for the
// academy ledger.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER STORE
// The store composes the single-table repositories and adds the operations
// that must span tables atomically: registration with an optional initial
// payment, payment recording under a row lock, and cascading student
// deletion. These all run on one shared Connection.
// ══════════════════════════════════════════════════════════════════════════════

// Store bundles the ledger repositories with their transactional operations.
type Store struct {
	conn     *Connection
	students *StudentRepository
	payments *PaymentRepository
}

// NewStore creates a Store over the shared connection.
func NewStore(conn *Connection) *Store {
	return &Store{
		conn:     conn,
		students: NewStudentRepository(conn),
		payments: NewPaymentRepository(conn),
	}
}

// Students returns the student repository.
func (s *Store) Students() student.Repository { return s.students }

// Payments returns the payment repository.
func (s *Store) Payments() payment.Repository { return s.payments }

// RegisterStudent inserts a student and, when initial is non-nil, the first
// payment in a single transaction. Either both rows land or neither does.
func (s *Store) RegisterStudent(ctx context.Context, st *student.Student, initial *payment.Payment) error {
	return s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if err := s.students.CreateIn(ctx, tx, st); err != nil {
			return err
		}
		if initial != nil {
			if err := s.payments.InsertIn(ctx, tx, initial); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordPayment inserts a payment in a transaction that locks the student
// row first. The lock serializes concurrent payments for the same student,
// so the prior total read inside the transaction is exact. Returns the total
// paid before this payment.
func (s *Store) RecordPayment(ctx context.Context, p *payment.Payment) (decimal.Decimal, error) {
	var priorTotal decimal.Decimal

	err := s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var reg string
		err := tx.QueryRow(ctx,
			`SELECT reg_number FROM students WHERE reg_number = $1 FOR UPDATE`,
			string(p.RegNumber),
		).Scan(&reg)
		if err != nil {
			if IsNoRows(err) {
				return shared.ErrStudentNotFound
			}
			return fmt.Errorf("failed to lock student row: %w", err)
		}

		priorTotal, err = s.payments.TotalPaidIn(ctx, tx, p.RegNumber)
		if err != nil {
			return err
		}

		return s.payments.InsertIn(ctx, tx, p)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return priorTotal, nil
}

// StudentTotals reads the roster matching the filters and each student's
// paid total inside one read-only transaction, so exports see a consistent
// snapshot even while payments are landing.
func (s *Store) StudentTotals(ctx context.Context, f student.Filters) ([]*student.Student, map[student.RegNumber]decimal.Decimal, error) {
	var students []*student.Student
	totals := make(map[student.RegNumber]decimal.Decimal)

	err := s.conn.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		var err error
		students, err = s.students.ListIn(ctx, tx, f)
		if err != nil {
			return err
		}
		for _, st := range students {
			total, err := s.payments.TotalPaidIn(ctx, tx, st.RegNumber)
			if err != nil {
				return err
			}
			totals[st.RegNumber] = total
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return students, totals, nil
}

// DeleteStudent removes a student and every dependent row in one
// transaction: payments first, then the student. Notifications go with the
// student via ON DELETE CASCADE. Returns the number of payments removed.
func (s *Store) DeleteStudent(ctx context.Context, reg student.RegNumber) (int, error) {
	var paymentsRemoved int

	err := s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM payments WHERE reg_number = $1`, string(reg))
		if err != nil {
			return fmt.Errorf("failed to delete payments for %s: %w", reg, err)
		}
		paymentsRemoved = int(result.RowsAffected())

		result, err = tx.Exec(ctx, `DELETE FROM students WHERE reg_number = $1`, string(reg))
		if err != nil {
			return fmt.Errorf("failed to delete student %s: %w", reg, err)
		}
		if result.RowsAffected() == 0 {
			return shared.ErrStudentNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return paymentsRemoved, nil
}
