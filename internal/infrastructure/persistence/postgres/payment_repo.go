// Package postgres implements the PostgreSQL persistence layer for the
// academy ledger.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PaymentRepository implements payment.Repository for PostgreSQL.
type PaymentRepository struct {
	conn *Connection
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(conn *Connection) *PaymentRepository {
	return &PaymentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Insert stores a new payment.
func (r *PaymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	return r.InsertIn(ctx, r.conn, p)
}

// InsertIn stores a new payment through the given querier, which may be a
// transaction. The payment id assigned by the database is written back.
func (r *PaymentRepository) InsertIn(ctx context.Context, q Querier, p *payment.Payment) error {
	query := `
		INSERT INTO payments (reg_number, amount, payment_date, receipt_number, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING payment_id
	`

	err := q.QueryRow(ctx, query,
		string(p.RegNumber),
		p.Amount.String(),
		p.PaymentDate,
		string(p.ReceiptNumber),
		p.Note,
	).Scan(&p.PaymentID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateReceipt
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		if IsCheckViolation(err) {
			return shared.WrapError("payment", "Insert", shared.ErrConstraint, ConstraintName(err), err)
		}
		if IsNotNullViolation(err) {
			return shared.WrapError("payment", "Insert", shared.ErrConstraint, "required column is null", err)
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// Delete removes a single payment by id.
func (r *PaymentRepository) Delete(ctx context.Context, paymentID int64) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM payments WHERE payment_id = $1`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment %d: %w", paymentID, err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrPaymentNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Totals and History
// ─────────────────────────────────────────────────────────────────────────────

// TotalPaid returns the sum of a student's payment amounts, zero when none.
func (r *PaymentRepository) TotalPaid(ctx context.Context, reg student.RegNumber) (decimal.Decimal, error) {
	return r.TotalPaidIn(ctx, r.conn, reg)
}

// TotalPaidIn is TotalPaid through the given querier. Inside the payment
// transaction it reads the prior total under the student row lock.
func (r *PaymentRepository) TotalPaidIn(ctx context.Context, q Querier, reg student.RegNumber) (decimal.Decimal, error) {
	var totalText string
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM payments WHERE reg_number = $1`,
		string(reg),
	).Scan(&totalText)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments for %s: %w", reg, err)
	}

	total, err := decimal.NewFromString(totalText)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid payment total %q: %w", totalText, err)
	}
	return total, nil
}

// History returns the student's payments newest first. The running balance is
// recomputed on every read against the current programme fee: the correlated
// subquery sums every payment dated at or before each row, so a fee edit
// retroactively changes the balance column of old payments.
func (r *PaymentRepository) History(ctx context.Context, reg student.RegNumber) ([]payment.HistoryEntry, error) {
	query := `
		SELECT
			p.payment_id,
			p.amount::text,
			p.payment_date,
			p.receipt_number,
			p.note,
			(s.programme_fee - (
				SELECT COALESCE(SUM(p2.amount), 0)
				FROM payments p2
				WHERE p2.reg_number = p.reg_number
				  AND p2.payment_date <= p.payment_date
			))::text AS running_balance
		FROM payments p
		JOIN students s ON s.reg_number = p.reg_number
		WHERE p.reg_number = $1
		ORDER BY p.payment_date DESC, p.payment_id DESC
	`

	rows, err := r.conn.Query(ctx, query, string(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to query payment history for %s: %w", reg, err)
	}
	defer rows.Close()

	var entries []payment.HistoryEntry
	for rows.Next() {
		var e payment.HistoryEntry
		var amountText, balanceText, rcpt string

		if err := rows.Scan(&e.PaymentID, &amountText, &e.PaymentDate, &rcpt, &e.Note, &balanceText); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if e.Amount, err = decimal.NewFromString(amountText); err != nil {
			return nil, fmt.Errorf("invalid payment amount %q: %w", amountText, err)
		}
		if e.RunningBalance, err = decimal.NewFromString(balanceText); err != nil {
			return nil, fmt.Errorf("invalid running balance %q: %w", balanceText, err)
		}
		e.ReceiptNumber = payment.ReceiptNumber(rcpt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Listings and Lookups
// ─────────────────────────────────────────────────────────────────────────────

// List returns payments joined with students, newest first.
func (r *PaymentRepository) List(ctx context.Context, f payment.ListFilters) ([]payment.LedgerEntry, error) {
	var clauses []string
	var args []interface{}

	if f.Programme != "" {
		args = append(args, f.Programme)
		clauses = append(clauses, fmt.Sprintf("s.programme = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(s.programme) LIKE $%d)", n, n))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		clauses = append(clauses, fmt.Sprintf("p.payment_date >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		clauses = append(clauses, fmt.Sprintf("p.payment_date <= $%d", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	query := `
		SELECT p.payment_id, p.payment_date, s.name, s.reg_number, s.programme,
		       p.amount::text, p.receipt_number
		FROM payments p
		JOIN students s ON s.reg_number = p.reg_number
		` + where + `
		ORDER BY p.payment_date DESC, p.payment_id DESC`

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var entries []payment.LedgerEntry
	for rows.Next() {
		var e payment.LedgerEntry
		var reg, rcpt, amountText string

		if err := rows.Scan(&e.PaymentID, &e.PaymentDate, &e.StudentName, &reg, &e.Programme, &amountText, &rcpt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		if e.Amount, err = decimal.NewFromString(amountText); err != nil {
			return nil, fmt.Errorf("invalid payment amount %q: %w", amountText, err)
		}
		e.RegNumber = student.RegNumber(reg)
		e.ReceiptNumber = payment.ReceiptNumber(rcpt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// LookupReceipt resolves a receipt number to its payment and student.
func (r *PaymentRepository) LookupReceipt(ctx context.Context, rcpt payment.ReceiptNumber) (*payment.ReceiptLookup, error) {
	query := `
		SELECT p.receipt_number, p.payment_date, p.amount::text, s.reg_number, s.name
		FROM payments p
		JOIN students s ON s.reg_number = p.reg_number
		WHERE p.receipt_number = $1
	`

	var l payment.ReceiptLookup
	var number, reg, amountText string
	var paidAt time.Time

	err := r.conn.QueryRow(ctx, query, string(rcpt)).Scan(&number, &paidAt, &amountText, &reg, &l.StudentName)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to look up receipt %s: %w", rcpt, err)
	}

	if l.Amount, err = decimal.NewFromString(amountText); err != nil {
		return nil, fmt.Errorf("invalid payment amount %q: %w", amountText, err)
	}
	l.ReceiptNumber = payment.ReceiptNumber(number)
	l.PaymentDate = paidAt
	l.RegNumber = student.RegNumber(reg)

	return &l, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Identifier Support
// ─────────────────────────────────────────────────────────────────────────────

// MaxReceiptNumber returns the receipt number with the highest daily serial
// for the given day prefix, or "" when none exists. Ordering is on the
// parsed serial: a busy day can outgrow the 4-digit padding (10000 follows
// 9999), and a lexicographic MAX would fall behind once it does.
func (r *PaymentRepository) MaxReceiptNumber(ctx context.Context, dayPrefix string) (payment.ReceiptNumber, error) {
	var max string
	err := r.conn.QueryRow(ctx,
		`SELECT receipt_number FROM payments WHERE receipt_number LIKE $1 || '%'
		 ORDER BY split_part(receipt_number, '-', 3)::int DESC LIMIT 1`,
		dayPrefix,
	).Scan(&max)
	if err != nil {
		if IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find max receipt number: %w", err)
	}
	return payment.ReceiptNumber(max), nil
}
