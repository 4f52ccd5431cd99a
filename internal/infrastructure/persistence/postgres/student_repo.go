// Package postgres implements the PostgreSQL persistence layer for the
// academy ledger.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// studentColumns is the canonical SELECT list. programme_fee is cast to text
// so it round-trips through decimal.Decimal without precision loss.
const studentColumns = `
	reg_number, name, age, gender, programme, start_date, duration,
	schedule, programme_fee::text, registration_date, status, scholarship`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	return r.CreateIn(ctx, r.conn, s)
}

// CreateIn inserts a new student through the given querier, which may be a
// transaction. The registration flow uses this to keep the student insert and
// the initial payment in one transaction.
func (r *StudentRepository) CreateIn(ctx context.Context, q Querier, s *student.Student) error {
	query := `
		INSERT INTO students (
			reg_number, name, age, gender, programme, start_date, duration,
			schedule, programme_fee, registration_date, status, scholarship
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := q.Exec(ctx, query,
		string(s.RegNumber),
		s.Name,
		s.Age,
		s.Gender,
		s.Programme,
		s.StartDate,
		s.Duration,
		s.Schedule,
		s.ProgrammeFee.String(),
		s.RegistrationDate,
		string(s.Status),
		s.Scholarship,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateRegistration
		}
		if IsCheckViolation(err) {
			return shared.WrapError("student", "Create", shared.ErrConstraint, ConstraintName(err), err)
		}
		if IsNotNullViolation(err) {
			return shared.WrapError("student", "Create", shared.ErrConstraint, "required column is null", err)
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByRegNumber returns a student by registration number.
func (r *StudentRepository) GetByRegNumber(ctx context.Context, reg student.RegNumber) (*student.Student, error) {
	query := `SELECT` + studentColumns + `
		FROM students
		WHERE reg_number = $1
	`

	row := r.conn.QueryRow(ctx, query, string(reg))
	s, err := scanStudent(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student %s: %w", reg, err)
	}
	return s, nil
}

// Exists reports whether a student with the registration number exists.
func (r *StudentRepository) Exists(ctx context.Context, reg student.RegNumber) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE reg_number = $1)`,
		string(reg),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// List returns students matching the filters, newest registration first.
func (r *StudentRepository) List(ctx context.Context, f student.Filters) ([]*student.Student, error) {
	return r.ListIn(ctx, r.conn, f)
}

// ListIn is List through the given querier. The export snapshot runs it in a
// read-only transaction together with the per-student totals.
func (r *StudentRepository) ListIn(ctx context.Context, q Querier, f student.Filters) ([]*student.Student, error) {
	where, args := buildStudentFilter(f)

	query := `SELECT` + studentColumns + `
		FROM students
		` + where + `
		ORDER BY registration_date DESC, reg_number DESC`

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []*student.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// Count returns the number of students matching the filters.
func (r *StudentRepository) Count(ctx context.Context, f student.Filters) (int, error) {
	where, args := buildStudentFilter(f)

	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM students `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Partial Updates
// ─────────────────────────────────────────────────────────────────────────────

// UpdateFields applies a partial update to the allow-listed fields. The SET
// clause is assembled only from student.MutableFields keys; values are always
// bound as parameters, never spliced into SQL.
func (r *StudentRepository) UpdateFields(ctx context.Context, reg student.RegNumber, updates student.Updates) error {
	if len(updates) == 0 {
		return shared.ErrNoFieldsToUpdate
	}

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)

	for field, value := range updates {
		if !student.MutableFields[field] {
			return shared.ErrUnknownField
		}
		if field == student.FieldProgrammeFee {
			if d, ok := value.(decimal.Decimal); ok {
				value = d.String()
			}
		}
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", string(field), len(args)))
	}

	args = append(args, string(reg))
	query := fmt.Sprintf(
		"UPDATE students SET %s WHERE reg_number = $%d",
		strings.Join(setClauses, ", "),
		len(args),
	)

	result, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		if IsCheckViolation(err) {
			return shared.WrapError("student", "Update", shared.ErrConstraint, ConstraintName(err), err)
		}
		return fmt.Errorf("failed to update student %s: %w", reg, err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Identifier Support
// ─────────────────────────────────────────────────────────────────────────────

// MaxRegNumber returns the existing registration number with the highest
// serial for the given prefix, or "" when none exists. Ordering is on the
// parsed serial: serials outgrow their zero-padding (1000 follows 999), so a
// lexicographic MAX would fall behind once they do.
func (r *StudentRepository) MaxRegNumber(ctx context.Context, prefix string) (student.RegNumber, error) {
	var max string
	err := r.conn.QueryRow(ctx,
		`SELECT reg_number FROM students WHERE reg_number LIKE $1 || '%'
		 ORDER BY split_part(reg_number, '-', 4)::int DESC LIMIT 1`,
		prefix,
	).Scan(&max)
	if err != nil {
		if IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find max registration number: %w", err)
	}
	return student.RegNumber(max), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func buildStudentFilter(f student.Filters) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(name) LIKE $%d OR LOWER(reg_number) LIKE $%d OR LOWER(programme) LIKE $%d)", n, n, n))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Programme != "" {
		args = append(args, f.Programme)
		clauses = append(clauses, fmt.Sprintf("programme = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var reg, status, feeText string

	err := row.Scan(
		&reg,
		&s.Name,
		&s.Age,
		&s.Gender,
		&s.Programme,
		&s.StartDate,
		&s.Duration,
		&s.Schedule,
		&feeText,
		&s.RegistrationDate,
		&status,
		&s.Scholarship,
	)
	if err != nil {
		return nil, err
	}

	fee, err := decimal.NewFromString(feeText)
	if err != nil {
		return nil, fmt.Errorf("invalid programme fee %q: %w", feeText, err)
	}

	s.RegNumber = student.RegNumber(reg)
	s.Status = student.Status(status)
	s.ProgrammeFee = fee
	return &s, nil
}
