package student

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARTIAL UPDATES
// updateStudent used to assemble SQL from caller-supplied column names.
// Replaced with an explicit allow-list: unknown or immutable fields are
// rejected before any statement is built.
// ══════════════════════════════════════════════════════════════════════════════

// Field names the mutable student attributes. RegNumber and RegistrationDate
// are immutable and deliberately absent.
type Field string

const (
	FieldName         Field = "name"
	FieldAge          Field = "age"
	FieldGender       Field = "gender"
	FieldProgramme    Field = "programme"
	FieldStartDate    Field = "start_date"
	FieldDuration     Field = "duration"
	FieldSchedule     Field = "schedule"
	FieldProgrammeFee Field = "programme_fee"
	FieldStatus       Field = "status"
	FieldScholarship  Field = "scholarship"
)

// MutableFields is the allow-list consulted by UpdateFields implementations.
var MutableFields = map[Field]bool{
	FieldName:         true,
	FieldAge:          true,
	FieldGender:       true,
	FieldProgramme:    true,
	FieldStartDate:    true,
	FieldDuration:     true,
	FieldSchedule:     true,
	FieldProgrammeFee: true,
	FieldStatus:       true,
	FieldScholarship:  true,
}

// Updates is a partial update: field -> new value. Values are passed through
// to the storage layer; callers validate types and ranges beforehand.
type Updates map[Field]any

// ══════════════════════════════════════════════════════════════════════════════
// LIST FILTERS
// ══════════════════════════════════════════════════════════════════════════════

// Filters narrows student listings. Zero values mean "no filter".
type Filters struct {
	// Search matches name, registration number, or programme, case-insensitive.
	Search string

	// Status filters on enrollment status.
	Status Status

	// Programme filters on exact programme name.
	Programme string

	Limit  int
	Offset int
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the student persistence contract.
type Repository interface {
	// Create inserts a new student.
	// Returns shared.ErrDuplicateRegistration if the registration number is taken.
	Create(ctx context.Context, s *Student) error

	// GetByRegNumber returns a student by registration number.
	// Returns shared.ErrStudentNotFound if absent.
	GetByRegNumber(ctx context.Context, reg RegNumber) (*Student, error)

	// List returns students matching the filters, newest registration first.
	List(ctx context.Context, f Filters) ([]*Student, error)

	// Count returns the number of students matching the filters.
	Count(ctx context.Context, f Filters) (int, error)

	// UpdateFields applies a partial update to the allow-listed fields.
	// Returns shared.ErrUnknownField for anything outside MutableFields and
	// shared.ErrStudentNotFound if the student does not exist.
	UpdateFields(ctx context.Context, reg RegNumber, updates Updates) error

	// MaxRegNumber returns the highest existing registration number with the
	// given prefix, or "" when none exists. Used by the identifier generator.
	MaxRegNumber(ctx context.Context, prefix string) (RegNumber, error)

	// Exists reports whether a student with the registration number exists.
	Exists(ctx context.Context, reg RegNumber) (bool, error)
}
