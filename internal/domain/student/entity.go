// Package student contains the student domain model of the academy ledger.
// This is core business logic - no infrastructure dependencies live here.
package student

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imptech/academy-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// RegNumber is the immutable human-readable student identifier,
// format IMPTECH-<ProgCode>-<Year>-<Serial>. Once assigned it is never
// reused, even after the student record is deleted.
type RegNumber string

// IsValid reports whether the registration number matches the expected shape.
func (r RegNumber) IsValid() bool {
	_, err := ParseRegNumber(string(r))
	return err == nil
}

// String returns the string representation.
func (r RegNumber) String() string {
	return string(r)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the enrollment status of a student.
//
// This is a free-form enumeration, not a strict state machine: transitions
// between any two statuses are allowed, including re-activation of a
// graduate or a dropout.
type Status string

const (
	// StatusActive - the student is currently enrolled.
	StatusActive Status = "Active"
	// StatusGraduated - the student completed the programme.
	StatusGraduated Status = "Graduated"
	// StatusDroppedOut - the student left before completing.
	StatusDroppedOut Status = "Dropped Out"
)

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusGraduated, StatusDroppedOut:
		return true
	}
	return false
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// Catalogue vocabulary. Programmes are extensible at runtime (the academy
// adds new courses), so programme names are validated only for non-emptiness;
// schedules, durations, and genders are fixed sets.
var (
	Schedules = []string{
		"Weekdays (Morning)",
		"Weekdays (Afternoon)",
		"Weekend (Saturday)",
		"Weekend (Sunday)",
		"Online (Flexible)",
	}

	Durations = []string{"1 month", "3 months", "6 months", "9 months"}

	Genders = []string{"Male", "Female", "Other"}
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Student is the ledger's student record. ProgrammeFee is the total amount
// owed; it is fixed at registration but editable afterwards. Balances are
// never stored on the entity - they are always derived from payments.
type Student struct {
	RegNumber        RegNumber
	Name             string
	Age              int
	Gender           string
	Programme        string
	StartDate        string // display date as entered at registration, e.g. "2025-09-01"
	Duration         string
	Schedule         string
	ProgrammeFee     decimal.Decimal
	RegistrationDate time.Time
	Status           Status
	Scholarship      bool
}

// Draft holds the caller-supplied attributes of a student being registered.
// The registration number, registration date, status, and scholarship flag
// are assigned by the ledger, not the caller.
type Draft struct {
	Name         string
	Age          int
	Gender       string
	Programme    string
	StartDate    string
	Duration     string
	Schedule     string
	ProgrammeFee decimal.Decimal
}

// Validate checks the draft against the catalogue vocabulary.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewDomainError("student", "Validate", shared.ErrEmptyValue, "name is required")
	}
	if strings.TrimSpace(d.Programme) == "" {
		return shared.NewDomainError("student", "Validate", shared.ErrEmptyValue, "programme is required")
	}
	if d.Age < 0 {
		return shared.NewDomainError("student", "Validate", shared.ErrNegativeValue, "age cannot be negative")
	}
	if d.Gender != "" && !contains(Genders, d.Gender) {
		return shared.NewDomainError("student", "Validate", shared.ErrInvalidInput, "unknown gender")
	}
	if d.Schedule != "" && !contains(Schedules, d.Schedule) {
		return shared.NewDomainError("student", "Validate", shared.ErrInvalidInput, "unknown schedule")
	}
	if d.ProgrammeFee.IsNegative() {
		return shared.NewDomainError("student", "Validate", shared.ErrNegativeValue, "programme fee cannot be negative")
	}
	return nil
}

// NewFromDraft materializes a student from a validated draft with a freshly
// generated registration number. Status defaults to Active, scholarship to
// false, registration date to now.
func NewFromDraft(reg RegNumber, d Draft, registeredAt time.Time) *Student {
	return &Student{
		RegNumber:        reg,
		Name:             strings.TrimSpace(d.Name),
		Age:              d.Age,
		Gender:           d.Gender,
		Programme:        strings.TrimSpace(d.Programme),
		StartDate:        d.StartDate,
		Duration:         d.Duration,
		Schedule:         d.Schedule,
		ProgrammeFee:     d.ProgrammeFee,
		RegistrationDate: registeredAt,
		Status:           StatusActive,
		Scholarship:      false,
	}
}

// Balance returns programme_fee minus the given total paid. Overpayment is
// allowed and surfaces as a negative balance.
func (s *Student) Balance(totalPaid decimal.Decimal) decimal.Decimal {
	return s.ProgrammeFee.Sub(totalPaid)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
