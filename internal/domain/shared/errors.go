// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has no infrastructure
// dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Storage errors
	ErrConstraint  = errors.New("storage constraint violated")
	ErrTransaction = errors.New("transaction failed")

	// External collaborator errors
	ErrExternalService = errors.New("external service error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "student", "payment", "report"
	Op      string // operation that failed, e.g. "Register", "RecordPayment"
	Kind    error  // base error type for errors.Is() checking
	Message string // human-readable message
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Ledger error taxonomy. These are the failures callers are expected to
// branch on; everything else is wrapped storage or I/O trouble.
var (
	// ErrStudentNotFound - the referenced registration number does not exist.
	ErrStudentNotFound = NewDomainError("student", "Find", ErrNotFound, "student not found")

	// ErrPaymentNotFound - the referenced payment id does not exist.
	ErrPaymentNotFound = NewDomainError("payment", "Find", ErrNotFound, "payment not found")

	// ErrDuplicateRegistration - the registration number is already taken.
	ErrDuplicateRegistration = NewDomainError("student", "Register", ErrAlreadyExists, "registration number already exists")

	// ErrDuplicateIdentifier - identifier generation kept colliding after the
	// bounded number of reserve-and-commit retries.
	ErrDuplicateIdentifier = NewDomainError("ledger", "GenerateIdentifier", ErrAlreadyExists, "identifier collision persisted after retries")

	// ErrDuplicateReceipt - the generated receipt number is already taken.
	ErrDuplicateReceipt = NewDomainError("payment", "Record", ErrAlreadyExists, "receipt number already exists")

	// ErrConstraintViolation - a storage-level integrity failure; the enclosing
	// transaction has been rolled back.
	ErrConstraintViolation = NewDomainError("ledger", "Write", ErrConstraint, "integrity constraint violated")

	// ErrNonPositiveAmount - a payment amount must be strictly positive.
	ErrNonPositiveAmount = NewDomainError("payment", "Validate", ErrValueOutOfRange, "payment amount must be positive")

	// ErrUnknownField - a partial student update referenced a field outside the
	// allow-list (or an immutable one).
	ErrUnknownField = NewDomainError("student", "Update", ErrInvalidInput, "unknown or immutable field in update")

	// ErrNoFieldsToUpdate - a partial student update carried no fields at all.
	ErrNoFieldsToUpdate = NewDomainError("student", "Update", ErrEmptyValue, "no fields to update")

	// ErrDocumentGeneration - receipt or letter rendering failed. Non-fatal:
	// the financial record stands, the document is absent.
	ErrDocumentGeneration = NewDomainError("document", "Generate", ErrExternalService, "document generation failed")

	// ErrNotificationNotFound - the referenced notification does not exist.
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate checks if the error is an "already exists" error.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsDocumentFailure checks if the error came from document rendering.
// Document failures never invalidate the committed financial record.
func IsDocumentFailure(err error) bool {
	return errors.Is(err, ErrDocumentGeneration)
}
