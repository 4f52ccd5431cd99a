package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorMessage(t *testing.T) {
	err := NewDomainError("student", "Register", ErrEmptyValue, "name is required")
	assert.Equal(t, "student.Register: name is required", err.Error())

	wrapped := WrapError("payment", "Record", ErrConstraint, "insert failed", errors.New("boom"))
	assert.Equal(t, "payment.Record: insert failed: boom", wrapped.Error())
}

func TestDomainErrorIs(t *testing.T) {
	err := NewDomainError("student", "Find", ErrNotFound, "student not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyExists)

	// Matching works through additional fmt wrapping.
	deep := fmt.Errorf("loading account: %w", err)
	assert.ErrorIs(t, deep, ErrNotFound)

	// The underlying cause is also visible to errors.Is.
	cause := errors.New("connection reset")
	wrapped := WrapError("ledger", "Write", ErrTransaction, "commit failed", cause)
	assert.ErrorIs(t, wrapped, ErrTransaction)
	assert.ErrorIs(t, wrapped, cause)
}

func TestTaxonomyClassifiers(t *testing.T) {
	assert.True(t, IsNotFound(ErrStudentNotFound))
	assert.True(t, IsNotFound(ErrPaymentNotFound))
	assert.True(t, IsNotFound(ErrNotificationNotFound))
	assert.False(t, IsNotFound(ErrDuplicateReceipt))

	assert.True(t, IsDuplicate(ErrDuplicateRegistration))
	assert.True(t, IsDuplicate(ErrDuplicateIdentifier))
	assert.True(t, IsDuplicate(ErrDuplicateReceipt))
	assert.False(t, IsDuplicate(ErrStudentNotFound))

	assert.True(t, IsValidation(ErrNonPositiveAmount))
	assert.True(t, IsValidation(ErrUnknownField))
	assert.True(t, IsValidation(ErrNoFieldsToUpdate))
	assert.False(t, IsValidation(ErrConstraintViolation))

	assert.True(t, IsDocumentFailure(ErrDocumentGeneration))
	assert.True(t, IsDocumentFailure(fmt.Errorf("rendering: %w", ErrDocumentGeneration)))
	assert.False(t, IsDocumentFailure(ErrStudentNotFound))
}
