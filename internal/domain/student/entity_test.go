package student

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/imptech/academy-ledger/internal/domain/shared"
)

func validDraft() Draft {
	return Draft{
		Name:         "Adaeze Obi",
		Age:          24,
		Gender:       "Female",
		Programme:    "Web Development",
		StartDate:    "2025-09-01",
		Duration:     "6 months",
		Schedule:     "Weekdays (Morning)",
		ProgrammeFee: decimal.NewFromInt(150000),
	}
}

func TestDraftValidate(t *testing.T) {
	assert.NoError(t, validDraft().Validate())

	d := validDraft()
	d.Name = "   "
	assert.ErrorIs(t, d.Validate(), shared.ErrEmptyValue)

	d = validDraft()
	d.Programme = ""
	assert.ErrorIs(t, d.Validate(), shared.ErrEmptyValue)

	d = validDraft()
	d.Age = -1
	assert.ErrorIs(t, d.Validate(), shared.ErrNegativeValue)

	d = validDraft()
	d.Gender = "Unknown"
	assert.ErrorIs(t, d.Validate(), shared.ErrInvalidInput)

	d = validDraft()
	d.Schedule = "Midnight"
	assert.ErrorIs(t, d.Validate(), shared.ErrInvalidInput)

	d = validDraft()
	d.ProgrammeFee = decimal.NewFromInt(-1)
	assert.ErrorIs(t, d.Validate(), shared.ErrNegativeValue)

	// A zero fee is a valid scholarship-style registration.
	d = validDraft()
	d.ProgrammeFee = decimal.Zero
	assert.NoError(t, d.Validate())

	// Optional fields may be empty.
	d = validDraft()
	d.Gender = ""
	d.Schedule = ""
	assert.NoError(t, d.Validate())
}

func TestNewFromDraft(t *testing.T) {
	registeredAt := time.Date(2025, 8, 28, 10, 30, 0, 0, time.UTC)
	d := validDraft()
	d.Name = "  Adaeze Obi  "

	st := NewFromDraft("IMPTECH-WD-2025-001", d, registeredAt)

	assert.Equal(t, RegNumber("IMPTECH-WD-2025-001"), st.RegNumber)
	assert.Equal(t, "Adaeze Obi", st.Name)
	assert.Equal(t, StatusActive, st.Status)
	assert.False(t, st.Scholarship)
	assert.Equal(t, registeredAt, st.RegistrationDate)
	assert.True(t, st.ProgrammeFee.Equal(decimal.NewFromInt(150000)))
}

func TestStudentBalance(t *testing.T) {
	st := &Student{ProgrammeFee: decimal.NewFromInt(150000)}

	assert.True(t, st.Balance(decimal.Zero).Equal(decimal.NewFromInt(150000)))
	assert.True(t, st.Balance(decimal.NewFromInt(50000)).Equal(decimal.NewFromInt(100000)))
	assert.True(t, st.Balance(decimal.NewFromInt(150000)).IsZero())

	// Overpayment is legal and shows as a negative balance.
	assert.True(t, st.Balance(decimal.NewFromInt(200000)).Equal(decimal.NewFromInt(-50000)))
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusActive.IsValid())
	assert.True(t, StatusGraduated.IsValid())
	assert.True(t, StatusDroppedOut.IsValid())
	assert.False(t, Status("Suspended").IsValid())
	assert.False(t, Status("").IsValid())
}
