package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/imptech/academy-ledger/pkg/timeutil"
)

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(15 * time.Minute)

	now := time.Date(2025, 8, 28, 10, 0, 0, 0, timeutil.LagosTZ)
	assert.Equal(t, now.Add(15*time.Minute), s.Next(now))
	assert.Equal(t, "@every 15m0s", s.String())
}

func TestDailyScheduleNext(t *testing.T) {
	s := NewDailySchedule(9, 0)

	// Before the firing time: fires today.
	morning := time.Date(2025, 8, 28, 7, 30, 0, 0, timeutil.LagosTZ)
	assert.Equal(t, time.Date(2025, 8, 28, 9, 0, 0, 0, timeutil.LagosTZ), s.Next(morning))

	// After the firing time: fires tomorrow.
	afternoon := time.Date(2025, 8, 28, 14, 0, 0, 0, timeutil.LagosTZ)
	assert.Equal(t, time.Date(2025, 8, 29, 9, 0, 0, 0, timeutil.LagosTZ), s.Next(afternoon))

	// Exactly at the firing time: strictly after, so tomorrow.
	exact := time.Date(2025, 8, 28, 9, 0, 0, 0, timeutil.LagosTZ)
	assert.Equal(t, time.Date(2025, 8, 29, 9, 0, 0, 0, timeutil.LagosTZ), s.Next(exact))

	// Month rollover.
	endOfMonth := time.Date(2025, 8, 31, 23, 0, 0, 0, timeutil.LagosTZ)
	assert.Equal(t, time.Date(2025, 9, 1, 9, 0, 0, 0, timeutil.LagosTZ), s.Next(endOfMonth))

	assert.Equal(t, "@daily 09:00", s.String())
}
