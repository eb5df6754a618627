package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/neurobank/internal/clock"
)

func TestCalendar_DateKeyUsesReferenceZone(t *testing.T) {
	// 23:30 UTC on March 1st is already March 2nd in a UTC+1 zone.
	instant := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)

	utc := clock.NewCalendar(clock.NewManual(instant), nil)
	assert.Equal(t, "2024-03-01", utc.Today())

	stockholm := time.FixedZone("CET", 60*60)
	local := clock.NewCalendar(clock.NewManual(instant), stockholm)
	require.Equal(t, stockholm, local.Location())
	assert.Equal(t, "2024-03-02", local.Today())
}

func TestShiftDays(t *testing.T) {
	tests := []struct {
		key      string
		n        int
		expected string
	}{
		{"2024-03-01", -1, "2024-02-29"},
		{"2023-12-31", 1, "2024-01-01"},
		{"2024-01-10", -90, "2023-10-12"},
		{"2024-01-10", 0, "2024-01-10"},
		{"not-a-date", 3, "not-a-date"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, clock.ShiftDays(tt.key, tt.n))
		})
	}
}

func TestLastNDays(t *testing.T) {
	cal := clock.NewCalendar(clock.NewManual(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)), time.UTC)

	days := cal.LastNDays(7)
	assert.Equal(t, []string{
		"2023-12-28", "2023-12-29", "2023-12-30", "2023-12-31",
		"2024-01-01", "2024-01-02", "2024-01-03",
	}, days)
	assert.Nil(t, clock.DaysEnding("2024-01-03", 0))
}

func TestManual_Advance(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m := clock.NewManual(start)
	m.Advance(36 * time.Hour)
	assert.Equal(t, start.Add(36*time.Hour), m.Now())

	m.Set(start)
	assert.Equal(t, start, m.Now())
}
