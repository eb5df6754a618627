// Package clock converts instants to calendar-day keys in a fixed reference
// timezone and provides an injectable time source.
package clock

import (
	"sync"
	"time"
)

// DateLayout is the layout of a calendar-day key (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Clock is a source of the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Manual is a Clock that only moves when told to. It is safe for concurrent use.
type Manual struct {
	mu sync.Mutex
	t  time.Time
}

// NewManual returns a Manual clock set to t.
func NewManual(t time.Time) *Manual {
	return &Manual{t: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.t = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.t = m.t.Add(d)
	m.mu.Unlock()
}

// Calendar maps instants onto day keys in a single reference location.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

// NewCalendar builds a Calendar. A nil location means UTC.
func NewCalendar(c Clock, loc *time.Location) *Calendar {
	if c == nil {
		c = System{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{clock: c, loc: loc}
}

// Now returns the current instant from the underlying clock.
func (c *Calendar) Now() time.Time { return c.clock.Now() }

// Location returns the reference timezone.
func (c *Calendar) Location() *time.Location { return c.loc }

// DateKey returns the day key of t in the reference timezone.
func (c *Calendar) DateKey(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// Today returns the day key of the current instant.
func (c *Calendar) Today() string {
	return c.DateKey(c.clock.Now())
}

// LastNDays returns n consecutive day keys ending today, oldest first.
func (c *Calendar) LastNDays(n int) []string {
	return DaysEnding(c.Today(), n)
}

// ShiftDays moves a day key by n calendar days. Invalid keys are returned unchanged.
func ShiftDays(key string, n int) string {
	d, err := time.Parse(DateLayout, key)
	if err != nil {
		return key
	}
	return d.AddDate(0, 0, n).Format(DateLayout)
}

// DaysEnding returns n consecutive day keys ending at last, oldest first.
func DaysEnding(last string, n int) []string {
	if n <= 0 {
		return nil
	}
	days := make([]string, n)
	for i := 0; i < n; i++ {
		days[i] = ShiftDays(last, i-(n-1))
	}
	return days
}
