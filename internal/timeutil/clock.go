// Package timeutil provides the clock abstraction used to stamp reports and
// the reconstruction of absolute instants from drive-test time-of-day text.
package timeutil

import (
	"sync/atomic"
	"time"
)

// Clock supplies the wall-clock instant written into a report's generatedAt.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// MockClock reports a settable instant, so generated reports are
// reproducible in tests. Safe for concurrent use.
type MockClock struct {
	nanos atomic.Int64
}

// NewMockClock returns a MockClock reading t.
func NewMockClock(t time.Time) *MockClock {
	c := &MockClock{}
	c.Set(t)
	return c
}

func (c *MockClock) Now() time.Time { return time.Unix(0, c.nanos.Load()).UTC() }

// Set moves the clock to t.
func (c *MockClock) Set(t time.Time) { c.nanos.Store(t.UnixNano()) }

// Advance moves the clock forward by d, e.g. between two analysis runs.
func (c *MockClock) Advance(d time.Duration) { c.nanos.Add(int64(d)) }
