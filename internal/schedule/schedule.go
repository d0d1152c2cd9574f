// Package schedule abstracts delayed callbacks so timed behaviour can run on
// the wall clock in production and on a manually advanced clock in tests.
package schedule

import "time"

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was already stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay and reports the current time.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Real schedules on the wall clock. Callbacks run on their own goroutine.
type Real struct{}

var _ Scheduler = Real{}

// AfterFunc implements Scheduler.
func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Now implements Scheduler.
func (Real) Now() time.Time {
	return time.Now()
}
