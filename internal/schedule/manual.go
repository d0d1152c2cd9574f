package schedule

import (
	"sync"
	"time"
)

// Manual is a logical clock. Time only moves when Advance is called, and
// due callbacks run synchronously on the caller's goroutine in due-time
// order, ties broken by scheduling order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

var _ Scheduler = (*Manual)(nil)

type manualTimer struct {
	m    *Manual
	due  time.Time
	seq  uint64
	fn   func()
	done bool
}

// NewManual creates a logical clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc implements Scheduler. A non-positive delay is due immediately
// but still only runs on the next Advance.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Stop implements Timer.
func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.m.remove(t)
	return true
}

func (m *Manual) remove(t *manualTimer) {
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

func (m *Manual) next(until time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.due.After(until) {
			continue
		}
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// Advance moves the clock forward by d, running every callback that becomes
// due, including ones scheduled by callbacks within the window. It returns
// the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	until := m.now.Add(d)
	fired := 0
	for {
		t := m.next(until)
		if t == nil {
			break
		}
		t.done = true
		m.remove(t)
		if t.due.After(m.now) {
			m.now = t.due
		}
		m.mu.Unlock()
		t.fn()
		fired++
		m.mu.Lock()
	}
	if until.After(m.now) {
		m.now = until
	}
	m.mu.Unlock()
	return fired
}

// Pending returns the number of callbacks that have not run or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
