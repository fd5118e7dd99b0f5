// Package clock provides injectable wall-clock and timer primitives so
// trackers stay deterministic under test and replay.
package clock

import (
	"sync"
	"time"
)

// #region interfaces

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Timer is a pending scheduled callback. Stop cancels it if it has not
// fired yet.
type Timer interface {
	Stop()
}

// Scheduler arms one-shot timers. Arming a new timer for the same purpose
// is the caller's debounce responsibility: stop the previous one first.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Timer
}

// #endregion interfaces

// #region system

// System is the production Clock and Scheduler backed by package time.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time { return time.Now() }

// Schedule runs fn after d on a timer goroutine.
func (System) Schedule(d time.Duration, fn func()) Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	t *time.Timer
}

func (s systemTimer) Stop() { s.t.Stop() }

// #endregion system

// #region fake

// Fake is a manually advanced Clock and Scheduler for tests and replay.
// Timers fire synchronously during Advance or Set, in deadline order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFake creates a fake clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Schedule registers a timer that fires when the fake clock reaches now+d.
func (f *Fake) Schedule(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{clock: f, deadline: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers in order.
func (f *Fake) Advance(d time.Duration) {
	f.Set(f.Now().Add(d))
}

// Set jumps the clock to t (never backwards). Due timers fire in deadline
// order, with the clock stepped to each deadline before its callback runs
// so callbacks that re-arm see consistent time.
func (f *Fake) Set(t time.Time) {
	for {
		f.mu.Lock()
		var due *fakeTimer
		for _, cand := range f.timers {
			if cand.stopped || cand.fired || cand.deadline.After(t) {
				continue
			}
			if due == nil || cand.deadline.Before(due.deadline) {
				due = cand
			}
		}
		if due == nil {
			if t.After(f.now) {
				f.now = t
			}
			f.mu.Unlock()
			return
		}
		due.fired = true
		if due.deadline.After(f.now) {
			f.now = due.deadline
		}
		fn := due.fn
		f.mu.Unlock()
		// Fire outside the lock: callbacks may re-arm timers.
		fn()
	}
}

type fakeTimer struct {
	clock    *Fake
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func (t *fakeTimer) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

// #endregion fake
