// Package intent reads browsing mode off scroll rhythm, focus dwell, and
// idle time, and suggests a layout for the surface.
package intent

import (
	"math"
	"sync"
	"time"

	"percept/internal/clock"
	"percept/internal/persist"
	"percept/internal/store"
	"percept/internal/telemetry"
)

// Kind namespaces intent snapshots in the store.
const Kind = "intent"

// #region tracker

// Tracker accumulates intent signals for one surface id. The pause timer
// fires on a scheduler goroutine, so all state is guarded by a mutex.
type Tracker struct {
	id    string
	cfg   Config
	clk   clock.Clock
	sched clock.Scheduler
	st    store.Store

	mu  sync.Mutex
	acc Accumulator

	// transient scroll/focus state
	hasScroll     bool
	lastScrollY   float64
	lastScrollAt  time.Time
	lastDirection Direction
	focusID       string
	focusSince    time.Time
	pauseTimer    clock.Timer
}

// NewTracker hydrates a tracker for id from the store. Absent or malformed
// prior state starts from defaults; entry and activity timestamps are
// stamped with the current time for this visit.
func NewTracker(id string, cfg Config, clk clock.Clock, sched clock.Scheduler, st store.Store) (*Tracker, error) {
	acc, _, err := persist.Load(st, Kind, id, Accumulator{})
	if err != nil {
		return nil, err
	}
	now := clk.Now()
	acc.EnteredAt = now
	acc.LastActivityAt = now
	return &Tracker{
		id: id, cfg: cfg, clk: clk, sched: sched, st: st,
		acc: acc, lastDirection: DirectionNone,
	}, nil
}

// ID returns the surface id this tracker observes.
func (t *Tracker) ID() string { return t.id }

// Accumulator returns a copy of the current accumulator value.
func (t *Tracker) Accumulator() Accumulator {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.acc
}

// Profile returns the current derived profile.
func (t *Tracker) Profile() Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Derive(t.acc, t.cfg, t.clk.Now())
}

// #endregion tracker

// #region scroll

// Scroll folds one scroll sample into the accumulator: velocity from the
// position delta, direction through the deadband, direction-change
// detection, and a re-armed pause timer. Arming always cancels the
// pending timer, so at most one pause timer exists at any moment.
func (t *Tracker) Scroll(scrollY, containerHeight float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clk.Now()

	if t.pauseTimer != nil {
		t.pauseTimer.Stop()
	}

	var velocity float64
	direction := DirectionNone
	if t.hasScroll {
		delta := scrollY - t.lastScrollY
		if dt := now.Sub(t.lastScrollAt); dt > 0 {
			velocity = math.Abs(delta) / dt.Seconds()
		}
		switch {
		case delta > t.cfg.DirectionDeadbandPx:
			direction = DirectionDown
		case delta < -t.cfg.DirectionDeadbandPx:
			direction = DirectionUp
		}
	}
	if direction != DirectionNone {
		if t.lastDirection != DirectionNone && direction != t.lastDirection {
			t.acc.DirectionChanges++
		}
		t.lastDirection = direction
	}
	t.hasScroll = true
	t.lastScrollY = scrollY
	t.lastScrollAt = now

	t.acc.ScrollPatterns = telemetry.PushBounded(
		t.acc.ScrollPatterns,
		ScrollSample{At: now, Velocity: velocity, Direction: direction},
		t.cfg.ScrollPatternCap,
	)
	t.acc.LastActivityAt = now

	t.pauseTimer = t.sched.Schedule(t.cfg.PauseDebounce, t.onPause)
	return t.save()
}

// onPause runs when no scroll arrived within the debounce window.
func (t *Tracker) onPause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.acc.PauseCount++
	// Best effort: a failed snapshot write must not crash the timer goroutine.
	_ = t.save()
}

// #endregion scroll

// #region focus

// FocusChange finalizes the dwell on the previously focused element, then
// switches focus to elementID. Repeated calls with the same id are no-ops.
func (t *Tracker) FocusChange(elementID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if elementID == t.focusID {
		return nil
	}
	now := t.clk.Now()

	mutated := false
	if t.focusID != "" {
		t.acc.FocusEvents = telemetry.PushBounded(
			t.acc.FocusEvents,
			FocusSample{
				ElementID:  t.focusID,
				At:         now,
				DurationMs: float64(now.Sub(t.focusSince).Milliseconds()),
			},
			t.cfg.FocusEventCap,
		)
		mutated = true
	}
	t.focusID = elementID
	t.focusSince = now
	t.acc.LastActivityAt = now

	if !mutated {
		return nil
	}
	return t.save()
}

// #endregion focus

// #region mouse-move

// MouseMove treats edge proximity as a liveness signal only: a pointer
// within the margin of any bound refreshes the activity timestamp and
// nothing else feeds classification.
func (t *Tracker) MouseMove(x, y float64, bounds telemetry.Bounds) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !telemetry.NearEdge(telemetry.Point{X: x, Y: y}, bounds, t.cfg.EdgeMarginPx) {
		return nil
	}
	t.acc.LastActivityAt = t.clk.Now()
	return t.save()
}

// #endregion mouse-move

// #region reset

// Reset restores defaults, clears the persisted snapshot, and re-stamps
// the surface-entry timestamp.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pauseTimer != nil {
		t.pauseTimer.Stop()
		t.pauseTimer = nil
	}
	now := t.clk.Now()
	t.acc = Accumulator{EnteredAt: now, LastActivityAt: now}
	t.hasScroll = false
	t.lastDirection = DirectionNone
	t.focusID = ""
	return persist.Reset(t.st, Kind, t.id)
}

// #endregion reset

func (t *Tracker) save() error {
	return persist.Save(t.st, Kind, t.id, t.acc)
}
