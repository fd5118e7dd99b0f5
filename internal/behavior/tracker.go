// Package behavior tracks hover sessions, click timing, and approach
// velocity for one UI element and classifies the user's interaction
// personality.
package behavior

import (
	"time"

	"percept/internal/clock"
	"percept/internal/persist"
	"percept/internal/store"
	"percept/internal/telemetry"
)

// Kind namespaces behavior snapshots in the store.
const Kind = "behavior"

// #region session

// session is transient hover/approach state. It is intentionally not part
// of the persisted accumulator: an open hover does not survive a reload.
type session struct {
	hoverOpen  bool
	hoverStart time.Time

	hasMove     bool
	lastPos     telemetry.Point
	lastMoveAt  time.Time
	approachDist float64 // distance to element center at approach start
	directSeen  bool     // direct approach already counted for this run

	lastClickAt time.Time
}

// #endregion session

// #region tracker

// Tracker accumulates behavior signals for one element id and persists the
// accumulator after every mutation.
type Tracker struct {
	id  string
	cfg Config
	clk clock.Clock
	st  store.Store

	acc  Accumulator
	sess session
}

// NewTracker hydrates a tracker for id from the store. Absent or malformed
// prior state starts from defaults.
func NewTracker(id string, cfg Config, clk clock.Clock, st store.Store) (*Tracker, error) {
	acc, _, err := persist.Load(st, Kind, id, Accumulator{})
	if err != nil {
		return nil, err
	}
	return &Tracker{id: id, cfg: cfg, clk: clk, st: st, acc: acc}, nil
}

// ID returns the element id this tracker observes.
func (t *Tracker) ID() string { return t.id }

// Accumulator returns a copy of the current accumulator value.
func (t *Tracker) Accumulator() Accumulator { return t.acc }

// Profile returns the current derived profile.
func (t *Tracker) Profile() Profile { return Derive(t.acc) }

// #endregion tracker

// #region hover

// HoverStart opens a hover session and counts the hover.
func (t *Tracker) HoverStart() error {
	t.sess.hoverOpen = true
	t.sess.hoverStart = t.clk.Now()
	t.acc.HoverCount++
	return t.save()
}

// HoverEnd closes the open hover session, folds its duration into the
// running average, and counts a hover-without-click. A later Click walks
// that counter back down.
func (t *Tracker) HoverEnd() error {
	if !t.sess.hoverOpen {
		return nil
	}
	d := t.clk.Now().Sub(t.sess.hoverStart)
	t.acc.AvgHoverMs = telemetry.RunningMean(
		t.acc.AvgHoverMs, t.acc.CompletedHovers, float64(d.Milliseconds()),
	)
	t.acc.CompletedHovers++
	t.acc.HoverWithoutClick++

	t.sess.hoverOpen = false
	// The approach run ends with the hover.
	t.sess.hasMove = false
	t.sess.directSeen = false
	return t.save()
}

// #endregion hover

// #region mouse-move

// MouseMove folds one pointer sample into the accumulator. The first
// sample of an approach run records the starting distance to the element
// center; later samples are classified as a direct approach when velocity
// exceeds the configured floor and the pointer has closed more than half
// the starting distance. Velocities are recorded only while hovering.
func (t *Tracker) MouseMove(pos telemetry.Point, bounds telemetry.Bounds) error {
	now := t.clk.Now()
	center := bounds.Center()

	if !t.sess.hasMove {
		t.sess.hasMove = true
		t.sess.approachDist = telemetry.Distance(pos, center)
		t.sess.lastPos = pos
		t.sess.lastMoveAt = now
		return nil
	}

	v := telemetry.Velocity(t.sess.lastPos, pos, now.Sub(t.sess.lastMoveAt))
	t.sess.lastPos = pos
	t.sess.lastMoveAt = now

	mutated := false
	if !t.sess.directSeen &&
		v > t.cfg.DirectApproachMinVelocity &&
		telemetry.Distance(pos, center) < t.sess.approachDist/2 {
		t.acc.DirectApproaches++
		t.sess.directSeen = true
		mutated = true
	}
	if t.sess.hoverOpen {
		t.acc.HoverVelocities = telemetry.PushBounded(
			t.acc.HoverVelocities,
			telemetry.VelocitySample{At: now, PxPerSec: v},
			t.cfg.HoverVelocityCap,
		)
		mutated = true
	}
	if !mutated {
		return nil
	}
	return t.save()
}

// #endregion mouse-move

// #region click

// Click counts a click, records the hover-to-click latency when a hover is
// open, detects double clicks, and walks the hover-without-click counter
// back down (floored at 0).
func (t *Tracker) Click() error {
	now := t.clk.Now()
	t.acc.ClickCount++

	if t.sess.hoverOpen {
		latency := now.Sub(t.sess.hoverStart)
		t.acc.ClickLatenciesMs = telemetry.PushBounded(
			t.acc.ClickLatenciesMs,
			float64(latency.Milliseconds()),
			t.cfg.ClickLatencyCap,
		)
	}
	if !t.sess.lastClickAt.IsZero() && now.Sub(t.sess.lastClickAt) < t.cfg.DoubleClickWindow {
		t.acc.DoubleClickCount++
	}
	t.sess.lastClickAt = now

	if t.acc.HoverWithoutClick > 0 {
		t.acc.HoverWithoutClick--
	}
	return t.save()
}

// #endregion click

// #region retreat

// ApproachRetreat counts an approach-then-withdraw signal. The consumer
// decides when this happened; the tracker only records it.
func (t *Tracker) ApproachRetreat() error {
	t.acc.Retreats++
	return t.save()
}

// #endregion retreat

// #region reset

// Reset restores defaults and clears the persisted snapshot.
func (t *Tracker) Reset() error {
	t.acc = Accumulator{}
	t.sess = session{}
	return persist.Reset(t.st, Kind, t.id)
}

// #endregion reset

func (t *Tracker) save() error {
	return persist.Save(t.st, Kind, t.id, t.acc)
}
