package intent

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"percept/internal/clock"
	"percept/internal/store"
	"percept/internal/telemetry"
)

var pageBounds = telemetry.Bounds{Left: 0, Top: 0, Width: 1280, Height: 900}

func newTestTracker(t *testing.T) (*Tracker, *clock.Fake, *store.MemStore) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemStore()
	tr, err := NewTracker("page", DefaultConfig(), clk, clk, st)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tr, clk, st
}

func mustScroll(t *testing.T, tr *Tracker, y float64) {
	t.Helper()
	if err := tr.Scroll(y, 900); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
}

func TestFastScrollingIsSearching(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	// Five scroll events at ~400 px/s, no pauses, no direction changes.
	y := 0.0
	for i := 0; i < 5; i++ {
		mustScroll(t, tr, y)
		clk.Advance(100 * time.Millisecond)
		y += 40
	}

	p := tr.Profile()
	if p.Intent != IntentSearching {
		t.Fatalf("intent: got %s, want searching", p.Intent)
	}
	if p.Urgency != 0.8 {
		t.Fatalf("urgency: got %f, want 0.8", p.Urgency)
	}
	if p.Layout != LayoutCompact {
		t.Fatalf("layout: got %s, want compact", p.Layout)
	}

	acc := tr.Accumulator()
	if acc.PauseCount != 0 {
		t.Fatalf("pauses: got %d, want 0", acc.PauseCount)
	}
	if acc.DirectionChanges != 0 {
		t.Fatalf("direction changes: got %d, want 0", acc.DirectionChanges)
	}
}

func TestSlowDwellIsReading(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	// Long focus dwells.
	for _, id := range []string{"para-1", "para-2", "para-3"} {
		if err := tr.FocusChange(id); err != nil {
			t.Fatalf("FocusChange: %v", err)
		}
		clk.Advance(1500 * time.Millisecond)
	}

	// Slow scrolls with >800ms gaps: each gap counts a pause.
	y := 0.0
	for i := 0; i < 6; i++ {
		mustScroll(t, tr, y)
		clk.Advance(time.Second)
		y += 30
	}

	p := tr.Profile()
	if p.Intent != IntentReading {
		t.Fatalf("intent: got %s, want reading", p.Intent)
	}
	if p.Attention != 0.9 || p.Urgency != 0.1 {
		t.Fatalf("scores: got %+v", p)
	}
	if p.Layout != LayoutFocused {
		t.Fatalf("layout: got %s, want focused", p.Layout)
	}
}

func TestZigzagScrollingIsComparing(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	// Alternate 20px up/down every 100ms: ~200 px/s with a direction flip
	// on every sample after the second.
	y := 100.0
	for i := 0; i < 9; i++ {
		mustScroll(t, tr, y)
		clk.Advance(100 * time.Millisecond)
		if i%2 == 0 {
			y += 20
		} else {
			y -= 20
		}
	}

	acc := tr.Accumulator()
	if acc.DirectionChanges < 6 {
		t.Fatalf("direction changes: got %d, want >=6", acc.DirectionChanges)
	}

	p := tr.Profile()
	if p.Intent != IntentComparing {
		t.Fatalf("intent: got %s, want comparing", p.Intent)
	}
	if p.Layout != LayoutExpanded {
		t.Fatalf("layout: got %s, want expanded", p.Layout)
	}
}

func TestManyPausesLowVelocityIsDeciding(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	if err := tr.FocusChange("buy-button"); err != nil {
		t.Fatalf("FocusChange: %v", err)
	}
	clk.Advance(600 * time.Millisecond)
	if err := tr.FocusChange("price"); err != nil {
		t.Fatalf("FocusChange: %v", err)
	}

	// Tiny scrolls (below the deadband) with pause-length gaps.
	y := 0.0
	for i := 0; i < 7; i++ {
		mustScroll(t, tr, y)
		clk.Advance(time.Second)
		y += 3
	}

	acc := tr.Accumulator()
	if acc.PauseCount < 6 {
		t.Fatalf("pauses: got %d, want >=6", acc.PauseCount)
	}

	p := tr.Profile()
	if p.Intent != IntentDeciding {
		t.Fatalf("intent: got %s, want deciding", p.Intent)
	}
	if p.Attention != 0.85 || p.Urgency != 0.6 {
		t.Fatalf("scores: got %+v", p)
	}
}

func TestIdleIsLeaving(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	clk.Advance(6 * time.Second)
	p := tr.Profile()
	if p.Intent != IntentLeaving {
		t.Fatalf("intent: got %s, want leaving", p.Intent)
	}
	if p.Urgency != 0.9 || p.Layout != LayoutMinimal {
		t.Fatalf("profile: got %+v", p)
	}
}

func TestBoltingVelocityIsLeaving(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	// Two pauses first so the searching rule cannot claim the velocity.
	mustScroll(t, tr, 0)
	clk.Advance(time.Second)
	mustScroll(t, tr, 10)
	clk.Advance(time.Second)

	// Then very fast scrolling: 600 px/s.
	y := 20.0
	for i := 0; i < 6; i++ {
		mustScroll(t, tr, y)
		clk.Advance(100 * time.Millisecond)
		y += 60
	}

	p := tr.Profile()
	if p.Intent != IntentLeaving {
		t.Fatalf("intent: got %s, want leaving", p.Intent)
	}
}

func TestDefaultIsBrowsing(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	p := tr.Profile()
	if p.Intent != IntentBrowsing {
		t.Fatalf("intent: got %s, want browsing", p.Intent)
	}
	if p.Confidence != 0.5 || p.Attention != 0.5 || p.Urgency != 0.3 {
		t.Fatalf("scores: got %+v", p)
	}
	if p.Layout != LayoutExpanded {
		t.Fatalf("layout: got %s, want expanded", p.Layout)
	}
}

func TestPauseTimerDebounce(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	// Scrolls inside the debounce window keep re-arming: no pause.
	mustScroll(t, tr, 0)
	clk.Advance(500 * time.Millisecond)
	mustScroll(t, tr, 50)
	clk.Advance(500 * time.Millisecond)
	mustScroll(t, tr, 100)
	if got := tr.Accumulator().PauseCount; got != 0 {
		t.Fatalf("pauses before quiet period: got %d, want 0", got)
	}

	// One quiet period, one pause: the timer is one-shot.
	clk.Advance(2 * time.Second)
	if got := tr.Accumulator().PauseCount; got != 1 {
		t.Fatalf("pauses after quiet period: got %d, want 1", got)
	}
}

func TestHistoriesBounded(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	y := 0.0
	for i := 0; i < 200; i++ {
		mustScroll(t, tr, y)
		clk.Advance(50 * time.Millisecond)
		y += 10
		if got := len(tr.Accumulator().ScrollPatterns); got > 30 {
			t.Fatalf("scroll history exceeded cap at %d: %d", i, got)
		}
	}
	for i := 0; i < 50; i++ {
		if err := tr.FocusChange(string(rune('a' + i%26))); err != nil {
			t.Fatalf("FocusChange: %v", err)
		}
		clk.Advance(100 * time.Millisecond)
		if got := len(tr.Accumulator().FocusEvents); got > 20 {
			t.Fatalf("focus history exceeded cap at %d: %d", i, got)
		}
	}
	acc := tr.Accumulator()
	if len(acc.ScrollPatterns) != 30 || len(acc.FocusEvents) != 20 {
		t.Fatalf("history sizes: %d scrolls, %d focus", len(acc.ScrollPatterns), len(acc.FocusEvents))
	}
}

func TestEdgeProximityIsLivenessOnly(t *testing.T) {
	tr, clk, _ := newTestTracker(t)

	// Idle long enough to read as leaving, then a pointer move near the
	// edge: activity refreshes, classification has nothing else to go on.
	clk.Advance(6 * time.Second)
	if err := tr.MouseMove(5, 450, pageBounds); err != nil {
		t.Fatalf("MouseMove: %v", err)
	}
	if got := tr.Profile().Intent; got != IntentBrowsing {
		t.Fatalf("intent after edge move: got %s, want browsing", got)
	}

	// A center move does not refresh activity.
	clk.Advance(6 * time.Second)
	if err := tr.MouseMove(640, 450, pageBounds); err != nil {
		t.Fatalf("MouseMove: %v", err)
	}
	if got := tr.Profile().Intent; got != IntentLeaving {
		t.Fatalf("intent after center move: got %s, want leaving", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	tr, clk, st := newTestTracker(t)

	y := 0.0
	for i := 0; i < 4; i++ {
		mustScroll(t, tr, y)
		clk.Advance(time.Second)
		y += 30
	}
	if err := tr.FocusChange("a"); err != nil {
		t.Fatalf("FocusChange: %v", err)
	}
	clk.Advance(time.Second)
	if err := tr.FocusChange("b"); err != nil {
		t.Fatalf("FocusChange: %v", err)
	}

	reloaded, err := NewTracker("page", DefaultConfig(), clk, clk, st)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	// Entry/activity stamps are per-visit, not part of the round trip.
	opt := cmpopts.IgnoreFields(Accumulator{}, "EnteredAt", "LastActivityAt")
	if diff := cmp.Diff(tr.Accumulator(), reloaded.Accumulator(), opt); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestResetRestoresDefaultsAndClearsStore(t *testing.T) {
	tr, clk, st := newTestTracker(t)

	entered := tr.Accumulator().EnteredAt
	y := 0.0
	for i := 0; i < 3; i++ {
		mustScroll(t, tr, y)
		clk.Advance(time.Second)
		y += 30
	}
	if err := tr.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	acc := tr.Accumulator()
	if len(acc.ScrollPatterns) != 0 || acc.PauseCount != 0 || acc.DirectionChanges != 0 {
		t.Fatalf("accumulator not defaulted: %+v", acc)
	}
	if !acc.EnteredAt.After(entered) {
		t.Fatal("entry timestamp not re-stamped on reset")
	}
	if _, found, _ := st.Get(store.Key(Kind, "page")); found {
		t.Fatal("persisted snapshot survived reset")
	}
	if got := tr.Profile().Intent; got != IntentBrowsing {
		t.Fatalf("default profile intent: got %s, want browsing", got)
	}
}

func TestScoresAlwaysClamped(t *testing.T) {
	now := time.Unix(1000, 0)
	extremes := []Accumulator{
		{},
		{PauseCount: 1 << 20, DirectionChanges: 1 << 20},
		{ScrollPatterns: []ScrollSample{{Velocity: 1e9}, {Velocity: 1e9}}},
		{FocusEvents: []FocusSample{{DurationMs: 1e12}}, PauseCount: 10},
	}
	for i, acc := range extremes {
		p := Derive(acc, DefaultConfig(), now)
		for name, v := range map[string]float64{
			"confidence": p.Confidence,
			"attention":  p.Attention,
			"urgency":    p.Urgency,
		} {
			if v < 0 || v > 1 {
				t.Errorf("case %d: %s out of range: %f", i, name, v)
			}
		}
	}
}

func TestDeriveDeterministic(t *testing.T) {
	now := time.Unix(5000, 0)
	acc := Accumulator{
		ScrollPatterns:   []ScrollSample{{Velocity: 350}, {Velocity: 420}},
		PauseCount:       1,
		DirectionChanges: 1,
		LastActivityAt:   now.Add(-time.Second),
	}
	first := Derive(acc, DefaultConfig(), now)
	for i := 0; i < 10; i++ {
		if got := Derive(acc, DefaultConfig(), now); got != first {
			t.Fatalf("derivation not deterministic: %+v vs %+v", got, first)
		}
	}
	if first.Intent != IntentSearching {
		t.Fatalf("intent: got %s, want searching", first.Intent)
	}
	if math.Abs(first.Confidence-minf(0.9, 385.0/500)) > 1e-9 {
		t.Fatalf("confidence: got %f", first.Confidence)
	}
}
