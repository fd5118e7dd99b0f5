package replay

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"percept/internal/event"
	"percept/internal/store"
)

var replayBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// studyFixture is a 2.5s visit with deep scrolling and little pointer
// wandering: a thorough study session.
func studyFixture() *Fixture {
	return &Fixture{
		Description: "thorough study visit",
		Config:      DefaultFixtureConfig(),
		Events: []event.Event{
			{At: replayBase, Type: event.TypeSessionEnter, Subject: "landing"},
			{At: replayBase.Add(time.Second), Type: event.TypeSessionMove, Subject: "landing", X: 200, Y: 200},
			{At: replayBase.Add(1500 * time.Millisecond), Type: event.TypeSessionDepth, Subject: "landing", Depth: 0.6},
			{At: replayBase.Add(2500 * time.Millisecond), Type: event.TypeSessionLeave, Subject: "landing"},
		},
		Expected: []FixtureExpected{{Subject: "landing", Mood: "thorough"}},
	}
}

func TestRun_StudyVisit(t *testing.T) {
	res, err := Run(studyFixture())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Passed() {
		t.Fatalf("failures: %v", res.Failures)
	}
	snap := res.Snapshots["landing"]
	if snap.Recall.Reveal != 0.15 {
		t.Fatalf("reveal: got %f, want 0.15", snap.Recall.Reveal)
	}
}

func TestRun_FastScanIsSearching(t *testing.T) {
	f := &Fixture{
		Description: "fast scan",
		Config:      DefaultFixtureConfig(),
		Expected:    []FixtureExpected{{Subject: "page", Intent: "searching", Layout: "compact"}},
	}
	y := 0.0
	at := replayBase
	for i := 0; i < 5; i++ {
		f.Events = append(f.Events, event.Event{
			At: at, Type: event.TypePageScroll, Subject: "page", ScrollY: y, ContainerHeight: 900,
		})
		at = at.Add(100 * time.Millisecond)
		y += 40
	}

	res, err := Run(f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Passed() {
		t.Fatalf("failures: %v", res.Failures)
	}

	// The browsing-to-searching transition shows up in the change log.
	var seen bool
	for _, c := range res.Changes {
		if c.Classifier == "intent" && c.ToLabel == "searching" && c.Rule == "fast-scan" {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("missing searching transition in %+v", res.Changes)
	}
}

func TestRun_PauseTimersFireBetweenEvents(t *testing.T) {
	// Slow tiny scrolls a second apart: every gap crosses the 800ms pause
	// debounce, so the fake clock must fire the timer during Set.
	f := &Fixture{
		Description: "paused on target",
		Config:      DefaultFixtureConfig(),
	}
	at := replayBase
	f.Events = append(f.Events, event.Event{At: at, Type: event.TypeFocus, Subject: "page", ElementID: "price"})
	at = at.Add(600 * time.Millisecond)
	f.Events = append(f.Events, event.Event{At: at, Type: event.TypeFocus, Subject: "page", ElementID: "buy"})
	at = at.Add(900 * time.Millisecond)
	f.Events = append(f.Events, event.Event{At: at, Type: event.TypeFocus, Subject: "page"})
	y := 0.0
	for i := 0; i < 7; i++ {
		f.Events = append(f.Events, event.Event{
			At: at, Type: event.TypePageScroll, Subject: "page", ScrollY: y, ContainerHeight: 900,
		})
		at = at.Add(time.Second)
		y += 3
	}
	f.Expected = []FixtureExpected{{Subject: "page", Intent: "deciding", Layout: "focused"}}

	res, err := Run(f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Passed() {
		t.Fatalf("failures: %v", res.Failures)
	}
}

func TestRun_ReportsExpectationFailures(t *testing.T) {
	f := studyFixture()
	f.Expected = []FixtureExpected{
		{Subject: "landing", Mood: "impatient"},
		{Subject: "ghost", Intent: "browsing"},
	}

	res, err := Run(f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Passed() {
		t.Fatal("expected failures")
	}
	if len(res.Failures) != 2 {
		t.Fatalf("failures: %v", res.Failures)
	}
	if !strings.Contains(res.Failures[0], "landing") {
		t.Fatalf("failure should name the subject: %q", res.Failures[0])
	}
}

func TestRun_Deterministic(t *testing.T) {
	first, err := Run(studyFixture())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := Run(studyFixture())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff(first.Snapshots, second.Snapshots); diff != "" {
		t.Fatalf("snapshots differ (-first +second):\n%s", diff)
	}
}

func TestRunOn_SnapshotsCarryAcrossRuns(t *testing.T) {
	st := store.NewMemStore()
	first, err := RunOn(studyFixture(), st)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := RunOn(studyFixture(), st)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if got := second.Snapshots["landing"].Recall.Recognition; got <= first.Snapshots["landing"].Recall.Recognition {
		t.Fatalf("recognition did not grow across runs: %f then %f",
			first.Snapshots["landing"].Recall.Recognition, got)
	}
}
