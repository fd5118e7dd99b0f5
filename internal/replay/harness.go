package replay

import (
	"fmt"
	"sort"

	"percept/internal/clock"
	"percept/internal/event"
	"percept/internal/store"
)

// #region types

// Result captures the outcome of replaying one fixture.
type Result struct {
	// Changes are the label transitions in timeline order.
	Changes []event.Change
	// Snapshots are the final profiles per subject.
	Snapshots map[string]event.Snapshot
	// Failures are human-readable expectation mismatches, empty on pass.
	Failures []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// #endregion types

// #region run

// Run replays a fixture's events in order on a fake clock seeded from the
// first event, entirely against an in-memory store. Identical fixtures
// always produce identical results.
func Run(f *Fixture) (*Result, error) {
	return RunOn(f, store.NewMemStore())
}

// RunOn replays a fixture against an existing store, so prior snapshots
// participate in hydration.
func RunOn(f *Fixture, st store.Store) (*Result, error) {
	if len(f.Events) == 0 {
		return nil, fmt.Errorf("fixture has no events")
	}
	clk := clock.NewFake(f.Events[0].At)
	d := event.NewDispatcher(f.Config.ToConfigs(), clk, clk, st)

	res := &Result{Snapshots: make(map[string]event.Snapshot)}
	d.OnChange(func(c event.Change) { res.Changes = append(res.Changes, c) })

	subjects := make(map[string]struct{})
	for i, ev := range f.Events {
		// Advancing fires any due pause timers before the event applies.
		clk.Set(ev.At)
		if err := d.Apply(ev); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		subjects[ev.Subject] = struct{}{}
	}

	names := make([]string, 0, len(subjects))
	for s := range subjects {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		snap, err := d.Profiles(s)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", s, err)
		}
		res.Snapshots[s] = snap
	}

	res.Failures = check(f.Expected, res.Snapshots)
	return res, nil
}

// #endregion run

// #region check

func check(expected []FixtureExpected, snapshots map[string]event.Snapshot) []string {
	var failures []string
	for _, exp := range expected {
		snap, ok := snapshots[exp.Subject]
		if !ok {
			failures = append(failures, fmt.Sprintf("%s: no events for subject", exp.Subject))
			continue
		}
		if exp.Personality != "" && string(snap.Behavior.Personality) != exp.Personality {
			failures = append(failures, fmt.Sprintf("%s: personality %s, want %s",
				exp.Subject, snap.Behavior.Personality, exp.Personality))
		}
		if exp.Mood != "" && string(snap.Recall.Mood) != exp.Mood {
			failures = append(failures, fmt.Sprintf("%s: mood %s, want %s",
				exp.Subject, snap.Recall.Mood, exp.Mood))
		}
		if exp.Speed != "" && string(snap.Recall.Speed) != exp.Speed {
			failures = append(failures, fmt.Sprintf("%s: reveal speed %s, want %s",
				exp.Subject, snap.Recall.Speed, exp.Speed))
		}
		if exp.Intent != "" && string(snap.Intent.Intent) != exp.Intent {
			failures = append(failures, fmt.Sprintf("%s: intent %s, want %s",
				exp.Subject, snap.Intent.Intent, exp.Intent))
		}
		if exp.Layout != "" && string(snap.Intent.Layout) != exp.Layout {
			failures = append(failures, fmt.Sprintf("%s: layout %s, want %s",
				exp.Subject, snap.Intent.Layout, exp.Layout))
		}
	}
	return failures
}

// #endregion check
