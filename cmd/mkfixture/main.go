// Command mkfixture synthesizes replay fixtures for well-known telemetry
// scenarios, so classifier changes can be checked against a stable
// reference timeline.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"percept/internal/event"
	"percept/internal/replay"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// #region main

func main() {
	scenario := flag.String("scenario", "", "scenario name, see --list")
	subject := flag.String("subject", "landing", "subject id used in the fixture")
	outPath := flag.String("out", "", "output fixture JSON path")
	list := flag.Bool("list", false, "list available scenarios")
	flag.Parse()

	if *list {
		for _, name := range scenarioNames() {
			fmt.Println(name)
		}
		return
	}
	if *scenario == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: mkfixture --scenario name --out path/to/fixture.json [--subject id]")
		os.Exit(2)
	}

	build, ok := scenarios[*scenario]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown scenario %q (available: %s)\n", *scenario, strings.Join(scenarioNames(), ", "))
		os.Exit(2)
	}

	f := build(*subject)
	if err := replay.SaveFixture(f, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d events, %d expectations)\n", *outPath, len(f.Events), len(f.Expected))
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// #endregion main

// #region scenarios

var scenarios = map[string]func(subject string) *replay.Fixture{
	"study":     studyScenario,
	"searching": searchingScenario,
	"deciding":  decidingScenario,
	"returning": returningScenario,
	"lingering": lingeringScenario,
}

// studyScenario is a single deep 2.5s visit: study layer, thorough mood.
func studyScenario(subject string) *replay.Fixture {
	return &replay.Fixture{
		Description: "one deep visit, read to 60% depth",
		Config:      replay.DefaultFixtureConfig(),
		Events: []event.Event{
			{At: base, Type: event.TypeSessionEnter, Subject: subject},
			{At: base.Add(time.Second), Type: event.TypeSessionMove, Subject: subject, X: 200, Y: 200},
			{At: base.Add(1500 * time.Millisecond), Type: event.TypeSessionDepth, Subject: subject, Depth: 0.6},
			{At: base.Add(2500 * time.Millisecond), Type: event.TypeSessionLeave, Subject: subject},
		},
		Expected: []replay.FixtureExpected{
			{Subject: subject, Mood: "thorough", Speed: "medium"},
		},
	}
}

// searchingScenario is sustained fast scrolling with no pauses.
func searchingScenario(subject string) *replay.Fixture {
	f := &replay.Fixture{
		Description: "fast uninterrupted scanning",
		Config:      replay.DefaultFixtureConfig(),
		Expected: []replay.FixtureExpected{
			{Subject: subject, Intent: "searching", Layout: "compact"},
		},
	}
	at, y := base, 0.0
	for i := 0; i < 5; i++ {
		f.Events = append(f.Events, event.Event{
			At: at, Type: event.TypePageScroll, Subject: subject, ScrollY: y, ContainerHeight: 900,
		})
		at = at.Add(100 * time.Millisecond)
		y += 40
	}
	return f
}

// decidingScenario is short focus dwells plus tiny scrolls with long
// pauses between them.
func decidingScenario(subject string) *replay.Fixture {
	f := &replay.Fixture{
		Description: "hovering over the same spot, barely scrolling",
		Config:      replay.DefaultFixtureConfig(),
		Expected: []replay.FixtureExpected{
			{Subject: subject, Intent: "deciding", Layout: "focused"},
		},
	}
	at := base
	f.Events = append(f.Events, event.Event{At: at, Type: event.TypeFocus, Subject: subject, ElementID: "price"})
	at = at.Add(600 * time.Millisecond)
	f.Events = append(f.Events, event.Event{At: at, Type: event.TypeFocus, Subject: subject, ElementID: "buy"})
	at = at.Add(900 * time.Millisecond)
	f.Events = append(f.Events, event.Event{At: at, Type: event.TypeFocus, Subject: subject})
	y := 0.0
	for i := 0; i < 7; i++ {
		f.Events = append(f.Events, event.Event{
			At: at, Type: event.TypePageScroll, Subject: subject, ScrollY: y, ContainerHeight: 900,
		})
		at = at.Add(time.Second)
		y += 3
	}
	return f
}

// returningScenario is two short visits separated by a two minute gap,
// so the second closes as a return layer.
func returningScenario(subject string) *replay.Fixture {
	return &replay.Fixture{
		Description: "quick visit, two minutes away, quick visit back",
		Config:      replay.DefaultFixtureConfig(),
		Events: []event.Event{
			{At: base, Type: event.TypeSessionEnter, Subject: subject},
			{At: base.Add(time.Second), Type: event.TypeSessionLeave, Subject: subject},
			{At: base.Add(2 * time.Minute), Type: event.TypeSessionEnter, Subject: subject},
			{At: base.Add(2*time.Minute + time.Second), Type: event.TypeSessionLeave, Subject: subject},
		},
		Expected: []replay.FixtureExpected{
			{Subject: subject, Mood: "curious", Speed: "fast"},
		},
	}
}

// lingeringScenario is repeated hovers that never turn into clicks.
func lingeringScenario(subject string) *replay.Fixture {
	f := &replay.Fixture{
		Description: "hovering again and again without committing",
		Config:      replay.DefaultFixtureConfig(),
		Expected: []replay.FixtureExpected{
			{Subject: subject, Personality: "inviting"},
		},
	}
	at := base
	for i := 0; i < 6; i++ {
		f.Events = append(f.Events, event.Event{At: at, Type: event.TypeHoverStart, Subject: subject})
		at = at.Add(time.Second)
		f.Events = append(f.Events, event.Event{At: at, Type: event.TypeHoverEnd, Subject: subject})
		at = at.Add(500 * time.Millisecond)
	}
	return f
}

// #endregion scenarios
