// Command replay runs a recorded telemetry fixture and compares the
// resulting profiles against the fixture's expectations.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"percept/internal/replay"
	"percept/internal/store"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	dbPath := flag.String("db", "", "replay onto an existing sqlite snapshot store instead of memory")
	verbose := flag.Bool("verbose", false, "print every label transition")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--db path/to/percept.db] [--verbose]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *dbPath, *verbose))
}

func run(fixturePath, dbPath string, verbose bool) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	var res *replay.Result
	if dbPath != "" {
		st, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open db: %v\n", err)
			return 2
		}
		defer st.Close()
		res, err = replay.RunOn(f, st)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay: %v\n", err)
			return 2
		}
	} else {
		res, err = replay.Run(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay: %v\n", err)
			return 2
		}
	}

	printReport(f, res, verbose)
	if !res.Passed() {
		return 1
	}
	return 0
}

// #endregion main

// #region output

func printReport(f *replay.Fixture, res *replay.Result, verbose bool) {
	if f.Description != "" {
		fmt.Printf("Fixture: %s\n", f.Description)
	}
	fmt.Printf("Events: %d | Transitions: %d\n\n", len(f.Events), len(res.Changes))

	if verbose {
		fmt.Printf("%-10s| %-16s| %-12s -> %-12s| %s\n", "Classifier", "Subject", "From", "To", "Rule")
		for _, c := range res.Changes {
			from := c.FromLabel
			if from == "" {
				from = "-"
			}
			rule := c.Rule
			if rule == "" {
				rule = "fallback"
			}
			fmt.Printf("%-10s| %-16s| %-12s -> %-12s| %s\n", c.Classifier, c.SubjectID, from, c.ToLabel, rule)
		}
		fmt.Println()
	}

	subjects := make([]string, 0, len(res.Snapshots))
	for subject := range res.Snapshots {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	for _, subject := range subjects {
		snap := res.Snapshots[subject]
		fmt.Printf("%s: personality=%s mood=%s speed=%s intent=%s layout=%s\n",
			subject, snap.Behavior.Personality, snap.Recall.Mood, snap.Recall.Speed,
			snap.Intent.Intent, snap.Intent.Layout)
	}

	if res.Passed() {
		fmt.Printf("\nPASS: %d expectation(s) held\n", len(f.Expected))
		return
	}
	fmt.Println("\nFAIL:")
	for _, failure := range res.Failures {
		fmt.Printf("  %s\n", failure)
	}
}

// #endregion output
