// Command inspect dumps the snapshots and recent profile transitions
// held in a percept sqlite store.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"percept/internal/behavior"
	"percept/internal/intent"
	"percept/internal/provenance"
	"percept/internal/recall"
	"percept/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to percept.db")
	classifier := flag.String("classifier", "", "filter to one classifier: behavior, recall, intent")
	last := flag.Int("last", 10, "show N most recent profile transitions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/percept.db [--classifier name] [--last N] [--json]")
		os.Exit(2)
	}

	if err := run(*dbPath, *classifier, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, classifier string, last int, jsonOut bool) error {
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer s.Close()

	rows, err := collectSnapshots(s, classifier)
	if err != nil {
		return err
	}

	var transitions []provenance.Entry
	if last > 0 {
		transitions, err = provenance.Tail(s.DB(), classifier, last)
		if err != nil {
			// A store written without provenance has no transitions table.
			transitions = nil
		}
	}

	if jsonOut {
		return printJSON(struct {
			Snapshots   []snapshotRow      `json:"snapshots"`
			Transitions []provenance.Entry `json:"transitions,omitempty"`
		}{rows, transitions})
	}
	printText(rows, transitions)
	return nil
}

// #endregion main

// #region snapshots

type snapshotRow struct {
	Classifier string      `json:"classifier"`
	SubjectID  string      `json:"subject_id"`
	Label      string      `json:"label"`
	Detail     string      `json:"detail"`
	Profile    interface{} `json:"profile"`
}

func collectSnapshots(s *store.SQLiteStore, classifier string) ([]snapshotRow, error) {
	prefix := store.KeyPrefix
	if classifier != "" {
		prefix = store.KeyPrefix + classifier + ":"
	}
	keys, err := s.ListKeys(prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	rows := make([]snapshotRow, 0, len(keys))
	for _, key := range keys {
		kind, id, ok := splitKey(key)
		if !ok {
			continue
		}
		value, found, err := s.Get(key)
		if err != nil || !found {
			continue
		}
		row, err := decodeSnapshot(kind, id, value)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitKey(key string) (kind, id string, ok bool) {
	rest, ok := strings.CutPrefix(key, store.KeyPrefix)
	if !ok {
		return "", "", false
	}
	kind, id, ok = strings.Cut(rest, ":")
	return kind, id, ok
}

func decodeSnapshot(kind, id string, value []byte) (snapshotRow, error) {
	switch kind {
	case behavior.Kind:
		var acc behavior.Accumulator
		if err := json.Unmarshal(value, &acc); err != nil {
			return snapshotRow{}, err
		}
		p := behavior.Derive(acc)
		return snapshotRow{
			Classifier: kind,
			SubjectID:  id,
			Label:      string(p.Personality),
			Detail: fmt.Sprintf("hovers=%d clicks=%d familiarity=%.2f confidence=%.2f",
				acc.HoverCount, acc.ClickCount, p.Familiarity, p.Confidence),
			Profile: p,
		}, nil
	case recall.Kind:
		var acc recall.Accumulator
		if err := json.Unmarshal(value, &acc); err != nil {
			return snapshotRow{}, err
		}
		p := recall.Derive(acc)
		return snapshotRow{
			Classifier: kind,
			SubjectID:  id,
			Label:      string(p.Mood),
			Detail: fmt.Sprintf("visits=%d recognition=%.2f reveal=%.2f speed=%s",
				acc.VisitCount, p.Recognition, p.Reveal, p.Speed),
			Profile: p,
		}, nil
	case intent.Kind:
		var acc intent.Accumulator
		if err := json.Unmarshal(value, &acc); err != nil {
			return snapshotRow{}, err
		}
		p := intent.Derive(acc, intent.DefaultConfig(), time.Now().UTC())
		return snapshotRow{
			Classifier: kind,
			SubjectID:  id,
			Label:      string(p.Intent),
			Detail: fmt.Sprintf("scrolls=%d pauses=%d layout=%s",
				len(acc.ScrollPatterns), acc.PauseCount, p.Layout),
			Profile: p,
		}, nil
	default:
		return snapshotRow{}, fmt.Errorf("unknown snapshot kind %q", kind)
	}
}

// #endregion snapshots

// #region output

func printText(rows []snapshotRow, transitions []provenance.Entry) {
	if len(rows) == 0 {
		fmt.Println("no snapshots")
	} else {
		fmt.Printf("%-10s| %-20s| %-12s| %s\n", "Classifier", "Subject", "Label", "Detail")
		for _, r := range rows {
			fmt.Printf("%-10s| %-20s| %-12s| %s\n", r.Classifier, r.SubjectID, r.Label, r.Detail)
		}
	}

	if len(transitions) == 0 {
		return
	}
	fmt.Printf("\nRecent transitions:\n")
	for _, tr := range transitions {
		rule := tr.Rule
		if rule == "" {
			rule = "fallback"
		}
		from := tr.FromLabel
		if from == "" {
			from = "-"
		}
		fmt.Printf("  %s  %-10s %-20s %-12s -> %-12s (%s)\n",
			tr.CreatedAt.Format("2006-01-02T15:04:05Z"), tr.Classifier, tr.SubjectID,
			from, tr.ToLabel, rule)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
