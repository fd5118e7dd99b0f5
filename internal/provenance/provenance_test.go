package provenance

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// #endregion helpers

// #region log-transition-tests
func TestLogTransition_Success(t *testing.T) {
	db := setupDB(t)

	entry := Entry{
		Classifier:  "behavior",
		SubjectID:   "cta-button",
		FromLabel:   "hesitant",
		ToLabel:     "curious",
		Rule:        "engaged-dwelling",
		ProfileJSON: `{"personality":"curious"}`,
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogTransition(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM profile_transitions").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var id, toLabel string
	db.QueryRow("SELECT id, to_label FROM profile_transitions").Scan(&id, &toLabel)
	if id == "" {
		t.Error("expected auto-filled id")
	}
	if toLabel != "curious" {
		t.Errorf("expected to_label 'curious', got %q", toLabel)
	}
}

func TestLogTransition_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)

	before := time.Now().UTC()
	if err := LogTransition(db, Entry{Classifier: "intent", SubjectID: "page", ToLabel: "searching"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM profile_transitions").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogTransition_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)

	if err := LogTransition(db, Entry{Classifier: "recall", SubjectID: "s1", ToLabel: "curious"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var from, rule, profile sql.NullString
	db.QueryRow("SELECT from_label, rule, profile_json FROM profile_transitions").Scan(&from, &rule, &profile)
	if from.Valid {
		t.Error("expected NULL from_label for empty string")
	}
	if rule.Valid {
		t.Error("expected NULL rule for empty string")
	}
	if profile.Valid {
		t.Error("expected NULL profile_json for empty string")
	}
}

func TestLogTransition_Error(t *testing.T) {
	db := setupDB(t)
	db.Close()

	if err := LogTransition(db, Entry{Classifier: "intent", SubjectID: "p", ToLabel: "reading"}); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-transition-tests

// #region tail-tests
func TestTail_FiltersAndOrders(t *testing.T) {
	db := setupDB(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seed := []Entry{
		{Classifier: "intent", SubjectID: "p", ToLabel: "browsing", CreatedAt: base},
		{Classifier: "intent", SubjectID: "p", FromLabel: "browsing", ToLabel: "searching", Rule: "fast-scan", CreatedAt: base.Add(time.Minute)},
		{Classifier: "behavior", SubjectID: "b", ToLabel: "calm", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range seed {
		if err := LogTransition(db, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := Tail(db, "intent", 10)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 intent rows, got %d", len(got))
	}
	if got[0].ToLabel != "searching" || got[1].ToLabel != "browsing" {
		t.Errorf("expected newest first, got %q then %q", got[0].ToLabel, got[1].ToLabel)
	}
	if got[0].Rule != "fast-scan" {
		t.Errorf("expected rule 'fast-scan', got %q", got[0].Rule)
	}

	all, err := Tail(db, "", 2)
	if err != nil {
		t.Fatalf("tail all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(all))
	}
	if all[0].Classifier != "behavior" {
		t.Errorf("expected newest row first, got %q", all[0].Classifier)
	}
}

// #endregion tail-tests
