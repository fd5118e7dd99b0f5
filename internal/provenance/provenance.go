// Package provenance records profile-label transitions so a derived
// classification can be traced back to the rule and signals that
// produced it.
package provenance

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS profile_transitions (
	id            TEXT PRIMARY KEY,
	classifier    TEXT NOT NULL,
	subject_id    TEXT NOT NULL,
	from_label    TEXT,
	to_label      TEXT NOT NULL,
	rule          TEXT,
	profile_json  TEXT,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_subject
	ON profile_transitions(classifier, subject_id, created_at);
`

// EnsureSchema creates the transition table if it is missing.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("ensure provenance schema: %w", err)
	}
	return nil
}

// #endregion schema

// #region entry

// Entry is a single row in the profile_transitions table.
type Entry struct {
	ID          string
	Classifier  string // "behavior" | "recall" | "intent"
	SubjectID   string
	FromLabel   string
	ToLabel     string
	Rule        string // winning rule name, empty for the fallback
	ProfileJSON string
	CreatedAt   time.Time
}

// #endregion entry

// #region log-transition

// LogTransition writes a transition entry. A missing id or timestamp is
// filled in.
func LogTransition(db *sql.DB, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO profile_transitions (id, classifier, subject_id, from_label, to_label, rule, profile_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Classifier,
		entry.SubjectID,
		nullIfEmpty(entry.FromLabel),
		entry.ToLabel,
		nullIfEmpty(entry.Rule),
		nullIfEmpty(entry.ProfileJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log transition: %w", err)
	}
	return nil
}

// #endregion log-transition

// #region tail

// Tail returns the most recent transitions for a classifier, newest
// first. An empty classifier matches all three.
func Tail(db *sql.DB, classifier string, limit int) ([]Entry, error) {
	query := `SELECT id, classifier, subject_id, from_label, to_label, rule, profile_json, created_at
		FROM profile_transitions`
	args := []interface{}{}
	if classifier != "" {
		query += ` WHERE classifier = ?`
		args = append(args, classifier)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var from, rule, profile sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Classifier, &e.SubjectID, &from, &e.ToLabel, &rule, &profile, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.FromLabel = from.String
		e.Rule = rule.String
		e.ProfileJSON = profile.String
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion tail

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
