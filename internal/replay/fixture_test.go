package replay

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"percept/internal/event"
)

func TestLoadFixture_MissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestLoadFixture_NoEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	f := &Fixture{Description: "empty", Config: DefaultFixtureConfig()}
	if err := SaveFixture(f, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for fixture without events")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	want := &Fixture{
		Description: "single click",
		Config:      DefaultFixtureConfig(),
		Events: []event.Event{
			{At: base, Type: event.TypeHoverStart, Subject: "cta"},
			{At: base.Add(100 * time.Millisecond), Type: event.TypeClick, Subject: "cta"},
		},
		Expected: []FixtureExpected{{Subject: "cta", Personality: "calm"}},
	}

	if err := SaveFixture(want, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultFixtureConfigMatchesClassifierDefaults(t *testing.T) {
	got := DefaultFixtureConfig().ToConfigs()
	want := event.DefaultConfigs()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}
