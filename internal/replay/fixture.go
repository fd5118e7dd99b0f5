// Package replay runs recorded telemetry timelines against the
// classifiers on a fake clock, so a fixture always produces the same
// profiles regardless of when or where it runs.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"percept/internal/behavior"
	"percept/internal/event"
	"percept/internal/intent"
	"percept/internal/recall"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string            `json:"description"`
	Config      FixtureConfig     `json:"config"`
	Events      []event.Event     `json:"events"`
	Expected    []FixtureExpected `json:"expected"`
}

// FixtureConfig mirrors the classifier configs with JSON tags and
// millisecond durations.
type FixtureConfig struct {
	Behavior FixtureBehaviorConfig `json:"behavior"`
	Recall   FixtureRecallConfig   `json:"recall"`
	Intent   FixtureIntentConfig   `json:"intent"`
}

// FixtureBehaviorConfig mirrors behavior.Config.
type FixtureBehaviorConfig struct {
	HoverVelocityCap          int     `json:"hover_velocity_cap"`
	ClickLatencyCap           int     `json:"click_latency_cap"`
	DirectApproachMinVelocity float64 `json:"direct_approach_min_velocity"`
	DoubleClickWindowMs       int     `json:"double_click_window_ms"`
}

// FixtureRecallConfig mirrors recall.Config.
type FixtureRecallConfig struct {
	LayerCap            int `json:"layer_cap"`
	FocusPointCap       int `json:"focus_point_cap"`
	GlanceMaxMs         int `json:"glance_max_ms"`
	EngageMaxMs         int `json:"engage_max_ms"`
	ReturnGapMs         int `json:"return_gap_ms"`
	RecognitionWindowMs int `json:"recognition_window_ms"`
	ThoroughMinMs       int `json:"thorough_min_ms"`
}

// FixtureIntentConfig mirrors intent.Config.
type FixtureIntentConfig struct {
	ScrollPatternCap    int     `json:"scroll_pattern_cap"`
	FocusEventCap       int     `json:"focus_event_cap"`
	VelocityWindow      int     `json:"velocity_window"`
	DirectionDeadbandPx float64 `json:"direction_deadband_px"`
	PauseDebounceMs     int     `json:"pause_debounce_ms"`
	EdgeMarginPx        float64 `json:"edge_margin_px"`
	IdleLeavingMs       int     `json:"idle_leaving_ms"`
}

// FixtureExpected asserts the final labels for one subject. Empty fields
// are not checked.
type FixtureExpected struct {
	Subject     string `json:"subject"`
	Personality string `json:"personality,omitempty"`
	Mood        string `json:"mood,omitempty"`
	Speed       string `json:"speed,omitempty"`
	Intent      string `json:"intent,omitempty"`
	Layout      string `json:"layout,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Events) == 0 {
		return nil, fmt.Errorf("fixture %s: no events", path)
	}
	return &f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(f *Fixture, path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// DefaultFixtureConfig mirrors the classifier defaults.
func DefaultFixtureConfig() FixtureConfig {
	b := behavior.DefaultConfig()
	r := recall.DefaultConfig()
	i := intent.DefaultConfig()
	return FixtureConfig{
		Behavior: FixtureBehaviorConfig{
			HoverVelocityCap:          b.HoverVelocityCap,
			ClickLatencyCap:           b.ClickLatencyCap,
			DirectApproachMinVelocity: b.DirectApproachMinVelocity,
			DoubleClickWindowMs:       int(b.DoubleClickWindow.Milliseconds()),
		},
		Recall: FixtureRecallConfig{
			LayerCap:            r.LayerCap,
			FocusPointCap:       r.FocusPointCap,
			GlanceMaxMs:         int(r.GlanceMax.Milliseconds()),
			EngageMaxMs:         int(r.EngageMax.Milliseconds()),
			ReturnGapMs:         int(r.ReturnGap.Milliseconds()),
			RecognitionWindowMs: int(r.RecognitionWindow.Milliseconds()),
			ThoroughMinMs:       int(r.ThoroughMin.Milliseconds()),
		},
		Intent: FixtureIntentConfig{
			ScrollPatternCap:    i.ScrollPatternCap,
			FocusEventCap:       i.FocusEventCap,
			VelocityWindow:      i.VelocityWindow,
			DirectionDeadbandPx: i.DirectionDeadbandPx,
			PauseDebounceMs:     int(i.PauseDebounce.Milliseconds()),
			EdgeMarginPx:        i.EdgeMarginPx,
			IdleLeavingMs:       int(i.IdleLeaving.Milliseconds()),
		},
	}
}

// ToConfigs converts the JSON form into the classifier configs.
func (fc FixtureConfig) ToConfigs() event.Configs {
	return event.Configs{
		Behavior: behavior.Config{
			HoverVelocityCap:          fc.Behavior.HoverVelocityCap,
			ClickLatencyCap:           fc.Behavior.ClickLatencyCap,
			DirectApproachMinVelocity: fc.Behavior.DirectApproachMinVelocity,
			DoubleClickWindow:         time.Duration(fc.Behavior.DoubleClickWindowMs) * time.Millisecond,
		},
		Recall: recall.Config{
			LayerCap:          fc.Recall.LayerCap,
			FocusPointCap:     fc.Recall.FocusPointCap,
			GlanceMax:         time.Duration(fc.Recall.GlanceMaxMs) * time.Millisecond,
			EngageMax:         time.Duration(fc.Recall.EngageMaxMs) * time.Millisecond,
			ReturnGap:         time.Duration(fc.Recall.ReturnGapMs) * time.Millisecond,
			RecognitionWindow: time.Duration(fc.Recall.RecognitionWindowMs) * time.Millisecond,
			ThoroughMin:       time.Duration(fc.Recall.ThoroughMinMs) * time.Millisecond,
		},
		Intent: intent.Config{
			ScrollPatternCap:    fc.Intent.ScrollPatternCap,
			FocusEventCap:       fc.Intent.FocusEventCap,
			VelocityWindow:      fc.Intent.VelocityWindow,
			DirectionDeadbandPx: fc.Intent.DirectionDeadbandPx,
			PauseDebounce:       time.Duration(fc.Intent.PauseDebounceMs) * time.Millisecond,
			EdgeMarginPx:        fc.Intent.EdgeMarginPx,
			IdleLeaving:         time.Duration(fc.Intent.IdleLeavingMs) * time.Millisecond,
		},
	}
}

// #endregion fixture-loader
