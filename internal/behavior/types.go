package behavior

import (
	"time"

	"percept/internal/telemetry"
)

// #region personality

// Personality classifies how a user approaches one UI element.
type Personality string

const (
	PersonalityCalm      Personality = "calm"
	PersonalityAssertive Personality = "assertive"
	PersonalityInviting  Personality = "inviting"
	PersonalityCurious   Personality = "curious"
	PersonalityHesitant  Personality = "hesitant"
)

// #endregion personality

// #region profile

// Profile is the derived behavior classification. It is a pure view over
// an Accumulator value and is never persisted.
type Profile struct {
	Personality Personality `json:"personality"`
	Familiarity float64     `json:"familiarity"`
	Confidence  float64     `json:"confidence"`
	Engagement  float64     `json:"engagement"`
}

// #endregion profile

// #region config

// Config holds tuning knobs for behavior signal collection.
type Config struct {
	// HoverVelocityCap bounds the hover-velocity history.
	HoverVelocityCap int
	// ClickLatencyCap bounds the click-latency history.
	ClickLatencyCap int
	// DirectApproachMinVelocity is the px/sec floor for a direct approach.
	DirectApproachMinVelocity float64
	// DoubleClickWindow is the maximum gap between two clicks counted as a
	// double click.
	DoubleClickWindow time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HoverVelocityCap:          20,
		ClickLatencyCap:           10,
		DirectApproachMinVelocity: 500,
		DoubleClickWindow:         400 * time.Millisecond,
	}
}

// #endregion config

// #region accumulator

// Accumulator is the persisted signal state for one element id. Session
// fields (the currently open hover, approach tracking) live on the Tracker
// and are never serialized.
type Accumulator struct {
	HoverCount        int `json:"hover_count"`
	CompletedHovers   int `json:"completed_hovers"`
	ClickCount        int `json:"click_count"`
	DoubleClickCount  int `json:"double_click_count"`
	HoverWithoutClick int `json:"hover_without_click"`
	DirectApproaches  int `json:"direct_approaches"`
	Retreats          int `json:"retreats"`

	// AvgHoverMs is the running average duration of completed hovers.
	AvgHoverMs float64 `json:"avg_hover_ms"`

	// HoverVelocities holds pointer velocities sampled while hovering.
	HoverVelocities []telemetry.VelocitySample `json:"hover_velocities"`
	// ClickLatenciesMs holds hover-start-to-click latencies.
	ClickLatenciesMs []float64 `json:"click_latencies_ms"`
}

// AvgClickLatencyMs is the mean of the click-latency history, 0 when empty.
func (a Accumulator) AvgClickLatencyMs() float64 {
	return telemetry.Mean(a.ClickLatenciesMs)
}

// #endregion accumulator
