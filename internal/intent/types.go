package intent

import (
	"time"

	"percept/internal/telemetry"
)

// #region intent

// Intent classifies the user's current browsing mode on a surface.
type Intent string

const (
	IntentBrowsing  Intent = "browsing"
	IntentSearching Intent = "searching"
	IntentReading   Intent = "reading"
	IntentComparing Intent = "comparing"
	IntentDeciding  Intent = "deciding"
	IntentLeaving   Intent = "leaving"
)

// #endregion intent

// #region layout

// Layout is the presentation hint looked up from the intent.
type Layout string

const (
	LayoutExpanded Layout = "expanded"
	LayoutCompact  Layout = "compact"
	LayoutFocused  Layout = "focused"
	LayoutMinimal  Layout = "minimal"
)

// layoutFor maps each intent to its layout suggestion.
var layoutFor = map[Intent]Layout{
	IntentBrowsing:  LayoutExpanded,
	IntentSearching: LayoutCompact,
	IntentReading:   LayoutFocused,
	IntentComparing: LayoutExpanded,
	IntentDeciding:  LayoutFocused,
	IntentLeaving:   LayoutMinimal,
}

// #endregion layout

// #region direction

// Direction is the scroll direction after the deadband.
type Direction string

const (
	DirectionDown Direction = "down"
	DirectionUp   Direction = "up"
	DirectionNone Direction = "none"
)

// #endregion direction

// #region samples

// ScrollSample is one scroll measurement.
type ScrollSample struct {
	At        time.Time `json:"at"`
	Velocity  float64   `json:"velocity"` // px/sec
	Direction Direction `json:"direction"`
}

// FocusSample records how long one element held focus.
type FocusSample struct {
	ElementID  string    `json:"element_id"`
	At         time.Time `json:"at"`
	DurationMs float64   `json:"duration_ms"`
}

// #endregion samples

// #region profile

// Profile is the derived intent classification. Never persisted.
type Profile struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Attention  float64 `json:"attention"`
	Urgency    float64 `json:"urgency"`
	Layout     Layout  `json:"layout"`
}

// #endregion profile

// #region config

// Config holds tuning knobs for intent signal collection.
type Config struct {
	// ScrollPatternCap bounds the scroll-sample history.
	ScrollPatternCap int
	// FocusEventCap bounds the focus-duration history.
	FocusEventCap int
	// VelocityWindow is how many recent scroll samples feed the average.
	VelocityWindow int
	// DirectionDeadbandPx suppresses direction flips below this delta.
	DirectionDeadbandPx float64
	// PauseDebounce is the scroll quiet period counted as a pause.
	PauseDebounce time.Duration
	// EdgeMarginPx is the pointer-to-edge distance treated as liveness.
	EdgeMarginPx float64
	// IdleLeaving is the inactivity span that reads as leaving.
	IdleLeaving time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ScrollPatternCap:    30,
		FocusEventCap:       20,
		VelocityWindow:      5,
		DirectionDeadbandPx: 5,
		PauseDebounce:       800 * time.Millisecond,
		EdgeMarginPx:        50,
		IdleLeaving:         5 * time.Second,
	}
}

// #endregion config

// #region accumulator

// Accumulator is the persisted intent state for one surface id. Scroll
// position tracking, the armed pause timer, and the currently focused
// element are transient and never serialized.
type Accumulator struct {
	ScrollPatterns   []ScrollSample `json:"scroll_patterns"`
	FocusEvents      []FocusSample  `json:"focus_events"`
	PauseCount       int            `json:"pause_count"`
	DirectionChanges int            `json:"direction_changes"`
	EnteredAt        time.Time      `json:"entered_at"`
	LastActivityAt   time.Time      `json:"last_activity_at"`
}

// RecentVelocity is the mean velocity over the last n scroll samples.
func (a Accumulator) RecentVelocity(n int) float64 {
	recent := telemetry.Tail(a.ScrollPatterns, n)
	vals := make([]float64, 0, len(recent))
	for _, s := range recent {
		vals = append(vals, s.Velocity)
	}
	return telemetry.Mean(vals)
}

// AvgFocusMs is the mean of the focus-duration history, 0 when empty.
func (a Accumulator) AvgFocusMs() float64 {
	vals := make([]float64, 0, len(a.FocusEvents))
	for _, f := range a.FocusEvents {
		vals = append(vals, f.DurationMs)
	}
	return telemetry.Mean(vals)
}

// #endregion accumulator
