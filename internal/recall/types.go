package recall

import (
	"time"

	"percept/internal/telemetry"
)

// #region interaction-type

// InteractionType classifies one closed session by how long it lasted and
// how long the user had been away.
type InteractionType string

const (
	InteractionGlance InteractionType = "glance"
	InteractionEngage InteractionType = "engage"
	InteractionStudy  InteractionType = "study"
	InteractionReturn InteractionType = "return"
)

// #endregion interaction-type

// #region mood

// Mood is the emotional signature read off a session's movement and
// scroll behavior.
type Mood string

const (
	MoodCurious    Mood = "curious"
	MoodImpatient  Mood = "impatient"
	MoodThorough   Mood = "thorough"
	MoodDistracted Mood = "distracted"
)

// #endregion mood

// #region reveal-speed

// RevealSpeed is the pacing hint derived from recent session durations.
type RevealSpeed string

const (
	RevealSlow   RevealSpeed = "slow"
	RevealMedium RevealSpeed = "medium"
	RevealFast   RevealSpeed = "fast"
)

// #endregion reveal-speed

// #region memory-layer

// MemoryLayer is the durable record of one closed session.
type MemoryLayer struct {
	SessionID   string          `json:"session_id"`
	ClosedAt    time.Time       `json:"closed_at"`
	DurationMs  float64         `json:"duration_ms"`
	Type        InteractionType `json:"type"`
	Signature   Mood            `json:"signature"`
	ScrollDepth float64         `json:"scroll_depth"`
	AvgMovement float64         `json:"avg_movement"`
}

// #endregion memory-layer

// #region profile

// Profile is the derived recognition view. Never persisted.
type Profile struct {
	Mood        Mood        `json:"mood"`
	Recognition float64     `json:"recognition"`
	Reveal      float64     `json:"reveal"`
	Speed       RevealSpeed `json:"speed"`
}

// #endregion profile

// #region config

// Config holds tuning knobs for session classification.
type Config struct {
	// LayerCap bounds the memory-layer history.
	LayerCap int
	// FocusPointCap bounds the per-session focus-point list.
	FocusPointCap int

	// GlanceMax / EngageMax split sessions into glance / engage / study.
	GlanceMax time.Duration
	EngageMax time.Duration
	// ReturnGap is the away time that reclassifies a session as a return.
	ReturnGap time.Duration

	// RecognitionWindow is the away time over which recognition fully
	// decays to its floor.
	RecognitionWindow time.Duration

	// ThoroughMin is the session duration floor for the thorough mood.
	ThoroughMin time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LayerCap:          50,
		FocusPointCap:     50,
		GlanceMax:         500 * time.Millisecond,
		EngageMax:         2 * time.Second,
		ReturnGap:         60 * time.Second,
		RecognitionWindow: 7 * 24 * time.Hour,
		ThoroughMin:       2 * time.Second,
	}
}

// #endregion config

// #region accumulator

// Accumulator is the persisted memory state for one surface id. The open
// session lives on the Tracker and is never serialized.
type Accumulator struct {
	VisitCount       int           `json:"visit_count"`
	RecognitionLevel float64       `json:"recognition_level"`
	RevealProgress   float64       `json:"reveal_progress"`
	PreferredSpeed   RevealSpeed   `json:"preferred_speed"`
	LastVisitAt      time.Time     `json:"last_visit_at"`
	Layers           []MemoryLayer `json:"layers"`
}

// CurrentMood is the signature of the most recent layer, curious if none.
func (a Accumulator) CurrentMood() Mood {
	if len(a.Layers) == 0 {
		return MoodCurious
	}
	return a.Layers[len(a.Layers)-1].Signature
}

// #endregion accumulator

// #region session

// openSession is the transient state of one contiguous visit.
type openSession struct {
	active      bool
	start       time.Time
	focusPoints []telemetry.Point
	lastPoint   telemetry.Point
	hasPoint    bool
	moveSum     float64
	moveCount   int
	scrollDepth float64
}

// avgMovement is the mean distance between consecutive focus points.
func (s *openSession) avgMovement() float64 {
	if s.moveCount == 0 {
		return 0
	}
	return s.moveSum / float64(s.moveCount)
}

// #endregion session
