// Package recall converts contiguous visits into durable memory layers
// and maintains a decaying recognition level: how well the surface
// "remembers" this user.
package recall

import (
	"time"

	"github.com/google/uuid"

	"percept/internal/clock"
	"percept/internal/persist"
	"percept/internal/rules"
	"percept/internal/store"
	"percept/internal/telemetry"
)

// Kind namespaces recall snapshots in the store.
const Kind = "recall"

// #region tracker

// Tracker accumulates per-visit sessions for one surface id and persists
// the accumulator when a session closes.
type Tracker struct {
	id  string
	cfg Config
	clk clock.Clock
	st  store.Store

	acc      Accumulator
	sess     openSession
	lastRule string
}

// NewTracker hydrates a tracker for id from the store. Absent or malformed
// prior state starts from defaults.
func NewTracker(id string, cfg Config, clk clock.Clock, st store.Store) (*Tracker, error) {
	acc, _, err := persist.Load(st, Kind, id, Accumulator{})
	if err != nil {
		return nil, err
	}
	return &Tracker{id: id, cfg: cfg, clk: clk, st: st, acc: acc}, nil
}

// ID returns the surface id this tracker observes.
func (t *Tracker) ID() string { return t.id }

// Accumulator returns a copy of the current accumulator value.
func (t *Tracker) Accumulator() Accumulator { return t.acc }

// Profile returns the current derived profile.
func (t *Tracker) Profile() Profile { return Derive(t.acc) }

// #endregion tracker

// #region enter

// Enter opens a session. An already open session is left as is.
func (t *Tracker) Enter() {
	if t.sess.active {
		return
	}
	t.sess = openSession{active: true, start: t.clk.Now()}
}

// #endregion enter

// #region mouse-move

// MouseMove appends a focus point to the open session and folds the step
// distance into the session's movement average.
func (t *Tracker) MouseMove(x, y float64) {
	if !t.sess.active {
		return
	}
	p := telemetry.Point{X: x, Y: y}
	if t.sess.hasPoint {
		t.sess.moveSum += telemetry.Distance(t.sess.lastPoint, p)
		t.sess.moveCount++
	}
	t.sess.lastPoint = p
	t.sess.hasPoint = true
	t.sess.focusPoints = telemetry.PushBounded(t.sess.focusPoints, p, t.cfg.FocusPointCap)
}

// #endregion mouse-move

// #region scroll

// Scroll tracks the maximum scroll depth reached in the open session.
// depth is clamped to [0, 1].
func (t *Tracker) Scroll(depth float64) {
	if !t.sess.active {
		return
	}
	depth = telemetry.Clamp(depth)
	if depth > t.sess.scrollDepth {
		t.sess.scrollDepth = depth
	}
}

// #endregion scroll

// #region leave

// Leave closes the open session, classifies it, appends a memory layer,
// and updates recognition, reveal progress, and preferred reveal speed.
func (t *Tracker) Leave() error {
	if !t.sess.active {
		return nil
	}
	now := t.clk.Now()
	duration := now.Sub(t.sess.start)

	var away time.Duration
	if t.acc.VisitCount > 0 {
		away = t.sess.start.Sub(t.acc.LastVisitAt)
	}

	mood, rule := t.classifySignature(duration)
	layer := MemoryLayer{
		SessionID:   uuid.New().String(),
		ClosedAt:    now,
		DurationMs:  float64(duration.Milliseconds()),
		Type:        t.classifyType(duration, away),
		Signature:   mood,
		ScrollDepth: t.sess.scrollDepth,
		AvgMovement: t.sess.avgMovement(),
	}
	t.lastRule = rule
	t.acc.Layers = telemetry.PushBounded(t.acc.Layers, layer, t.cfg.LayerCap)

	// Recognition decays with time away, then grows with this visit.
	decay := 1 - float64(away)/float64(t.cfg.RecognitionWindow)
	if decay < 0.5 {
		decay = 0.5
	}
	growth := 0.1
	if layer.Type == InteractionStudy {
		growth = 0.2
	}
	t.acc.RecognitionLevel = telemetry.Clamp(t.acc.RecognitionLevel*decay + growth)

	t.acc.RevealProgress = telemetry.Clamp(t.acc.RevealProgress + revealIncrement(layer.Type))
	t.acc.PreferredSpeed = preferredSpeed(t.acc.Layers)

	t.acc.VisitCount++
	t.acc.LastVisitAt = now
	t.sess = openSession{}

	return persist.Save(t.st, Kind, t.id, t.acc)
}

// #endregion leave

// #region reset

// Reset restores defaults and clears the persisted snapshot.
func (t *Tracker) Reset() error {
	t.acc = Accumulator{}
	t.sess = openSession{}
	t.lastRule = ""
	return persist.Reset(t.st, Kind, t.id)
}

// LastRule names the mood rule that won at the most recent session close,
// empty when the fallback applied or no session has closed yet.
func (t *Tracker) LastRule() string { return t.lastRule }

// #endregion reset

// #region classify-type

func (t *Tracker) classifyType(duration, away time.Duration) InteractionType {
	if t.acc.VisitCount > 0 && away > t.cfg.ReturnGap {
		return InteractionReturn
	}
	switch {
	case duration < t.cfg.GlanceMax:
		return InteractionGlance
	case duration < t.cfg.EngageMax:
		return InteractionEngage
	default:
		return InteractionStudy
	}
}

// #endregion classify-type

// #region classify-signature

// sessionSignals is the snapshot the mood chain matches on.
type sessionSignals struct {
	DurationMs  float64
	AvgMovement float64
	ScrollDepth float64
	ThoroughMs  float64
}

// moodChain is evaluated in priority order; the first matching rule wins.
var moodChain = []rules.Rule[sessionSignals, Mood]{
	{
		Name: "fast-and-gone",
		When: func(s sessionSignals) bool { return s.AvgMovement > 50 && s.DurationMs < 1000 },
		Then: func(sessionSignals) Mood { return MoodImpatient },
	},
	{
		Name: "long-and-deep",
		When: func(s sessionSignals) bool { return s.DurationMs > s.ThoroughMs && s.ScrollDepth > 0.5 },
		Then: func(sessionSignals) Mood { return MoodThorough },
	},
	{
		Name: "wandering",
		When: func(s sessionSignals) bool { return s.AvgMovement > 30 },
		Then: func(sessionSignals) Mood { return MoodDistracted },
	},
}

func (t *Tracker) classifySignature(duration time.Duration) (Mood, string) {
	s := sessionSignals{
		DurationMs:  float64(duration.Milliseconds()),
		AvgMovement: t.sess.avgMovement(),
		ScrollDepth: t.sess.scrollDepth,
		ThoroughMs:  float64(t.cfg.ThoroughMin.Milliseconds()),
	}
	return rules.Evaluate(moodChain, s, func(sessionSignals) Mood { return MoodCurious })
}

// #endregion classify-signature

// #region reveal

func revealIncrement(it InteractionType) float64 {
	switch it {
	case InteractionStudy:
		return 0.15
	case InteractionEngage:
		return 0.08
	case InteractionReturn:
		return 0.10
	default: // glance
		return 0.02
	}
}

// preferredSpeed derives pacing from the average duration of the last 5 layers.
func preferredSpeed(layers []MemoryLayer) RevealSpeed {
	recent := telemetry.Tail(layers, 5)
	durations := make([]float64, 0, len(recent))
	for _, l := range recent {
		durations = append(durations, l.DurationMs)
	}
	avg := telemetry.Mean(durations)
	switch {
	case avg > 3000:
		return RevealSlow
	case avg > 1500:
		return RevealMedium
	default:
		return RevealFast
	}
}

// #endregion reveal

// #region derive

// Derive computes the profile for an accumulator value. Deterministic:
// identical accumulators always produce identical profiles.
func Derive(a Accumulator) Profile {
	speed := a.PreferredSpeed
	if speed == "" {
		speed = RevealFast
	}
	return Profile{
		Mood:        a.CurrentMood(),
		Recognition: telemetry.Clamp(a.RecognitionLevel),
		Reveal:      telemetry.Clamp(a.RevealProgress),
		Speed:       speed,
	}
}

// #endregion derive
