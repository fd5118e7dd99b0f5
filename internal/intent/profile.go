package intent

import (
	"time"

	"percept/internal/rules"
)

// #region signals

// signals is the derived snapshot the intent chain matches on.
type signals struct {
	Velocity    float64 // recent-window average, px/sec
	Pauses      int
	DirChanges  int
	AvgFocusMs  float64
	IdleMs      float64
	IdleLimitMs float64
}

// #endregion signals

// #region chain

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// intentChain is evaluated in priority order; the first matching rule
// wins. The leaving rule sits below searching on purpose: a very fast
// scroll with no pauses reads as scanning, not exit, until it passes the
// searching guards.
var intentChain = []rules.Rule[signals, Profile]{
	{
		Name: "fast-scan",
		When: func(s signals) bool { return s.Velocity > 300 && s.Pauses < 2 && s.DirChanges < 3 },
		Then: func(s signals) Profile {
			return Profile{Intent: IntentSearching, Confidence: minf(0.9, s.Velocity/500), Attention: 0.4, Urgency: 0.8}
		},
	},
	{
		Name: "slow-dwell",
		When: func(s signals) bool { return s.Velocity < 100 && s.Pauses > 3 && s.AvgFocusMs > 1000 },
		Then: func(s signals) Profile {
			return Profile{Intent: IntentReading, Confidence: minf(0.9, s.AvgFocusMs/3000), Attention: 0.9, Urgency: 0.1}
		},
	},
	{
		Name: "back-and-forth",
		When: func(s signals) bool { return s.DirChanges > 5 && s.Velocity > 50 && s.Velocity < 300 },
		Then: func(s signals) Profile {
			return Profile{Intent: IntentComparing, Confidence: minf(0.85, float64(s.DirChanges)/10), Attention: 0.7, Urgency: 0.5}
		},
	},
	{
		Name: "paused-on-target",
		When: func(s signals) bool { return s.Pauses > 5 && s.Velocity < 50 && s.AvgFocusMs > 500 },
		Then: func(s signals) Profile {
			return Profile{Intent: IntentDeciding, Confidence: minf(0.85, float64(s.Pauses)/8), Attention: 0.85, Urgency: 0.6}
		},
	},
	{
		Name: "idle-or-bolting",
		When: func(s signals) bool { return s.IdleMs > s.IdleLimitMs || s.Velocity > 500 },
		Then: func(s signals) Profile {
			return Profile{Intent: IntentLeaving, Confidence: 0.6, Attention: 0.2, Urgency: 0.9}
		},
	},
}

// #endregion chain

// #region derive

// Derive computes the profile for an accumulator value at the given
// instant. Deterministic: identical (accumulator, now) pairs always
// produce identical profiles.
func Derive(a Accumulator, cfg Config, now time.Time) Profile {
	p, _ := Explain(a, cfg, now)
	return p
}

// Explain is Derive plus the name of the winning intent rule, empty when
// the fallback applied.
func Explain(a Accumulator, cfg Config, now time.Time) (Profile, string) {
	var idleMs float64
	if !a.LastActivityAt.IsZero() {
		idleMs = float64(now.Sub(a.LastActivityAt).Milliseconds())
	}
	s := signals{
		Velocity:    a.RecentVelocity(cfg.VelocityWindow),
		Pauses:      a.PauseCount,
		DirChanges:  a.DirectionChanges,
		AvgFocusMs:  a.AvgFocusMs(),
		IdleMs:      idleMs,
		IdleLimitMs: float64(cfg.IdleLeaving.Milliseconds()),
	}
	p, rule := rules.Evaluate(intentChain, s, func(signals) Profile {
		return Profile{Intent: IntentBrowsing, Confidence: 0.5, Attention: 0.5, Urgency: 0.3}
	})
	p.Layout = layoutFor[p.Intent]
	return p, rule
}

// #endregion derive
