package behavior

import (
	"percept/internal/rules"
	"percept/internal/telemetry"
)

// #region metrics

// metrics is the derived signal snapshot the personality chain matches on.
type metrics struct {
	Familiarity      float64
	Confidence       float64
	Engagement       float64
	AvgHoverMs       float64
	AvgClickMs       float64
	DirectApproaches int
	HoverNoClick     int
	Retreats         int
}

func deriveMetrics(a Accumulator) metrics {
	familiarity := telemetry.Clamp(float64(a.ClickCount+a.HoverCount) / 50)

	avgClickMs := a.AvgClickLatencyMs()
	clickSpeedConfidence := 1 - avgClickMs/2000
	if clickSpeedConfidence < 0 {
		clickSpeedConfidence = 0
	}
	var approachRatio float64
	if a.HoverCount > 0 {
		approachRatio = telemetry.Clamp(float64(a.DirectApproaches) / float64(a.HoverCount))
	}
	confidence := telemetry.Clamp(0.6*clickSpeedConfidence + 0.4*approachRatio)

	retreatPenalty := 0.1 * float64(a.Retreats)
	if retreatPenalty > 0.5 {
		retreatPenalty = 0.5
	}
	engagement := telemetry.Clamp(a.AvgHoverMs/1500) - retreatPenalty
	if engagement < 0 {
		engagement = 0
	}

	return metrics{
		Familiarity:      familiarity,
		Confidence:       confidence,
		Engagement:       engagement,
		AvgHoverMs:       a.AvgHoverMs,
		AvgClickMs:       avgClickMs,
		DirectApproaches: a.DirectApproaches,
		HoverNoClick:     a.HoverWithoutClick,
		Retreats:         a.Retreats,
	}
}

// #endregion metrics

// #region chain

// personalityChain is evaluated in priority order; the first matching rule
// wins. Order matters: a familiar confident user is calm even when their
// hover metrics would also satisfy curious.
var personalityChain = []rules.Rule[metrics, Personality]{
	{
		Name: "familiar-confident",
		When: func(m metrics) bool { return m.Familiarity > 0.7 && m.Confidence > 0.6 },
		Then: func(metrics) Personality { return PersonalityCalm },
	},
	{
		Name: "confident-direct",
		When: func(m metrics) bool { return m.Confidence > 0.7 && m.DirectApproaches > 3 },
		Then: func(metrics) Personality { return PersonalityAssertive },
	},
	{
		Name: "lingering-undecided",
		When: func(m metrics) bool { return m.HoverNoClick > 5 || m.Retreats > 3 },
		Then: func(metrics) Personality { return PersonalityInviting },
	},
	{
		Name: "engaged-dwelling",
		When: func(m metrics) bool { return m.Engagement > 0.6 && m.AvgHoverMs > 800 },
		Then: func(metrics) Personality { return PersonalityCurious },
	},
	{
		Name: "retreating-or-slow",
		When: func(m metrics) bool { return m.Retreats > 1 || m.AvgClickMs > 1500 },
		Then: func(metrics) Personality { return PersonalityHesitant },
	},
}

// #endregion chain

// #region derive

// Derive computes the profile for an accumulator value. Deterministic:
// identical accumulators always produce identical profiles.
func Derive(a Accumulator) Profile {
	p, _ := Explain(a)
	return p
}

// Explain is Derive plus the name of the winning personality rule, empty
// when the fallback applied.
func Explain(a Accumulator) (Profile, string) {
	m := deriveMetrics(a)
	personality, rule := rules.Evaluate(personalityChain, m, func(metrics) Personality {
		return PersonalityCalm
	})
	return Profile{
		Personality: personality,
		Familiarity: m.Familiarity,
		Confidence:  m.Confidence,
		Engagement:  m.Engagement,
	}, rule
}

// #endregion derive
