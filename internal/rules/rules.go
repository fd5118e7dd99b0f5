// Package rules implements ordered first-match-wins rule chains. Keeping
// the priority order as an explicit slice makes classification behavior
// inspectable and testable apart from any consumer.
package rules

// #region rule

// Rule pairs a predicate over some signal snapshot S with the outcome O
// selected when the predicate matches.
type Rule[S, O any] struct {
	Name string
	When func(S) bool
	Then func(S) O
}

// #endregion rule

// #region evaluate

// Evaluate walks the chain in order and returns the first matching rule's
// outcome plus the rule name. When nothing matches it returns fallback(s)
// with an empty name.
func Evaluate[S, O any](chain []Rule[S, O], s S, fallback func(S) O) (O, string) {
	for _, r := range chain {
		if r.When(s) {
			return r.Then(s), r.Name
		}
	}
	return fallback(s), ""
}

// #endregion evaluate
