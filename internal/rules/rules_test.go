package rules

import "testing"

type sig struct {
	a, b int
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	chain := []Rule[sig, string]{
		{
			Name: "both-high",
			When: func(s sig) bool { return s.a > 5 && s.b > 5 },
			Then: func(sig) string { return "both" },
		},
		{
			Name: "a-high",
			When: func(s sig) bool { return s.a > 5 },
			Then: func(sig) string { return "a" },
		},
		{
			Name: "b-high",
			When: func(s sig) bool { return s.b > 5 },
			Then: func(sig) string { return "b" },
		},
	}
	fallback := func(sig) string { return "none" }

	tests := []struct {
		name     string
		s        sig
		want     string
		wantRule string
	}{
		{"both-match-takes-first", sig{9, 9}, "both", "both-high"},
		{"only-a", sig{9, 0}, "a", "a-high"},
		{"only-b", sig{0, 9}, "b", "b-high"},
		{"fallback", sig{0, 0}, "none", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := Evaluate(chain, tt.s, fallback)
			if got != tt.want {
				t.Errorf("outcome: got %q, want %q", got, tt.want)
			}
			if rule != tt.wantRule {
				t.Errorf("rule: got %q, want %q", rule, tt.wantRule)
			}
		})
	}
}

func TestEvaluateEmptyChain(t *testing.T) {
	got, rule := Evaluate(nil, sig{1, 1}, func(sig) string { return "default" })
	if got != "default" || rule != "" {
		t.Fatalf("got (%q, %q), want (default, \"\")", got, rule)
	}
}
