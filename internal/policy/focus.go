package policy

import (
	"alcyxob/microcycle/internal/domain"
)

// focusRules maps tag keywords to a compilable focus. Order is the
// priority: the first rule with a keyword present among the tags wins, so
// the mapping is total and stable for any input.
var focusRules = []struct {
	focus    domain.Focus
	keywords []string
}{
	{domain.FocusYoga, []string{"yoga"}},
	{domain.FocusPilates, []string{"pilates"}},
	{domain.FocusCalisthenics, []string{"calisthenics"}},
	{domain.FocusMobility, []string{"mobility", "stretch", "stretching", "flexibility", "recovery"}},
	{domain.FocusConditioning, []string{
		"conditioning", "cardio", "run", "running", "hiit", "metcon",
		"endurance", "bike", "cycling", "row", "rowing", "swim", "swimming",
		"climb", "climbing", "hike", "hiking", "sprint",
	}},
	{domain.FocusLower, []string{
		"lower", "legs", "leg", "squat", "deadlift", "lunge", "glutes",
		"hamstrings", "quads", "hinge",
	}},
	{domain.FocusUpper, []string{
		"upper", "push", "pull", "press", "chest", "back", "shoulders",
		"arms", "bench",
	}},
	{domain.FocusFull, []string{"full", "total", "body", "strength", "general"}},
}

// MapToSafeFocus folds free-form day tags into the closed focus set the
// exercise compiler can program for. Unmatched input falls back to a
// full-body session rather than failing.
func MapToSafeFocus(tags []string) domain.Focus {
	tokens := map[string]bool{}
	for _, tag := range tags {
		for _, tok := range tokenize(tag) {
			tokens[tok] = true
		}
	}
	for _, rule := range focusRules {
		for _, kw := range rule.keywords {
			if tokens[kw] {
				return rule.focus
			}
		}
	}
	return domain.FocusFull
}
