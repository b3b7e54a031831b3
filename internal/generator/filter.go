package generator

import (
	"strings"

	"alcyxob/microcycle/internal/domain"
)

// TokenBodyweight is always present: an athlete with nothing still has a body.
const TokenBodyweight = "bodyweight"

// equipmentAliases maps canonical equipment tokens to the phrases that
// imply them in free text. Matching is a lowercase substring test, so
// "a pair of dumbbells" yields the dumbbell token.
var equipmentAliases = map[string][]string{
	"barbell":     {"barbell"},
	"dumbbell":    {"dumbbell"},
	"kettlebell":  {"kettlebell"},
	"band":        {"band"},
	"pull-up bar": {"pull-up bar", "pullup bar", "pull up bar", "chin-up bar", "chinup bar"},
	"bench":       {"bench"},
	"machine":     {"machine"},
	"cable":       {"cable"},
	"rower":       {"rower", "rowing machine", "erg"},
	"bike":        {"bike", "bicycle", "spin"},
	"treadmill":   {"treadmill"},
}

// fullGymPhrases mark an equipment description that admits everything.
var fullGymPhrases = []string{"full gym", "fully equipped", "everything", "commercial gym"}

// ParseEquipment folds a free-text equipment description into the canonical
// token set. The result always contains the bodyweight token; a full-gym
// description contains every token.
func ParseEquipment(text string) map[string]bool {
	tokens := map[string]bool{TokenBodyweight: true}
	lower := strings.ToLower(text)

	for _, phrase := range fullGymPhrases {
		if strings.Contains(lower, phrase) {
			for token := range equipmentAliases {
				tokens[token] = true
			}
			return tokens
		}
	}

	for token, aliases := range equipmentAliases {
		for _, alias := range aliases {
			if strings.Contains(lower, alias) {
				tokens[token] = true
				break
			}
		}
	}
	return tokens
}

// admissible reports whether the athlete owns everything the entry needs.
func admissible(ex templateExercise, tokens map[string]bool) bool {
	for _, need := range ex.Equipment {
		if !tokens[need] {
			return false
		}
	}
	return true
}

// disliked reports whether the exercise name hits any dislike entry, using
// the same case-insensitive substring rule in both directions so "pull-up"
// blocks "Pull-up" and "pull-ups" alike.
func disliked(name string, dislikes []string) bool {
	lower := strings.ToLower(name)
	for _, d := range dislikes {
		if d == "" {
			continue
		}
		if strings.Contains(lower, d) || strings.Contains(d, lower) {
			return true
		}
	}
	return false
}

// applyStrategy applies adaptation directives to an already compiled
// session: substitutions first, then load and volume deltas, all bounded
// by the same sanity limits the compiler enforces elsewhere.
func applyStrategy(specs []domain.ExerciseSpec, s *domain.AdaptationStrategy) []domain.ExerciseSpec {
	if s == nil {
		return specs
	}
	for i := range specs {
		for _, sub := range s.Substitutions {
			if sub.Replacement != "" && domain.MatchesPattern(specs[i].Name, sub.Pattern) {
				specs[i].Name = sub.Replacement
				break
			}
		}
		for _, ld := range s.LoadAdjustments {
			if specs[i].LoadKg != nil && domain.MatchesPattern(specs[i].Name, ld.Pattern) {
				v := *specs[i].LoadKg + ld.DeltaKg
				if v < 0 {
					v = 0
				}
				specs[i].LoadKg = &v
			}
		}
		for _, vd := range s.VolumeAdjustments {
			if domain.MatchesPattern(specs[i].Name, vd.Pattern) {
				specs[i].Sets = clampInt(specs[i].Sets+vd.SetDelta, 1, maxSets)
				if vd.RepDelta != nil && specs[i].Reps != nil {
					r := clampInt(*specs[i].Reps+*vd.RepDelta, 1, maxReps)
					specs[i].Reps = &r
				}
			}
		}
	}
	return specs
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
