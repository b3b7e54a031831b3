package domain

import (
	"strings"
)

// FeedbackAnalysis condenses recent session feedback into adaptation input.
type FeedbackAnalysis struct {
	OverallDifficulty float64  `json:"overallDifficulty"`  // Mean perceived exertion, 1-10
	TooEasy           []string `json:"tooEasy,omitempty"`  // Exercise names the athlete found too easy
	TooHard           []string `json:"tooHard,omitempty"`  // Exercise names at or past the failure point
	Boring            []string `json:"boring,omitempty"`   // Exercise names flagged for variety
	VolumeAdjustment  float64  `json:"volumeAdjustment"`   // Signed percent, e.g., +10 means add volume
	IntensityModifier float64  `json:"intensityModifier"`  // Suggested multiplier around 1.0
	Confidence        float64  `json:"confidence"`         // 0-1, how much signal backs this analysis
	SampleSize        int      `json:"sampleSize"`         // Number of exercises the analysis saw
}

// Empty reports whether the analysis carries no usable signal.
func (f FeedbackAnalysis) Empty() bool {
	return f.SampleSize == 0 && len(f.TooEasy) == 0 && len(f.TooHard) == 0 &&
		len(f.Boring) == 0 && f.VolumeAdjustment == 0
}

// LoadDelta adjusts working load on exercises whose name matches Pattern.
type LoadDelta struct {
	Pattern string  `json:"pattern"`
	DeltaKg float64 `json:"deltaKg"`
	Reason  string  `json:"reason,omitempty"`
}

// VolumeDelta adjusts set or rep volume on matching exercises.
type VolumeDelta struct {
	Pattern  string `json:"pattern"`
	SetDelta int    `json:"setDelta"`
	RepDelta *int   `json:"repDelta,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ExerciseSwap replaces matching exercises with a named alternative.
type ExerciseSwap struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Reason      string `json:"reason,omitempty"`
}

// AdaptationStrategy is the set of week-over-week programming changes the
// exercise compiler applies to the next occurrence of a similar session.
type AdaptationStrategy struct {
	LoadAdjustments     []LoadDelta    `json:"loadAdjustments,omitempty"`
	VolumeAdjustments   []VolumeDelta  `json:"volumeAdjustments,omitempty"`
	Substitutions       []ExerciseSwap `json:"substitutions,omitempty"`
	IntensityMultiplier float64        `json:"intensityMultiplier"` // Clamped to [0.9, 1.1]
	Notes               string         `json:"notes,omitempty"`
	Confidence          float64        `json:"confidence"` // Clamped to [0, 1]
}

// Empty reports whether the strategy changes nothing.
func (s *AdaptationStrategy) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.LoadAdjustments) == 0 && len(s.VolumeAdjustments) == 0 &&
		len(s.Substitutions) == 0
}

// MatchesPattern reports whether an exercise name matches an adaptation
// pattern. The pattern "." matches every exercise; anything else is a
// case-insensitive substring test.
func MatchesPattern(name, pattern string) bool {
	if pattern == "." {
		return true
	}
	if pattern == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}
