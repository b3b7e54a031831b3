package adaptation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/domain"
)

const (
	minMultiplier = 0.9
	maxMultiplier = 1.1

	// Confidence assigned to rule-based strategies, below anything the
	// model reports for itself.
	fallbackConfidence = 0.4

	loadStepKg = 2.5
)

// Planner turns recent session feedback into programming adjustments the
// exercise compiler applies to the next comparable session. The completion
// service is asked when available; a small rule set covers the rest.
type Planner struct {
	client *completion.Client
	model  string
}

// New builds an adaptation planner. The model may be empty, in which case
// the client's configured default is used.
func New(client *completion.Client, model string) *Planner {
	return &Planner{client: client, model: model}
}

// Plan derives an adaptation strategy from the given feedback analysis.
// The error is non-nil only when the context is done; any other failure
// silently falls back to the rule-based strategy.
func (p *Planner) Plan(ctx context.Context, analysis domain.FeedbackAnalysis, profile domain.Profile, recentWorkouts int) (domain.AdaptationStrategy, error) {
	if err := ctx.Err(); err != nil {
		return domain.AdaptationStrategy{}, err
	}
	if analysis.Empty() {
		return neutralStrategy(), nil
	}

	if p.client.IsAvailable() {
		strategy, err := p.planWithModel(ctx, analysis, profile, recentWorkouts)
		if err == nil {
			return strategy, nil
		}
		if ctx.Err() != nil {
			return domain.AdaptationStrategy{}, ctx.Err()
		}
		log.Printf("WARN: adaptation planning fell back to rules: %v", err)
	}

	return ruleBasedStrategy(analysis), nil
}

// neutralStrategy changes nothing and claims no confidence.
func neutralStrategy() domain.AdaptationStrategy {
	return domain.AdaptationStrategy{IntensityMultiplier: 1}
}

// --- Model path ---

const strategySchema = `{"loadAdjustments":[{"pattern":"string","deltaKg":number,"reason":"string"}],"volumeAdjustments":[{"pattern":"string","setDelta":int,"repDelta":int|null,"reason":"string"}],"substitutions":[{"pattern":"string","replacement":"string","reason":"string"}],"intensityMultiplier":number,"notes":"string","confidence":number}`

const strategySystemPrompt = "You are an experienced strength coach adjusting next week's programming from an athlete's session feedback. Reply with JSON only, no prose."

func (p *Planner) planWithModel(ctx context.Context, analysis domain.FeedbackAnalysis, profile domain.Profile, recentWorkouts int) (domain.AdaptationStrategy, error) {
	msgs := []completion.Message{
		completion.System(strategySystemPrompt),
		completion.User(buildStrategyPrompt(analysis, profile, recentWorkouts)),
	}

	strategy, err := completion.GenerateStructured[domain.AdaptationStrategy](ctx, p.client, p.model, msgs, strategySchema)
	if err != nil {
		return domain.AdaptationStrategy{}, err
	}
	return sanitize(strategy), nil
}

// sanitize drops directives the compiler cannot act on and clamps the
// scalar fields into their working ranges.
func sanitize(s domain.AdaptationStrategy) domain.AdaptationStrategy {
	out := domain.AdaptationStrategy{
		Notes:               strings.TrimSpace(s.Notes),
		IntensityMultiplier: clampMultiplier(s.IntensityMultiplier),
		Confidence:          clampFloat(s.Confidence, 0, 1),
	}
	for _, d := range s.LoadAdjustments {
		if d.Pattern == "" || d.DeltaKg == 0 {
			continue
		}
		out.LoadAdjustments = append(out.LoadAdjustments, d)
	}
	for _, d := range s.VolumeAdjustments {
		if d.Pattern == "" || (d.SetDelta == 0 && d.RepDelta == nil) {
			continue
		}
		out.VolumeAdjustments = append(out.VolumeAdjustments, d)
	}
	for _, d := range s.Substitutions {
		if d.Pattern == "" || strings.TrimSpace(d.Replacement) == "" {
			continue
		}
		out.Substitutions = append(out.Substitutions, d)
	}
	return out
}

func buildStrategyPrompt(analysis domain.FeedbackAnalysis, profile domain.Profile, recentWorkouts int) string {
	var b strings.Builder

	b.WriteString("Adjust the next training block from this feedback.\n\n")

	fmt.Fprintf(&b, "Athlete:\n- goal: %s\n", valueOr(profile.Goal, "general fitness"))
	fmt.Fprintf(&b, "- equipment: %s\n", valueOr(profile.Equipment, "bodyweight only"))
	if profile.Dislikes != "" {
		fmt.Fprintf(&b, "- dislikes (never program these): %s\n", profile.Dislikes)
	}
	fmt.Fprintf(&b, "- completed sessions recently: %d\n", recentWorkouts)

	fmt.Fprintf(&b, "\nFeedback (%d exercises rated):\n", analysis.SampleSize)
	fmt.Fprintf(&b, "- overall difficulty: %.1f/10\n", analysis.OverallDifficulty)
	if len(analysis.TooEasy) > 0 {
		fmt.Fprintf(&b, "- too easy: %s\n", strings.Join(analysis.TooEasy, ", "))
	}
	if len(analysis.TooHard) > 0 {
		fmt.Fprintf(&b, "- too hard: %s\n", strings.Join(analysis.TooHard, ", "))
	}
	if len(analysis.Boring) > 0 {
		fmt.Fprintf(&b, "- wants variety on: %s\n", strings.Join(analysis.Boring, ", "))
	}
	if analysis.VolumeAdjustment != 0 {
		fmt.Fprintf(&b, "- requested volume change: %+.0f%%\n", analysis.VolumeAdjustment)
	}
	if analysis.IntensityModifier != 0 {
		fmt.Fprintf(&b, "- suggested intensity multiplier: %.2f\n", analysis.IntensityModifier)
	}

	b.WriteString("\nRules:\n")
	b.WriteString("1. A pattern of \".\" matches every exercise; any other pattern is a case-insensitive substring of the exercise name.\n")
	fmt.Fprintf(&b, "2. Keep load changes small, %.1f to %.1f kg per step.\n", loadStepKg, 2*loadStepKg)
	b.WriteString("3. Substitute the exercises flagged for variety with movements the athlete's equipment allows.\n")
	fmt.Fprintf(&b, "4. intensityMultiplier stays between %.1f and %.1f.\n", minMultiplier, maxMultiplier)
	b.WriteString("5. confidence is your own trust in these changes, between 0 and 1.\n")

	fmt.Fprintf(&b, "\nRespond with ONLY a JSON document matching this schema: %s\n", strategySchema)
	return b.String()
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// --- Rule-based path ---

// ruleBasedStrategy applies fixed increments: a small load step up for
// everything flagged too easy, the same step down for too hard, and one
// set across the board when the athlete asked for a volume change.
func ruleBasedStrategy(analysis domain.FeedbackAnalysis) domain.AdaptationStrategy {
	var s domain.AdaptationStrategy

	for _, name := range analysis.TooEasy {
		s.LoadAdjustments = append(s.LoadAdjustments, domain.LoadDelta{
			Pattern: name,
			DeltaKg: loadStepKg,
			Reason:  "rated too easy last session",
		})
	}
	for _, name := range analysis.TooHard {
		s.LoadAdjustments = append(s.LoadAdjustments, domain.LoadDelta{
			Pattern: name,
			DeltaKg: -loadStepKg,
			Reason:  "rated too hard last session",
		})
	}

	switch {
	case analysis.VolumeAdjustment > 0:
		s.VolumeAdjustments = append(s.VolumeAdjustments, domain.VolumeDelta{
			Pattern: ".", SetDelta: 1, Reason: "athlete asked for more volume",
		})
	case analysis.VolumeAdjustment < 0:
		s.VolumeAdjustments = append(s.VolumeAdjustments, domain.VolumeDelta{
			Pattern: ".", SetDelta: -1, Reason: "athlete asked for less volume",
		})
	}

	s.IntensityMultiplier = clampMultiplier(analysis.IntensityModifier)
	s.Confidence = fallbackConfidence
	s.Notes = "rule-based adjustment from recent session feedback"
	return s
}

// clampMultiplier treats zero as unset rather than as a 90% cut.
func clampMultiplier(m float64) float64 {
	if m == 0 {
		return 1
	}
	return clampFloat(m, minMultiplier, maxMultiplier)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
