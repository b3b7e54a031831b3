// Package engine runs the full planning pipeline: abstract planning,
// policy enforcement, validation, and per-day exercise compilation.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/config"
	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/generator"
	"alcyxob/microcycle/internal/metrics"
	"alcyxob/microcycle/internal/planner"
	"alcyxob/microcycle/internal/policy"
)

const (
	defaultHorizonDays = 7
	defaultMaxParallel = 4
)

// Engine is the single entry point for plan generation. It is built once at
// startup and shared; every Plan call works on its own PlanningContext and
// produces a fresh CompiledPlan, so concurrent calls are safe.
type Engine struct {
	client   *completion.Client
	cfg      config.PlannerConfig
	recorder *metrics.Recorder
	now      func() time.Time
}

// New builds the planning engine. The recorder may be nil.
func New(client *completion.Client, cfg config.PlannerConfig, recorder *metrics.Recorder) *Engine {
	return &Engine{client: client, cfg: cfg, recorder: recorder, now: time.Now}
}

// Options adjusts a single planning run. Zero values defer to the engine
// configuration.
type Options struct {
	HorizonDays      int
	Model            string // abstract planning model override
	ExerciseModel    string // exercise generation model override
	EnableRefinement bool
	RefinementModel  string
	Adaptation       *domain.AdaptationStrategy
}

// Plan generates a complete plan for the horizon. The pipeline degrades
// rather than fails: a generative planning failure falls back to the
// deterministic strategy, and a model failure on any single day falls back
// to the exercise templates. The only hard error left is a done context,
// which aborts the whole call rather than returning a partial plan.
func (e *Engine) Plan(ctx context.Context, pctx domain.PlanningContext, opts Options) (*domain.CompiledPlan, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.HorizonDays > 0 {
		pctx.HorizonDays = opts.HorizonDays
	}
	if pctx.HorizonDays <= 0 {
		pctx.HorizonDays = e.cfg.HorizonDays
	}
	if pctx.HorizonDays <= 0 {
		pctx.HorizonDays = defaultHorizonDays
	}
	if pctx.Today.IsZero() {
		pctx.Today = e.now()
	}

	strat := planner.Select(e.client, e.plannerConfig(opts))
	abstract, err := strat.Plan(ctx, pctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("WARN: %s planning failed, using deterministic fallback: %v", strat.Name(), err)
		strat = planner.NewDeterministic(e.plannerConfig(opts))
		if abstract, err = strat.Plan(ctx, pctx); err != nil {
			return nil, fmt.Errorf("planning failed: %w", err)
		}
	}

	// The strategies already apply both policies; re-applying here keeps
	// the guarantee even if a strategy implementation regresses. Both
	// passes are idempotent on compliant sequences.
	days := policy.EnforceCadence(abstract, e.maxConsecutive())
	days = policy.TaperAroundEvents(days, pctx.Events, e.taperWindow())

	warnings := policy.Validate(days, pctx)
	for _, w := range warnings {
		log.Printf("WARN: plan validation: %s", w)
	}

	compiled, err := e.compileDays(ctx, days, pctx, opts, strat.Name())
	if err != nil {
		return nil, err
	}

	plan := &domain.CompiledPlan{
		ID:          uuid.NewString(),
		GeneratedAt: e.now(),
		Days:        compiled,
		Warnings:    warnings,
	}

	if opts.EnableRefinement {
		e.refine(ctx, plan, pctx, opts)
	}

	e.recorder.PlanGenerated(strat.Name())
	e.recorder.PlanDuration(time.Since(start).Seconds())
	return plan, nil
}

func (e *Engine) plannerConfig(opts Options) planner.Config {
	return planner.Config{
		Model:          opts.Model,
		MaxConsecutive: e.maxConsecutive(),
		TaperWindow:    e.taperWindow(),
	}
}

func (e *Engine) maxConsecutive() int {
	if e.cfg.MaxConsecutiveTraining > 0 {
		return e.cfg.MaxConsecutiveTraining
	}
	return policy.DefaultMaxConsecutiveTraining
}

func (e *Engine) taperWindow() float64 {
	if e.cfg.TaperWindowDays > 0 {
		return e.cfg.TaperWindowDays
	}
	return policy.DefaultTaperWindowDays
}

// compileDays fills every day of the skeleton concurrently. Results land in
// an index-addressed slice, so output order is date order regardless of
// which day finishes first.
func (e *Engine) compileDays(ctx context.Context, days []domain.AbstractDay, pctx domain.PlanningContext, opts Options, strategyName string) ([]domain.CompiledDay, error) {
	out := make([]domain.CompiledDay, len(days))
	if len(days) == 0 {
		return out, nil
	}

	gen := generator.New(e.client, opts.ExerciseModel)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism(len(days), e.cfg.MaxParallelCompile))

	for i, day := range days {
		g.Go(func() error {
			compiled, err := e.compileDay(gctx, gen, day, pctx, opts, strategyName)
			if err != nil {
				return err
			}
			out[i] = compiled
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parallelism(days, configured int) int {
	limit := configured
	if limit <= 0 {
		limit = defaultMaxParallel
	}
	if days < limit {
		limit = days
	}
	return limit
}

func (e *Engine) compileDay(ctx context.Context, gen *generator.Generator, day domain.AbstractDay, pctx domain.PlanningContext, opts Options, strategyName string) (domain.CompiledDay, error) {
	compiled := domain.CompiledDay{
		Date:      day.Date,
		Action:    day.Action,
		Tags:      day.Tags,
		Reason:    day.Reason,
		Exercises: []domain.ExerciseSpec{},
		Meta:      map[string]string{domain.MetaStrategy: strategyName},
	}

	// Rest and event days carry no prescription.
	if day.Action == domain.ActionRest || day.Action == domain.ActionEvent {
		return compiled, nil
	}

	focus := policy.MapToSafeFocus(day.Tags)
	if day.Action == domain.ActionRecovery && !lowIntensityFocus(focus) {
		focus = domain.FocusMobility
	}
	compiled.Focus = focus

	specs, source, err := gen.Generate(ctx, generator.Request{
		Focus:          focus,
		Tags:           day.Tags,
		Profile:        pctx.Profile,
		SessionMinutes: pctx.Profile.SessionMinutes,
		Strategy:       opts.Adaptation,
		Previous:       previousSession(pctx.PriorPlan, focus),
	})
	if err != nil {
		return domain.CompiledDay{}, err
	}

	compiled.Exercises = specs
	compiled.Meta[domain.MetaSource] = source
	if source == domain.SourceTemplate {
		e.recorder.DayFallback()
	}
	return compiled, nil
}

// lowIntensityFocus reports whether a focus is gentle enough for an active
// recovery day.
func lowIntensityFocus(f domain.Focus) bool {
	switch f {
	case domain.FocusMobility, domain.FocusYoga, domain.FocusPilates:
		return true
	}
	return false
}

// previousSession summarizes the most recent prior-plan day with the same
// focus, giving the generator continuity context.
func previousSession(prior *domain.CompiledPlan, focus domain.Focus) string {
	if prior == nil {
		return ""
	}
	for i := len(prior.Days) - 1; i >= 0; i-- {
		d := prior.Days[i]
		if d.Focus != focus || len(d.Exercises) == 0 {
			continue
		}
		names := make([]string, 0, len(d.Exercises))
		for _, ex := range d.Exercises {
			names = append(names, ex.Name)
		}
		return fmt.Sprintf("%s session on %s: %s", focus, d.Date.Format("2006-01-02"), strings.Join(names, ", "))
	}
	return ""
}

// refine asks the completion service for a short coaching note on the
// finished plan. Failures are logged and swallowed; the plan stands either
// way.
func (e *Engine) refine(ctx context.Context, plan *domain.CompiledPlan, pctx domain.PlanningContext, opts Options) {
	if !e.client.IsAvailable() {
		return
	}

	note, err := e.client.GenerateText(ctx, opts.RefinementModel, []completion.Message{
		completion.System("You are a supportive coach. Reply with two or three plain-text sentences, no lists."),
		completion.User(refinementPrompt(plan, pctx)),
	})
	if err != nil {
		log.Printf("WARN: refinement pass skipped: %v", err)
		return
	}
	plan.Notes = note
}

func refinementPrompt(plan *domain.CompiledPlan, pctx domain.PlanningContext) string {
	var b strings.Builder

	goal := pctx.Profile.Goal
	if strings.TrimSpace(goal) == "" {
		goal = "general fitness"
	}
	fmt.Fprintf(&b, "Write the athlete (goal: %s) a short note about the week below. Mention anything to watch out for.\n\n", goal)

	for _, d := range plan.Days {
		fmt.Fprintf(&b, "- %s %s", d.Date.Format("Mon 2006-01-02"), d.Action)
		if d.Focus != "" {
			fmt.Fprintf(&b, " (%s, %d exercises)", d.Focus, len(d.Exercises))
		}
		if d.Reason != "" {
			fmt.Fprintf(&b, ": %s", d.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// EstimateDuration returns the estimated length of a day in whole minutes,
// rounding up. It is a pure function of the day's exercises.
func EstimateDuration(day domain.CompiledDay) int {
	total := 0
	for _, ex := range day.Exercises {
		total += ex.DurationSeconds
	}
	return (total + 59) / 60
}

// Summarize aggregates a compiled plan for display. Weekly hours scale the
// horizon's estimated minutes to a seven-day week.
func Summarize(plan *domain.CompiledPlan) domain.PlanSummary {
	var s domain.PlanSummary
	if plan == nil {
		return s
	}

	totalMinutes := 0
	for _, d := range plan.Days {
		s.TotalDays++
		switch d.Action {
		case domain.ActionTrain:
			s.TrainingDays++
		case domain.ActionRecovery:
			s.RecoveryDays++
		case domain.ActionRest:
			s.RestDays++
		case domain.ActionEvent:
			s.EventDays++
		}
		s.TotalExercises += len(d.Exercises)
		totalMinutes += EstimateDuration(d)
	}
	if s.TotalDays > 0 {
		s.EstimatedWeeklyHours = float64(totalMinutes) * 7 / float64(s.TotalDays) / 60
	}
	return s
}
