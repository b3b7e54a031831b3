package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/microcycle/internal/adaptation"
	"alcyxob/microcycle/internal/config"
	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/engine"
	"alcyxob/microcycle/internal/policy"
	"alcyxob/microcycle/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAthleteNotFound = errors.New("athlete not found")
	ErrDayNotFound     = errors.New("no plan day stored for that date")
	ErrInvalidRating   = errors.New("ratings must be between 1 and 10")
)

// Feedback analysis tuning. RIR is reps in reserve as reported by the
// athlete, where 0 means the set reached the failure point.
const (
	historyWindowDays = 7
	easyMeanRIR       = 4.0
	hardMeanRIR       = 0.0
	easyExertion      = 4.0
	hardExertion      = 8.0
	solidCompletion   = 0.8
	poorCompletion    = 0.5
	volumeStepPercent = 10.0
	intensityStep     = 0.05
	confidencePerRIR  = 0.1 // ten sampled exercises saturate confidence
)

// GenerateOptions carries the per-request knobs for one planning run.
type GenerateOptions struct {
	HorizonDays int
	Model       string
	Refine      bool
}

// PlanResult is what a generation run returns to the caller: the compiled
// plan, its summary, and the dates that were left untouched because a day
// was already stored for them.
type PlanResult struct {
	Plan         *domain.CompiledPlan `json:"plan"`
	Summary      domain.PlanSummary   `json:"summary"`
	SkippedDates []string             `json:"skippedDates,omitempty"`
}

// --- Service Interface ---
type PlanningService interface {
	// GeneratePlan runs the full pipeline for one athlete and persists the
	// result day by day. Re-running it never overwrites stored days.
	GeneratePlan(ctx context.Context, athleteID primitive.ObjectID, opts GenerateOptions) (*PlanResult, error)
	GetPlanDays(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.PlanDay, error)
	RecordDayFeedback(ctx context.Context, athleteID primitive.ObjectID, date time.Time, feedback domain.DayFeedback) error
}

// --- Service Implementation ---

// planningService implements the PlanningService interface.
type planningService struct {
	athleteRepo repository.AthleteRepository
	eventRepo   repository.EventRepository
	planRepo    repository.PlanRepository
	engine      *engine.Engine
	adaptation  *adaptation.Planner
	cfg         config.PlannerConfig
}

// NewPlanningService creates a new instance of planningService.
func NewPlanningService(
	athleteRepo repository.AthleteRepository,
	eventRepo repository.EventRepository,
	planRepo repository.PlanRepository,
	eng *engine.Engine,
	adapt *adaptation.Planner,
	cfg config.PlannerConfig,
) PlanningService {
	return &planningService{
		athleteRepo: athleteRepo,
		eventRepo:   eventRepo,
		planRepo:    planRepo,
		engine:      eng,
		adaptation:  adapt,
		cfg:         cfg,
	}
}

// === Plan Generation ===

// GeneratePlan loads the athlete, assembles the planning context from their
// calendar and recent history, derives an adaptation strategy from feedback,
// runs the engine, and persists every produced day.
func (s *planningService) GeneratePlan(ctx context.Context, athleteID primitive.ObjectID, opts GenerateOptions) (*PlanResult, error) {
	// 1. Validate input and load the athlete
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	athlete, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}

	horizon := s.resolveHorizon(opts.HorizonDays, athlete.HorizonDays)
	today := policy.Midnight(time.Now().UTC())

	// 2. Calendar events inside the planning window
	events, err := s.eventRepo.ListByAthleteInRange(ctx, athleteID, today, today.AddDate(0, 0, horizon))
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	scheduled := make([]domain.ScheduledEvent, 0, len(events))
	for i := range events {
		scheduled = append(scheduled, events[i].Scheduled())
	}

	// 3. Recent history: the stored days form both the planner's history
	// view and the sample the feedback analysis runs on.
	recent, err := s.planRepo.ListByAthleteInRange(ctx, athleteID, today.AddDate(0, 0, -historyWindowDays), today)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	var history []domain.HistoryDay
	var priorDays []domain.CompiledDay
	for i := range recent {
		priorDays = append(priorDays, recent[i].Compiled())
		if recent[i].Completed {
			history = append(history, recent[i].History())
		}
	}
	var prior *domain.CompiledPlan
	if len(priorDays) > 0 {
		prior = &domain.CompiledPlan{Days: priorDays}
	}

	// 4. Feedback-driven adaptation, when there is any signal to act on
	var strategy *domain.AdaptationStrategy
	analysis := analyzeFeedback(recent)
	if !analysis.Empty() {
		planned, err := s.adaptation.Plan(ctx, analysis, athlete.Profile(), len(history))
		if err != nil {
			return nil, fmt.Errorf("adaptation planning: %w", err)
		}
		strategy = &planned
	}

	// 5. Run the engine
	pctx := domain.PlanningContext{
		Today:       today,
		HorizonDays: horizon,
		Profile:     athlete.Profile(),
		Events:      scheduled,
		History:     history,
		PriorPlan:   prior,
	}
	plan, err := s.engine.Plan(ctx, pctx, engine.Options{
		HorizonDays:      horizon,
		Model:            opts.Model,
		EnableRefinement: opts.Refine || s.cfg.Refine,
		RefinementModel:  s.cfg.RefineModel,
		Adaptation:       strategy,
	})
	if err != nil {
		return nil, err
	}

	// 6. Persist day by day. Existing days are skipped, not overwritten, so
	// feedback already recorded on them survives a re-run. A write failure
	// aborts: the caller must not believe a half-stored plan succeeded.
	var skipped []string
	for _, day := range plan.Days {
		stored := storedDay(athleteID, plan.ID, day)
		inserted, err := s.planRepo.InsertDayIfAbsent(ctx, &stored)
		if err != nil {
			return nil, fmt.Errorf("persisting plan day %s: %w", day.Date.Format("2006-01-02"), err)
		}
		if !inserted {
			skipped = append(skipped, day.Date.Format("2006-01-02"))
		}
	}

	return &PlanResult{
		Plan:         plan,
		Summary:      engine.Summarize(plan),
		SkippedDates: skipped,
	}, nil
}

// resolveHorizon picks the planning window: request override first, then the
// athlete's stored preference, then the configured default.
func (s *planningService) resolveHorizon(requested, preferred int) int {
	if requested > 0 {
		return requested
	}
	if preferred > 0 {
		return preferred
	}
	if s.cfg.HorizonDays > 0 {
		return s.cfg.HorizonDays
	}
	return historyWindowDays
}

// storedDay maps one compiled day to its persisted form.
func storedDay(athleteID primitive.ObjectID, planID string, day domain.CompiledDay) domain.PlanDay {
	return domain.PlanDay{
		AthleteID: athleteID,
		PlanID:    planID,
		Date:      day.Date,
		Action:    day.Action,
		Focus:     day.Focus,
		Tags:      day.Tags,
		Reason:    day.Reason,
		Exercises: day.Exercises,
		Source:    day.Meta[domain.MetaSource],
		Strategy:  day.Meta[domain.MetaStrategy],
	}
}

// === Stored Days and Feedback ===

// GetPlanDays retrieves the persisted days for an athlete, oldest first.
func (s *planningService) GetPlanDays(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.PlanDay, error) {
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	if !to.After(from) {
		return nil, errors.New("date range is empty")
	}
	return s.planRepo.ListByAthleteInRange(ctx, athleteID, from, to)
}

// RecordDayFeedback stores the athlete's post-session report on a day. The
// ratings feed the feedback analysis of the next generation run.
func (s *planningService) RecordDayFeedback(ctx context.Context, athleteID primitive.ObjectID, date time.Time, feedback domain.DayFeedback) error {
	if athleteID == primitive.NilObjectID || date.IsZero() {
		return errors.New("athlete ID and date are required")
	}
	if !validRating(feedback.Exertion) || !validRating(feedback.Soreness) {
		return ErrInvalidRating
	}
	for _, ex := range feedback.Exercises {
		if ex.RIR != nil && (*ex.RIR < 0 || *ex.RIR > 10) {
			return errors.New("reps in reserve must be between 0 and 10")
		}
	}

	err := s.planRepo.SetDayFeedback(ctx, athleteID, date, feedback)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDayNotFound
		}
		return err
	}
	return nil
}

// validRating accepts a missing rating or one on the 1-10 scale.
func validRating(r *int) bool {
	return r == nil || (*r >= 1 && *r <= 10)
}

// === Feedback Analysis ===

// analyzeFeedback condenses the stored days of the history window into the
// adaptation input. Only train and recovery days count toward completion;
// exertion ratings average into overall difficulty, and per-exercise RIR
// values classify exercises as too easy or too hard.
func analyzeFeedback(days []domain.PlanDay) domain.FeedbackAnalysis {
	var analysis domain.FeedbackAnalysis

	type rirAgg struct {
		sum int
		n   int
	}
	byName := make(map[string]*rirAgg)
	var names []string

	var planned, completed int
	var exertionSum, exertionN int
	for i := range days {
		day := &days[i]
		if day.Action != domain.ActionTrain && day.Action != domain.ActionRecovery {
			continue
		}
		planned++
		if day.Completed {
			completed++
		}
		if day.Exertion != nil {
			exertionSum += *day.Exertion
			exertionN++
		}
		for _, ex := range day.Exercises {
			if ex.RIR == nil {
				continue
			}
			agg, ok := byName[ex.Name]
			if !ok {
				agg = &rirAgg{}
				byName[ex.Name] = agg
				names = append(names, ex.Name)
			}
			agg.sum += *ex.RIR
			agg.n++
			analysis.SampleSize++
		}
	}

	if planned == 0 {
		return analysis
	}
	if completed == 0 && exertionN == 0 && analysis.SampleSize == 0 {
		// Days were planned but nothing was ever reported. Silence is not
		// a skip signal, so leave the analysis empty.
		return analysis
	}

	completionRate := float64(completed) / float64(planned)
	if exertionN > 0 {
		analysis.OverallDifficulty = float64(exertionSum) / float64(exertionN)
	}

	for _, name := range names {
		mean := float64(byName[name].sum) / float64(byName[name].n)
		switch {
		case mean >= easyMeanRIR:
			analysis.TooEasy = append(analysis.TooEasy, name)
		case mean <= hardMeanRIR:
			analysis.TooHard = append(analysis.TooHard, name)
		}
	}

	// Volume and intensity move together: cruising through sessions earns
	// more work, struggling or skipping sheds some.
	cruising := exertionN > 0 && analysis.OverallDifficulty <= easyExertion && completionRate >= solidCompletion
	struggling := (exertionN > 0 && analysis.OverallDifficulty >= hardExertion) || completionRate < poorCompletion
	switch {
	case struggling:
		analysis.VolumeAdjustment = -volumeStepPercent
		analysis.IntensityModifier = 1 - intensityStep
	case cruising:
		analysis.VolumeAdjustment = volumeStepPercent
		analysis.IntensityModifier = 1 + intensityStep
	default:
		analysis.IntensityModifier = 1
	}

	analysis.Confidence = float64(analysis.SampleSize) * confidencePerRIR
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}

	return analysis
}
