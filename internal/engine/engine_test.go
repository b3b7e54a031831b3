package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/config"
	"alcyxob/microcycle/internal/domain"
)

var monday = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

func offlineEngine(t *testing.T) *Engine {
	t.Helper()
	client, err := completion.NewClient(config.CompletionConfig{})
	require.NoError(t, err)
	e := New(client, config.PlannerConfig{}, nil)
	e.now = func() time.Time { return monday }
	return e
}

func scriptedEngine(model *completion.ScriptedModel) *Engine {
	client := completion.NewClientWithModel(model, config.CompletionConfig{Retries: 2})
	e := New(client, config.PlannerConfig{}, nil)
	e.now = func() time.Time { return monday }
	return e
}

const upperSessionReply = `{"exercises": [
	{"name": "Push-up", "sets": 3, "reps": 12, "restSeconds": 60},
	{"name": "Pike push-up", "sets": 3, "reps": 8, "restSeconds": 90},
	{"name": "Triceps dip", "sets": 3, "reps": 10, "restSeconds": 60},
	{"name": "Plank shoulder tap", "sets": 3, "reps": null, "restSeconds": 45, "durationSeconds": 300}
]}`

func TestPlanOfflineCompilesFullHorizon(t *testing.T) {
	e := offlineEngine(t)

	plan, err := e.Plan(context.Background(), domain.PlanningContext{
		Today:       monday,
		HorizonDays: 7,
		Profile:     domain.Profile{TrainingDaysPerWeek: 3},
	}, Options{})
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, monday, plan.GeneratedAt)
	require.Len(t, plan.Days, 7)

	wantActions := []domain.DayAction{
		domain.ActionTrain, domain.ActionRest, domain.ActionTrain,
		domain.ActionRest, domain.ActionTrain, domain.ActionRest, domain.ActionRest,
	}
	wantFocus := map[int]domain.Focus{0: domain.FocusUpper, 2: domain.FocusLower, 4: domain.FocusUpper}

	for i, day := range plan.Days {
		assert.True(t, day.Date.Equal(monday.AddDate(0, 0, i)), "day %d date", i)
		assert.Equal(t, wantActions[i], day.Action, "day %d action", i)
		assert.Equal(t, domain.StrategyDeterministic, day.Meta[domain.MetaStrategy], "day %d", i)

		if day.Action == domain.ActionTrain {
			assert.Equal(t, wantFocus[i], day.Focus, "day %d focus", i)
			assert.GreaterOrEqual(t, len(day.Exercises), 4, "day %d", i)
			assert.LessOrEqual(t, len(day.Exercises), 6, "day %d", i)
			assert.Equal(t, domain.SourceTemplate, day.Meta[domain.MetaSource], "day %d", i)
		} else {
			assert.Empty(t, day.Exercises, "day %d", i)
			_, hasSource := day.Meta[domain.MetaSource]
			assert.False(t, hasSource, "day %d carries no exercise source", i)
		}
	}
}

func TestPlanKeepsDateOrderUnderParallelCompile(t *testing.T) {
	client, err := completion.NewClient(config.CompletionConfig{})
	require.NoError(t, err)
	e := New(client, config.PlannerConfig{MaxParallelCompile: 3}, nil)
	e.now = func() time.Time { return monday }

	plan, err := e.Plan(context.Background(), domain.PlanningContext{
		Today:       monday,
		HorizonDays: 14,
		Profile:     domain.Profile{TrainingDaysPerWeek: 5},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Days, 14)

	for i, day := range plan.Days {
		assert.True(t, day.Date.Equal(monday.AddDate(0, 0, i)),
			"day %d landed out of order: %s", i, day.Date)
	}

	// The fourth weekday of a five-day week breaks the consecutive-training
	// cap, so both Thursdays come back as active recovery.
	for _, i := range []int{3, 10} {
		day := plan.Days[i]
		assert.Equal(t, domain.ActionRecovery, day.Action, "day %d", i)
		assert.Equal(t, domain.FocusMobility, day.Focus, "day %d", i)
		assert.NotEmpty(t, day.Exercises, "recovery day %d still gets a session", i)
	}
}

func TestPlanShortCircuitsRestAndEventDays(t *testing.T) {
	model := &completion.ScriptedModel{Replies: []string{
		`{"days": [
			{"date": "2025-03-03", "action": "train", "tags": ["upper"], "reason": "push day"},
			{"date": "2025-03-04", "action": "rest", "tags": [], "reason": "easy day"},
			{"date": "2025-03-05", "action": "event", "tags": [], "reason": ""}
		]}`,
		upperSessionReply,
	}}
	e := scriptedEngine(model)

	plan, err := e.Plan(context.Background(), domain.PlanningContext{
		Today:       monday,
		HorizonDays: 3,
		Profile:     domain.Profile{TrainingDaysPerWeek: 3},
		Events: []domain.ScheduledEvent{
			{Date: monday.AddDate(0, 0, 2), Label: "10k race", Intensity: domain.IntensityHigh},
		},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Days, 3)

	assert.Equal(t, 2, model.Calls,
		"one planning call plus one exercise call; rest and event days never touch the model")

	train := plan.Days[0]
	assert.Equal(t, domain.ActionTrain, train.Action)
	assert.Equal(t, domain.FocusUpper, train.Focus)
	assert.Len(t, train.Exercises, 4)
	assert.Equal(t, domain.SourceModel, train.Meta[domain.MetaSource])
	assert.Equal(t, domain.StrategyGenerative, train.Meta[domain.MetaStrategy])

	assert.Equal(t, domain.ActionRest, plan.Days[1].Action)
	assert.Empty(t, plan.Days[1].Exercises)

	event := plan.Days[2]
	assert.Equal(t, domain.ActionEvent, event.Action)
	assert.Empty(t, event.Exercises)
	assert.Equal(t, "10k race", event.Reason)
}

func TestPlanFallsBackToDeterministicPlanning(t *testing.T) {
	model := &completion.ScriptedModel{Replies: []string{
		"scrambled", "still scrambled", "nope",
	}}
	e := scriptedEngine(model)

	plan, err := e.Plan(context.Background(), domain.PlanningContext{
		Today:       monday,
		HorizonDays: 7,
		Profile:     domain.Profile{TrainingDaysPerWeek: 2},
	}, Options{})
	require.NoError(t, err, "a generative planning failure must not surface to the caller")
	require.Len(t, plan.Days, 7)

	wantActions := []domain.DayAction{
		domain.ActionTrain, domain.ActionRest, domain.ActionRest,
		domain.ActionTrain, domain.ActionRest, domain.ActionRest, domain.ActionRest,
	}
	for i, day := range plan.Days {
		assert.Equal(t, wantActions[i], day.Action, "day %d", i)
		assert.Equal(t, domain.StrategyDeterministic, day.Meta[domain.MetaStrategy], "day %d", i)
		if day.Action == domain.ActionTrain {
			assert.Equal(t, domain.SourceTemplate, day.Meta[domain.MetaSource],
				"day %d: exhausted backend means template exercises", i)
			assert.NotEmpty(t, day.Exercises)
		}
	}
}

func TestPlanCancelledContextReturnsErrorNotPartialPlan(t *testing.T) {
	e := offlineEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := e.Plan(ctx, domain.PlanningContext{
		Today:       monday,
		HorizonDays: 7,
		Profile:     domain.Profile{TrainingDaysPerWeek: 3},
	}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, plan)
}

func TestPlanRefinementNote(t *testing.T) {
	note := "Solid week. Keep Wednesday light and get to bed early before the race."
	model := &completion.ScriptedModel{Replies: []string{
		`{"days": [{"date": "2025-03-03", "action": "train", "tags": ["upper"], "reason": "push day"}]}`,
		upperSessionReply,
		note,
	}}
	e := scriptedEngine(model)

	plan, err := e.Plan(context.Background(), domain.PlanningContext{
		Today:       monday,
		HorizonDays: 1,
		Profile:     domain.Profile{TrainingDaysPerWeek: 3},
	}, Options{EnableRefinement: true})
	require.NoError(t, err)

	assert.Equal(t, note, plan.Notes)
	assert.Equal(t, 3, model.Calls)
}

func TestPlanRefinementFailureIsNotFatal(t *testing.T) {
	model := &completion.ScriptedModel{
		Replies: []string{
			`{"days": [{"date": "2025-03-03", "action": "train", "tags": ["upper"], "reason": "push day"}]}`,
			upperSessionReply,
			"",
		},
		Errs: []error{nil, nil, errors.New("backend hiccup")},
	}
	e := scriptedEngine(model)

	plan, err := e.Plan(context.Background(), domain.PlanningContext{
		Today:       monday,
		HorizonDays: 1,
		Profile:     domain.Profile{TrainingDaysPerWeek: 3},
	}, Options{EnableRefinement: true})
	require.NoError(t, err)
	assert.Empty(t, plan.Notes)
}

func TestEstimateDurationRoundsUp(t *testing.T) {
	day := domain.CompiledDay{Exercises: []domain.ExerciseSpec{
		{DurationSeconds: 600},
		{DurationSeconds: 601},
	}}
	assert.Equal(t, 21, EstimateDuration(day))
	assert.Equal(t, EstimateDuration(day), EstimateDuration(day), "pure function of the day")
	assert.Zero(t, EstimateDuration(domain.CompiledDay{}))
}

func TestSummarize(t *testing.T) {
	plan := &domain.CompiledPlan{Days: []domain.CompiledDay{
		{Action: domain.ActionTrain, Exercises: []domain.ExerciseSpec{
			{DurationSeconds: 1200}, {DurationSeconds: 600},
		}},
		{Action: domain.ActionRecovery, Exercises: []domain.ExerciseSpec{
			{DurationSeconds: 600},
		}},
		{Action: domain.ActionRest},
		{Action: domain.ActionEvent},
	}}

	s := Summarize(plan)
	assert.Equal(t, 4, s.TotalDays)
	assert.Equal(t, 1, s.TrainingDays)
	assert.Equal(t, 1, s.RecoveryDays)
	assert.Equal(t, 1, s.RestDays)
	assert.Equal(t, 1, s.EventDays)
	assert.Equal(t, 3, s.TotalExercises)

	// 40 minutes over a 4-day horizon scales to 70 minutes per week.
	assert.InDelta(t, 70.0/60.0, s.EstimatedWeeklyHours, 1e-9)

	assert.Zero(t, Summarize(nil).TotalDays)
}
