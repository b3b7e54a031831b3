package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/config"
	"alcyxob/microcycle/internal/domain"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func pctxWith(freq, horizon int) domain.PlanningContext {
	return domain.PlanningContext{
		Today:       monday,
		HorizonDays: horizon,
		Profile:     domain.Profile{TrainingDaysPerWeek: freq, Goal: "strength"},
	}
}

func actions(plan domain.AbstractPlan) []domain.DayAction {
	out := make([]domain.DayAction, len(plan))
	for i, d := range plan {
		out[i] = d.Action
	}
	return out
}

func TestSelectEvaluatesAvailabilityPerCall(t *testing.T) {
	offline, err := completion.NewClient(config.CompletionConfig{})
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyDeterministic, Select(offline, Config{}).Name())

	online := completion.NewClientWithModel(&completion.ScriptedModel{}, config.CompletionConfig{})
	assert.Equal(t, domain.StrategyGenerative, Select(online, Config{}).Name())
}

func TestDeterministicWeekdayTable(t *testing.T) {
	tests := []struct {
		freq int
		want []domain.DayAction // Monday through Sunday
	}{
		{0, []domain.DayAction{"rest", "rest", "train", "rest", "rest", "rest", "rest"}},
		{1, []domain.DayAction{"rest", "rest", "train", "rest", "rest", "rest", "rest"}},
		{2, []domain.DayAction{"train", "rest", "rest", "train", "rest", "rest", "rest"}},
		{3, []domain.DayAction{"train", "rest", "train", "rest", "train", "rest", "rest"}},
		{4, []domain.DayAction{"train", "train", "rest", "train", "train", "rest", "rest"}},
		// Five weekdays would be five in a row; the cadence cap forces
		// Thursday into recovery.
		{5, []domain.DayAction{"train", "train", "train", "recovery", "train", "rest", "rest"}},
		{7, []domain.DayAction{"train", "train", "train", "recovery", "train", "rest", "rest"}},
	}

	for _, tt := range tests {
		plan, err := NewDeterministic(Config{}).Plan(context.Background(), pctxWith(tt.freq, 7))
		require.NoError(t, err)
		assert.Equal(t, tt.want, actions(plan), "frequency %d", tt.freq)
	}
}

func TestDeterministicAlternatesFocus(t *testing.T) {
	plan, err := NewDeterministic(Config{}).Plan(context.Background(), pctxWith(3, 7))
	require.NoError(t, err)

	assert.Equal(t, []string{"upper"}, plan[0].Tags) // Monday
	assert.Equal(t, []string{"lower"}, plan[2].Tags) // Wednesday
	assert.Equal(t, []string{"upper"}, plan[4].Tags) // Friday
}

func TestDeterministicDatesAreSequentialFromToday(t *testing.T) {
	pctx := pctxWith(3, 10)
	pctx.Today = monday.Add(14*time.Hour + 30*time.Minute) // planning mid-afternoon

	plan, err := NewDeterministic(Config{}).Plan(context.Background(), pctx)
	require.NoError(t, err)
	require.Len(t, plan, 10)
	for i, d := range plan {
		assert.Equal(t, monday.AddDate(0, 0, i), d.Date, "day %d", i)
	}
}

func TestDeterministicSchedulesAroundEvents(t *testing.T) {
	pctx := pctxWith(5, 7)
	pctx.Events = []domain.ScheduledEvent{{Date: monday.AddDate(0, 0, 1), Label: "league match"}}

	plan, err := NewDeterministic(Config{}).Plan(context.Background(), pctx)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionTrain, plan[0].Action)
	assert.Equal(t, domain.ActionEvent, plan[1].Action)
	assert.Equal(t, "league match", plan[1].Reason)

	// Wednesday would be a lower session one day after a demanding match,
	// so the taper turns it into recovery.
	assert.Equal(t, domain.ActionRecovery, plan[2].Action)
	assert.Contains(t, plan[2].Reason, "league match")

	assert.Equal(t, domain.ActionTrain, plan[3].Action)
	assert.Equal(t, domain.ActionTrain, plan[4].Action)
}

func TestDeterministicStartMidWeek(t *testing.T) {
	pctx := pctxWith(3, 7)
	pctx.Today = time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC) // a Thursday

	plan, err := NewDeterministic(Config{}).Plan(context.Background(), pctx)
	require.NoError(t, err)

	want := []domain.DayAction{"rest", "train", "rest", "rest", "train", "rest", "train"}
	assert.Equal(t, want, actions(plan))
}

func newGenerativeWith(replies ...string) Strategy {
	client := completion.NewClientWithModel(&completion.ScriptedModel{Replies: replies}, config.CompletionConfig{Retries: 1})
	return NewGenerative(client, Config{})
}

func TestGenerativeNormalizesModelReply(t *testing.T) {
	// Wrong dates, shouting case, an unknown action, and an invented
	// event: all of it must be normalized onto the real calendar.
	reply := `{"days": [
		{"date": "1999-01-01", "action": "TRAIN", "tags": ["Upper"], "reason": "push day"},
		{"date": "1999-01-02", "action": "party", "tags": [], "reason": ""},
		{"date": "1999-01-03", "action": "event", "tags": [], "reason": "imaginary race"}
	]}`
	plan, err := newGenerativeWith(reply).Plan(context.Background(), pctxWith(3, 3))
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, monday, plan[0].Date)
	assert.Equal(t, domain.ActionTrain, plan[0].Action)
	assert.Equal(t, []string{"upper"}, plan[0].Tags)

	assert.Equal(t, monday.AddDate(0, 0, 1), plan[1].Date)
	assert.Equal(t, domain.ActionRest, plan[1].Action)

	// No event exists on day three, so the claimed one is demoted.
	assert.Equal(t, domain.ActionRest, plan[2].Action)
}

func TestGenerativeForcesCalendarEvents(t *testing.T) {
	reply := `{"days": [
		{"action": "train", "tags": ["upper"]},
		{"action": "train", "tags": ["upper"]},
		{"action": "rest"}
	]}`
	pctx := pctxWith(3, 3)
	pctx.Events = []domain.ScheduledEvent{{Date: monday.AddDate(0, 0, 1), Label: "10k race", Tags: []string{"run"}}}

	plan, err := newGenerativeWith(reply).Plan(context.Background(), pctx)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionEvent, plan[1].Action)
	assert.Equal(t, "10k race", plan[1].Reason)
}

func TestGenerativeReappliesCadenceCap(t *testing.T) {
	reply := `{"days": [
		{"action": "train", "tags": ["upper"]},
		{"action": "train", "tags": ["upper"]},
		{"action": "train", "tags": ["upper"]},
		{"action": "train", "tags": ["upper"]},
		{"action": "train", "tags": ["upper"]}
	]}`
	plan, err := newGenerativeWith(reply).Plan(context.Background(), pctxWith(5, 5))
	require.NoError(t, err)

	want := []domain.DayAction{"train", "train", "train", "recovery", "train"}
	assert.Equal(t, want, actions(plan))
	assert.Equal(t, "enforced", plan[3].Reason)
}

func TestGenerativePropagatesCompletionFailure(t *testing.T) {
	bad := `{"days": "not a list"}`
	client := completion.NewClientWithModel(&completion.ScriptedModel{Replies: []string{bad, bad, bad}}, config.CompletionConfig{Retries: 2})

	_, err := NewGenerative(client, Config{}).Plan(context.Background(), pctxWith(3, 3))
	require.Error(t, err)

	var malformed *completion.MalformedOutputError
	assert.ErrorAs(t, err, &malformed)
}
