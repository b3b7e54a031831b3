package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/microcycle/internal/domain"
)

func day(t *testing.T, offset int) time.Time {
	t.Helper()
	base := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) // a Monday
	return base.AddDate(0, 0, offset)
}

func trainDays(t *testing.T, n int, tags ...string) []domain.AbstractDay {
	t.Helper()
	days := make([]domain.AbstractDay, n)
	for i := range days {
		days[i] = domain.AbstractDay{Date: day(t, i), Action: domain.ActionTrain, Tags: tags}
	}
	return days
}

func TestHighIntensity(t *testing.T) {
	tests := []struct {
		name string
		ev   domain.ScheduledEvent
		want bool
	}{
		{"explicit high", domain.ScheduledEvent{Intensity: "high"}, true},
		{"explicit hard uppercase", domain.ScheduledEvent{Intensity: "HARD"}, true},
		{"label keyword", domain.ScheduledEvent{Label: "10k race"}, true},
		{"tag keyword", domain.ScheduledEvent{Label: "club night", Tags: []string{"competition"}}, true},
		{"sport name", domain.ScheduledEvent{Label: "Sunday soccer game"}, true},
		{"keyword inside word does not count", domain.ScheduledEvent{Label: "team meeting"}, false},
		{"explicit low wins nothing", domain.ScheduledEvent{Intensity: "low", Label: "easy walk"}, false},
		{"plain label", domain.ScheduledEvent{Label: "physio appointment"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HighIntensity(tt.ev))
		})
	}
}

func TestEnforceCadenceBreaksLongStreaks(t *testing.T) {
	in := trainDays(t, 5, "upper")
	out := EnforceCadence(in, 3)

	require.Len(t, out, 5)
	assert.Equal(t, domain.ActionTrain, out[0].Action)
	assert.Equal(t, domain.ActionTrain, out[1].Action)
	assert.Equal(t, domain.ActionTrain, out[2].Action)
	assert.Equal(t, domain.ActionRecovery, out[3].Action)
	assert.Equal(t, []string{"mobility"}, out[3].Tags)
	assert.Equal(t, "enforced", out[3].Reason)
	// The forced recovery resets the streak, so day five trains again.
	assert.Equal(t, domain.ActionTrain, out[4].Action)
}

func TestEnforceCadenceResetsOnRest(t *testing.T) {
	in := trainDays(t, 7, "upper")
	in[3].Action = domain.ActionRest
	out := EnforceCadence(in, 3)

	for i, d := range out {
		if i == 3 {
			assert.Equal(t, domain.ActionRest, d.Action)
			continue
		}
		assert.Equal(t, domain.ActionTrain, d.Action, "day %d", i)
	}
}

func TestEnforceCadenceDoesNotMutateInput(t *testing.T) {
	in := trainDays(t, 5, "upper")
	_ = EnforceCadence(in, 3)
	for i, d := range in {
		assert.Equal(t, domain.ActionTrain, d.Action, "day %d", i)
		assert.Equal(t, []string{"upper"}, d.Tags, "day %d", i)
	}
}

func TestEnforceCadenceIdempotent(t *testing.T) {
	in := trainDays(t, 9, "full")
	once := EnforceCadence(in, 3)
	twice := EnforceCadence(once, 3)
	assert.Equal(t, once, twice)
}

func TestTaperRewritesLowerBodyNearEvent(t *testing.T) {
	days := trainDays(t, 5, "lower", "squat")
	events := []domain.ScheduledEvent{{Date: day(t, 3), Label: "10k race"}}

	out := TaperAroundEvents(days, events, 1.5)

	// Days 2, 3 and 4 sit inside the 1.5-day window.
	assert.Equal(t, domain.ActionTrain, out[0].Action)
	assert.Equal(t, domain.ActionTrain, out[1].Action)
	for _, i := range []int{2, 3, 4} {
		assert.Equal(t, domain.ActionRecovery, out[i].Action, "day %d", i)
		assert.Equal(t, []string{"mobility"}, out[i].Tags, "day %d", i)
		assert.Contains(t, out[i].Reason, "10k race", "day %d", i)
	}
}

func TestTaperLeavesUpperBodyAlone(t *testing.T) {
	days := trainDays(t, 5, "upper", "push")
	events := []domain.ScheduledEvent{{Date: day(t, 2), Label: "league match"}}

	out := TaperAroundEvents(days, events, 1.5)
	for i, d := range out {
		assert.Equal(t, domain.ActionTrain, d.Action, "day %d", i)
	}
}

func TestTaperRewritesSameDayConditioning(t *testing.T) {
	days := trainDays(t, 3, "conditioning")
	events := []domain.ScheduledEvent{{Date: day(t, 1), Label: "club match"}}

	out := TaperAroundEvents(days, events, 1.5)

	// Conditioning only collides on the event date itself.
	assert.Equal(t, domain.ActionTrain, out[0].Action)
	assert.Equal(t, domain.ActionRecovery, out[1].Action)
	assert.Equal(t, domain.ActionTrain, out[2].Action)
}

func TestTaperIgnoresLowIntensityEvents(t *testing.T) {
	days := trainDays(t, 3, "lower")
	events := []domain.ScheduledEvent{{Date: day(t, 1), Label: "easy hike", Intensity: domain.IntensityLow}}

	out := TaperAroundEvents(days, events, 1.5)
	for i, d := range out {
		assert.Equal(t, domain.ActionTrain, d.Action, "day %d", i)
	}
}

func TestTaperNormalizesTimesOfDay(t *testing.T) {
	days := []domain.AbstractDay{{
		Date:   day(t, 0).Add(23 * time.Hour),
		Action: domain.ActionTrain,
		Tags:   []string{"legs"},
	}}
	events := []domain.ScheduledEvent{{Date: day(t, 1).Add(6 * time.Hour), Label: "race"}}

	out := TaperAroundEvents(days, events, 1.5)
	assert.Equal(t, domain.ActionRecovery, out[0].Action)
}

func TestMapToSafeFocus(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want domain.Focus
	}{
		{"squat tag", []string{"squat"}, domain.FocusLower},
		{"upper body phrase", []string{"upper body"}, domain.FocusUpper},
		{"climb maps to conditioning", []string{"climb"}, domain.FocusConditioning},
		{"yoga outranks legs", []string{"legs", "yoga"}, domain.FocusYoga},
		{"mobility synonyms", []string{"stretching"}, domain.FocusMobility},
		{"unknown falls back to full", []string{"zumba"}, domain.FocusFull},
		{"empty falls back to full", nil, domain.FocusFull},
		{"crunches is not running", []string{"crunches"}, domain.FocusFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapToSafeFocus(tt.tags))
		})
	}
}

func TestValidateFindsStructuralProblems(t *testing.T) {
	pctx := domain.PlanningContext{Today: day(t, 0), HorizonDays: 3}

	plan := domain.AbstractPlan{
		{Date: day(t, 0), Action: domain.ActionTrain},
		{Date: day(t, 2), Action: "cruise"},
	}
	warnings := Validate(plan, pctx)

	require.NotEmpty(t, warnings)
	joined := ""
	for _, w := range warnings {
		joined += w + "\n"
	}
	assert.Contains(t, joined, "horizon")
	assert.Contains(t, joined, "not sequential")
	assert.Contains(t, joined, "unknown action")
}

func TestValidateAcceptsCompliantPlan(t *testing.T) {
	pctx := domain.PlanningContext{Today: day(t, 0), HorizonDays: 3}
	plan := domain.AbstractPlan{
		{Date: day(t, 0), Action: domain.ActionTrain},
		{Date: day(t, 1), Action: domain.ActionRecovery},
		{Date: day(t, 2), Action: domain.ActionRest},
	}
	assert.Empty(t, Validate(plan, pctx))
}
