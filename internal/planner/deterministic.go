package planner

import (
	"context"
	"time"

	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/policy"
)

// deterministicStrategy is the rule-based fallback planner. It needs no
// network, cannot fail, and produces a sane week from the profile alone.
type deterministicStrategy struct {
	maxConsecutive int
	taperWindow    float64
}

// NewDeterministic builds the rule-based strategy.
func NewDeterministic(cfg Config) Strategy {
	s := &deterministicStrategy{
		maxConsecutive: cfg.MaxConsecutive,
		taperWindow:    cfg.TaperWindow,
	}
	if s.maxConsecutive <= 0 {
		s.maxConsecutive = policy.DefaultMaxConsecutiveTraining
	}
	if s.taperWindow <= 0 {
		s.taperWindow = policy.DefaultTaperWindowDays
	}
	return s
}

func (s *deterministicStrategy) Name() string { return domain.StrategyDeterministic }

// trainingWeekdays maps a weekly frequency onto fixed weekdays. Frequencies
// above five saturate at the Monday-to-Friday block.
func trainingWeekdays(perWeek int) map[time.Weekday]bool {
	switch {
	case perWeek >= 5:
		return map[time.Weekday]bool{
			time.Monday: true, time.Tuesday: true, time.Wednesday: true,
			time.Thursday: true, time.Friday: true,
		}
	case perWeek == 4:
		return map[time.Weekday]bool{
			time.Monday: true, time.Tuesday: true,
			time.Thursday: true, time.Friday: true,
		}
	case perWeek == 3:
		return map[time.Weekday]bool{
			time.Monday: true, time.Wednesday: true, time.Friday: true,
		}
	case perWeek == 2:
		return map[time.Weekday]bool{time.Monday: true, time.Thursday: true}
	default:
		return map[time.Weekday]bool{time.Wednesday: true}
	}
}

func (s *deterministicStrategy) Plan(_ context.Context, pctx domain.PlanningContext) (domain.AbstractPlan, error) {
	start := policy.Midnight(pctx.Today)
	weekdays := trainingWeekdays(pctx.Profile.TrainingDaysPerWeek)
	events := eventsByDate(pctx.Events)

	plan := make(domain.AbstractPlan, 0, pctx.HorizonDays)
	streak := 0
	trained := 0
	for i := 0; i < pctx.HorizonDays; i++ {
		date := start.AddDate(0, 0, i)
		if ev, ok := events[dateKey(date)]; ok {
			plan = append(plan, domain.AbstractDay{
				Date:   date,
				Action: domain.ActionEvent,
				Tags:   eventTags(ev),
				Reason: ev.Label,
			})
			streak = 0
			continue
		}
		if !weekdays[date.Weekday()] {
			plan = append(plan, domain.AbstractDay{
				Date:   date,
				Action: domain.ActionRest,
				Reason: "scheduled rest",
			})
			streak = 0
			continue
		}
		if streak >= s.maxConsecutive {
			plan = append(plan, domain.AbstractDay{
				Date:   date,
				Action: domain.ActionRecovery,
				Tags:   []string{"mobility"},
				Reason: "enforced",
			})
			streak = 0
			continue
		}

		// Alternate upper and lower sessions as training days accumulate.
		tags := []string{"upper"}
		if trained%2 == 1 {
			tags = []string{"lower"}
		}
		plan = append(plan, domain.AbstractDay{
			Date:   date,
			Action: domain.ActionTrain,
			Tags:   tags,
			Reason: "scheduled training day",
		})
		streak++
		trained++
	}

	plan = policy.EnforceCadence(plan, s.maxConsecutive)
	plan = policy.TaperAroundEvents(plan, pctx.Events, s.taperWindow)
	return plan, nil
}

func dateKey(t time.Time) string {
	return policy.Midnight(t).Format("2006-01-02")
}

func eventsByDate(events []domain.ScheduledEvent) map[string]domain.ScheduledEvent {
	out := make(map[string]domain.ScheduledEvent, len(events))
	for _, ev := range events {
		key := dateKey(ev.Date)
		// The first high-intensity event of a day wins over earlier entries
		// so the taper always sees the demanding one.
		if existing, ok := out[key]; ok && !policy.HighIntensity(existing) && policy.HighIntensity(ev) {
			out[key] = ev
			continue
		}
		if _, ok := out[key]; !ok {
			out[key] = ev
		}
	}
	return out
}

func eventTags(ev domain.ScheduledEvent) []string {
	if len(ev.Tags) > 0 {
		tags := make([]string, len(ev.Tags))
		copy(tags, ev.Tags)
		return tags
	}
	return nil
}
