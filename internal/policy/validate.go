package policy

import (
	"fmt"

	"alcyxob/microcycle/internal/domain"
)

// Validate checks an abstract plan against its planning context and returns
// advisory warnings. It never fails a plan: downstream stages keep running
// and callers decide what to do with the findings.
func Validate(plan domain.AbstractPlan, pctx domain.PlanningContext) []string {
	var warnings []string

	if len(plan) != pctx.HorizonDays {
		warnings = append(warnings,
			fmt.Sprintf("plan covers %d day(s) but the horizon is %d", len(plan), pctx.HorizonDays))
	}

	if len(plan) > 0 {
		start := Midnight(pctx.Today)
		if !Midnight(plan[0].Date).Equal(start) {
			warnings = append(warnings,
				fmt.Sprintf("plan starts on %s instead of %s",
					Midnight(plan[0].Date).Format("2006-01-02"), start.Format("2006-01-02")))
		}
	}
	for i := 1; i < len(plan); i++ {
		prev := Midnight(plan[i-1].Date)
		cur := Midnight(plan[i].Date)
		if !cur.Equal(prev.AddDate(0, 0, 1)) {
			warnings = append(warnings,
				fmt.Sprintf("plan dates are not sequential at position %d", i))
			break
		}
	}

	eventDates := map[string]string{}
	for _, ev := range pctx.Events {
		eventDates[Midnight(ev.Date).Format("2006-01-02")] = ev.Label
	}
	streak := 0
	for _, day := range plan {
		if !domain.KnownAction(string(day.Action)) {
			warnings = append(warnings,
				fmt.Sprintf("unknown action %q on %s", day.Action, Midnight(day.Date).Format("2006-01-02")))
		}
		if day.Action == domain.ActionEvent {
			if _, ok := eventDates[Midnight(day.Date).Format("2006-01-02")]; !ok {
				warnings = append(warnings,
					fmt.Sprintf("event day %s has no matching scheduled event", Midnight(day.Date).Format("2006-01-02")))
			}
		}
		if day.Action == domain.ActionTrain {
			streak++
			if streak > DefaultMaxConsecutiveTraining {
				warnings = append(warnings,
					fmt.Sprintf("more than %d consecutive training days at %s",
						DefaultMaxConsecutiveTraining, Midnight(day.Date).Format("2006-01-02")))
			}
		} else {
			streak = 0
		}
	}

	return warnings
}
