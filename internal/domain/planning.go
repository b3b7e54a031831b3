package domain

import (
	"time"
)

// DayAction classifies what a planned day asks of the athlete.
type DayAction string

const (
	ActionTrain    DayAction = "train"
	ActionRecovery DayAction = "recovery"
	ActionRest     DayAction = "rest"
	ActionEvent    DayAction = "event"
)

// KnownAction reports whether s is one of the four planned-day actions.
func KnownAction(s string) bool {
	switch DayAction(s) {
	case ActionTrain, ActionRecovery, ActionRest, ActionEvent:
		return true
	}
	return false
}

// HistoryDay is one day of recent training history used as planner input.
type HistoryDay struct {
	Date      time.Time `json:"date"`
	Focus     string    `json:"focus,omitempty"`
	Completed bool      `json:"completed"`
	Soreness  *int      `json:"soreness,omitempty"` // 1-10, nil when not reported
	Exertion  *int      `json:"exertion,omitempty"` // 1-10, nil when not reported
}

// PlanningContext is everything the pipeline may consult for one planning
// run: who the athlete is, what is on their calendar, and what they did
// recently. It is assembled by the caller and never mutated by the pipeline.
type PlanningContext struct {
	Today       time.Time        `json:"today"`
	HorizonDays int              `json:"horizonDays"`
	Profile     Profile          `json:"profile"`
	Events      []ScheduledEvent `json:"events,omitempty"`
	History     []HistoryDay     `json:"history,omitempty"`
	PriorPlan   *CompiledPlan    `json:"priorPlan,omitempty"`
}

// AbstractDay is a single scheduled day before any exercises exist: an
// action, loose focus tags, and a human-readable reason for the choice.
type AbstractDay struct {
	Date   time.Time `json:"date"`
	Action DayAction `json:"action"`
	Tags   []string  `json:"tags,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// AbstractPlan is the day-by-day skeleton covering the planning horizon,
// ordered by date with exactly one entry per day.
type AbstractPlan []AbstractDay
