package domain

import (
	"time"
)

// Focus is the closed set of session focuses the exercise compiler can
// program for. Anything outside this set is mapped before compilation.
type Focus string

const (
	FocusUpper        Focus = "upper"
	FocusLower        Focus = "lower"
	FocusFull         Focus = "full"
	FocusConditioning Focus = "conditioning"
	FocusMobility     Focus = "mobility"
	FocusYoga         Focus = "yoga"
	FocusPilates      Focus = "pilates"
	FocusCalisthenics Focus = "calisthenics"
)

// KnownFocus reports whether f is one of the compilable focus values.
func KnownFocus(f Focus) bool {
	switch f {
	case FocusUpper, FocusLower, FocusFull, FocusConditioning,
		FocusMobility, FocusYoga, FocusPilates, FocusCalisthenics:
		return true
	}
	return false
}

// Generation metadata recorded on compiled days.
const (
	MetaSource   = "source"
	MetaStrategy = "strategy"

	SourceModel    = "model"    // exercises produced by the completion service
	SourceTemplate = "template" // exercises taken from the built-in templates

	StrategyGenerative    = "generative"
	StrategyDeterministic = "deterministic"
)

// ExerciseSpec is one fully programmed exercise prescription within a day.
type ExerciseSpec struct {
	Name            string   `bson:"name" json:"name"`
	Sets            int      `bson:"sets" json:"sets"`
	Reps            *int     `bson:"reps,omitempty" json:"reps,omitempty"` // nil for time-based work (holds, flows, steady cardio)
	RestSeconds     int      `bson:"restSeconds" json:"restSeconds"`
	RIR             *int     `bson:"rir,omitempty" json:"rir,omitempty"` // reps in reserve; reported by the athlete afterwards, never prescribed
	LoadKg          *float64 `bson:"loadKg,omitempty" json:"loadKg,omitempty"`
	DurationSeconds int      `bson:"durationSeconds" json:"durationSeconds"` // estimated total time including rest
	Order           int      `bson:"order" json:"order"`                     // position within the session, compound work first
}

// CompiledDay is a planned day with its exercise prescription attached.
// Rest and event days always carry an empty exercise list.
type CompiledDay struct {
	Date      time.Time         `json:"date"`
	Action    DayAction         `json:"action"`
	Focus     Focus             `json:"focus,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Exercises []ExerciseSpec    `json:"exercises"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// CompiledPlan is the finished product of one planning run.
type CompiledPlan struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Days        []CompiledDay `json:"days"`
	Notes       string        `json:"notes,omitempty"`    // optional refinement commentary
	Warnings    []string      `json:"warnings,omitempty"` // advisory validation findings
}

// PlanSummary aggregates a compiled plan for display.
type PlanSummary struct {
	TotalDays            int     `json:"totalDays"`
	TrainingDays         int     `json:"trainingDays"`
	RecoveryDays         int     `json:"recoveryDays"`
	RestDays             int     `json:"restDays"`
	EventDays            int     `json:"eventDays"`
	TotalExercises       int     `json:"totalExercises"`
	EstimatedWeeklyHours float64 `json:"estimatedWeeklyHours"`
}
