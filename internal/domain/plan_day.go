package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanDay is the persisted form of one compiled day, keyed by athlete and
// date. It doubles as the training-history record once feedback arrives.
type PlanDay struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	PlanID    string             `bson:"planId" json:"planId"` // UUID of the generation run that produced this day
	Date      time.Time          `bson:"date" json:"date"`     // Normalized to UTC midnight; unique per athlete
	Action    DayAction          `bson:"action" json:"action"`
	Focus     Focus              `bson:"focus,omitempty" json:"focus,omitempty"`
	Tags      []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Exercises []ExerciseSpec     `bson:"exercises" json:"exercises"`
	Source    string             `bson:"source,omitempty" json:"source,omitempty"`     // model | template
	Strategy  string             `bson:"strategy,omitempty" json:"strategy,omitempty"` // generative | deterministic
	Completed bool               `bson:"completed" json:"completed"`
	Exertion  *int               `bson:"exertion,omitempty" json:"exertion,omitempty"` // 1-10, post-session feedback
	Soreness  *int               `bson:"soreness,omitempty" json:"soreness,omitempty"` // 1-10, post-session feedback
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DayFeedback is the athlete's post-session report for one plan day.
type DayFeedback struct {
	Completed bool               `json:"completed"`
	Exertion  *int               `json:"exertion,omitempty"` // 1-10 session RPE
	Soreness  *int               `json:"soreness,omitempty"` // 1-10 next-day soreness
	Exercises []ExerciseFeedback `json:"exercises,omitempty"`
}

// ExerciseFeedback reports reps-in-reserve for a single exercise,
// addressed by its order within the session.
type ExerciseFeedback struct {
	Order int  `json:"order"`
	RIR   *int `json:"rir,omitempty"`
}

// History maps the stored day to the planner's history view.
func (d *PlanDay) History() HistoryDay {
	return HistoryDay{
		Date:      d.Date,
		Focus:     string(d.Focus),
		Completed: d.Completed,
		Soreness:  d.Soreness,
		Exertion:  d.Exertion,
	}
}

// Compiled maps the stored day back to its pipeline form.
func (d *PlanDay) Compiled() CompiledDay {
	meta := map[string]string{}
	if d.Source != "" {
		meta[MetaSource] = d.Source
	}
	if d.Strategy != "" {
		meta[MetaStrategy] = d.Strategy
	}
	if len(meta) == 0 {
		meta = nil
	}
	return CompiledDay{
		Date:      d.Date,
		Action:    d.Action,
		Focus:     d.Focus,
		Tags:      d.Tags,
		Reason:    d.Reason,
		Exercises: d.Exercises,
		Meta:      meta,
	}
}
