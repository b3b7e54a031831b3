package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Athlete represents a self-coached athlete the service generates plans for.
type Athlete struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Goal                string             `bson:"goal,omitempty" json:"goal,omitempty"` // e.g., "strength", "hypertrophy", "endurance"
	TrainingDaysPerWeek int                `bson:"trainingDaysPerWeek" json:"trainingDaysPerWeek"`
	Equipment           string             `bson:"equipment,omitempty" json:"equipment,omitempty"` // Free text, e.g., "dumbbells and a pull-up bar"
	Dislikes            string             `bson:"dislikes,omitempty" json:"dislikes,omitempty"`   // Comma-separated exercise names to avoid
	SessionMinutes      int                `bson:"sessionMinutes,omitempty" json:"sessionMinutes,omitempty"`
	AutoPlan            bool               `bson:"autoPlan" json:"autoPlan"`                           // Included in the scheduled re-planning job
	HorizonDays         int                `bson:"horizonDays,omitempty" json:"horizonDays,omitempty"` // 0 means the configured default
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile is the planning view of an athlete: only the fields the pipeline
// consumes. It carries no identity and is safe to embed in prompts.
type Profile struct {
	Goal                string `json:"goal,omitempty"`
	TrainingDaysPerWeek int    `json:"trainingDaysPerWeek"`
	Equipment           string `json:"equipment,omitempty"`
	Dislikes            string `json:"dislikes,omitempty"`
	SessionMinutes      int    `json:"sessionMinutes,omitempty"`
}

// Profile maps the stored athlete to its planning view.
func (a *Athlete) Profile() Profile {
	return Profile{
		Goal:                a.Goal,
		TrainingDaysPerWeek: a.TrainingDaysPerWeek,
		Equipment:           a.Equipment,
		Dislikes:            a.Dislikes,
		SessionMinutes:      a.SessionMinutes,
	}
}

// DislikeList splits the free-text dislikes field into trimmed, lowercased
// entries. Empty entries are dropped.
func (p Profile) DislikeList() []string {
	if strings.TrimSpace(p.Dislikes) == "" {
		return nil
	}
	parts := strings.Split(p.Dislikes, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
