package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventIntensity labels how demanding a scheduled event is expected to be.
type EventIntensity string

const (
	IntensityLow    EventIntensity = "low"
	IntensityMedium EventIntensity = "medium"
	IntensityHigh   EventIntensity = "high"
)

// Event is a stored calendar entry for an athlete: a race, a match, a long
// hike. Events are immovable facts the planner schedules around.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	Date      time.Time          `bson:"date" json:"date"`   // Normalized to UTC midnight
	Label     string             `bson:"label" json:"label"` // e.g., "10k race", "league match"
	Intensity EventIntensity     `bson:"intensity,omitempty" json:"intensity,omitempty"` // Empty means derived from label/tags
	Tags      []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ScheduledEvent is the planning view of an Event.
type ScheduledEvent struct {
	Date      time.Time      `json:"date"`
	Label     string         `json:"label"`
	Intensity EventIntensity `json:"intensity,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Notes     string         `json:"notes,omitempty"`
}

// Scheduled maps the stored event to its planning view.
func (e *Event) Scheduled() ScheduledEvent {
	return ScheduledEvent{
		Date:      e.Date,
		Label:     e.Label,
		Intensity: e.Intensity,
		Tags:      e.Tags,
		Notes:     e.Notes,
	}
}
