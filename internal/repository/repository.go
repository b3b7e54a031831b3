package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs

	"alcyxob/microcycle/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AthleteRepository defines the interface for interacting with athlete data.
type AthleteRepository interface {
	Create(ctx context.Context, athlete *domain.Athlete) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error)
	Update(ctx context.Context, athlete *domain.Athlete) error
	// ListAutoPlan returns every athlete with automatic weekly planning enabled.
	ListAutoPlan(ctx context.Context) ([]domain.Athlete, error)
}

// EventRepository defines the interface for interacting with calendar events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (primitive.ObjectID, error)
	ListByAthleteInRange(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.Event, error)
	Delete(ctx context.Context, id, athleteID primitive.ObjectID) error // Ensure athlete owns the event
}

// PlanRepository defines the interface for interacting with stored plan days.
// Days are keyed by athlete and UTC-midnight date, one document per day.
type PlanRepository interface {
	// InsertDayIfAbsent stores the day unless one already exists for the same
	// athlete and date. It reports whether a new document was inserted.
	InsertDayIfAbsent(ctx context.Context, day *domain.PlanDay) (bool, error)
	ListByAthleteInRange(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.PlanDay, error)
	GetDay(ctx context.Context, athleteID primitive.ObjectID, date time.Time) (*domain.PlanDay, error)
	SetDayFeedback(ctx context.Context, athleteID primitive.ObjectID, date time.Time, feedback domain.DayFeedback) error
}
