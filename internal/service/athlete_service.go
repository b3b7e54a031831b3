package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/repository"
)

// --- Error Definitions ---
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidIntensity = errors.New("intensity must be low, medium, or high")
)

const maxTrainingDaysPerWeek = 7

// --- Service Interface ---
type AthleteService interface {
	// Athlete Profile
	CreateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error)
	GetAthlete(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error)
	UpdateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error)

	// Calendar Events
	AddEvent(ctx context.Context, athleteID primitive.ObjectID, event *domain.Event) (*domain.Event, error)
	ListEvents(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.Event, error)
	RemoveEvent(ctx context.Context, athleteID, eventID primitive.ObjectID) error
}

// --- Service Implementation ---

// athleteService implements the AthleteService interface.
type athleteService struct {
	athleteRepo repository.AthleteRepository
	eventRepo   repository.EventRepository
}

// NewAthleteService creates a new instance of athleteService.
func NewAthleteService(athleteRepo repository.AthleteRepository, eventRepo repository.EventRepository) AthleteService {
	return &athleteService{
		athleteRepo: athleteRepo,
		eventRepo:   eventRepo,
	}
}

// === Athlete Profile ===

// CreateAthlete validates and stores a new athlete profile.
func (s *athleteService) CreateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error) {
	if err := validateProfile(athlete); err != nil {
		return nil, err
	}

	id, err := s.athleteRepo.Create(ctx, athlete)
	if err != nil {
		return nil, err
	}
	athlete.ID = id
	return athlete, nil
}

// GetAthlete retrieves an athlete by ID.
func (s *athleteService) GetAthlete(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	if id == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	athlete, err := s.athleteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return athlete, nil
}

// UpdateAthlete overwrites the mutable fields of an existing athlete.
func (s *athleteService) UpdateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error) {
	if athlete.ID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	if err := validateProfile(athlete); err != nil {
		return nil, err
	}

	err := s.athleteRepo.Update(ctx, athlete)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return s.athleteRepo.GetByID(ctx, athlete.ID)
}

func validateProfile(athlete *domain.Athlete) error {
	if athlete.Name == "" {
		return errors.New("athlete name is required")
	}
	if athlete.TrainingDaysPerWeek < 0 || athlete.TrainingDaysPerWeek > maxTrainingDaysPerWeek {
		return errors.New("training days per week must be between 0 and 7")
	}
	if athlete.SessionMinutes < 0 {
		return errors.New("session minutes cannot be negative")
	}
	if athlete.HorizonDays < 0 {
		return errors.New("horizon days cannot be negative")
	}
	return nil
}

// === Calendar Events ===

// AddEvent stores a calendar event for the athlete after verifying the
// athlete exists. The planner treats stored events as immovable.
func (s *athleteService) AddEvent(ctx context.Context, athleteID primitive.ObjectID, event *domain.Event) (*domain.Event, error) {
	// 1. Verify the athlete exists
	if _, err := s.GetAthlete(ctx, athleteID); err != nil {
		return nil, err
	}

	// 2. Validate the event
	if event.Label == "" {
		return nil, errors.New("event label is required")
	}
	if event.Date.IsZero() {
		return nil, errors.New("event date is required")
	}
	switch event.Intensity {
	case "", domain.IntensityLow, domain.IntensityMedium, domain.IntensityHigh:
	default:
		return nil, ErrInvalidIntensity
	}

	// 3. Store it
	event.AthleteID = athleteID
	id, err := s.eventRepo.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = id
	return event, nil
}

// ListEvents retrieves the athlete's events with from <= date < to.
func (s *athleteService) ListEvents(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.Event, error) {
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	return s.eventRepo.ListByAthleteInRange(ctx, athleteID, from, to)
}

// RemoveEvent deletes an event owned by the athlete.
func (s *athleteService) RemoveEvent(ctx context.Context, athleteID, eventID primitive.ObjectID) error {
	if athleteID == primitive.NilObjectID || eventID == primitive.NilObjectID {
		return errors.New("athlete ID and event ID are required")
	}
	err := s.eventRepo.Delete(ctx, eventID, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}
