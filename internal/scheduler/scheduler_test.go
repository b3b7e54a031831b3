package scheduler

import (
	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/service"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubAthleteRepo struct {
	athletes []domain.Athlete
	err      error
}

func (r *stubAthleteRepo) Create(ctx context.Context, athlete *domain.Athlete) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errors.New("not implemented")
}

func (r *stubAthleteRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	return nil, errors.New("not implemented")
}

func (r *stubAthleteRepo) Update(ctx context.Context, athlete *domain.Athlete) error {
	return errors.New("not implemented")
}

func (r *stubAthleteRepo) ListAutoPlan(ctx context.Context) ([]domain.Athlete, error) {
	return r.athletes, r.err
}

type stubPlanning struct {
	failFor primitive.ObjectID
	calls   []primitive.ObjectID
}

func (s *stubPlanning) GeneratePlan(ctx context.Context, athleteID primitive.ObjectID, opts service.GenerateOptions) (*service.PlanResult, error) {
	s.calls = append(s.calls, athleteID)
	if athleteID == s.failFor {
		return nil, errors.New("completion service down")
	}
	return &service.PlanResult{
		Plan:         &domain.CompiledPlan{Days: make([]domain.CompiledDay, 7)},
		SkippedDates: []string{"2025-03-03"},
	}, nil
}

func (s *stubPlanning) GetPlanDays(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.PlanDay, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPlanning) RecordDayFeedback(ctx context.Context, athleteID primitive.ObjectID, date time.Time, feedback domain.DayFeedback) error {
	return errors.New("not implemented")
}

func TestRunOnceSweepsEveryAthlete(t *testing.T) {
	broken := primitive.NewObjectID()
	repo := &stubAthleteRepo{athletes: []domain.Athlete{
		{ID: primitive.NewObjectID(), Name: "Ada", AutoPlan: true},
		{ID: broken, Name: "Ben", AutoPlan: true},
		{ID: primitive.NewObjectID(), Name: "Cleo", AutoPlan: true},
	}}
	planning := &stubPlanning{failFor: broken}

	s := New("@daily", repo, planning)
	planned, failed := s.RunOnce(context.Background())

	assert.Equal(t, 2, planned)
	assert.Equal(t, 1, failed, "one athlete failing must not abort the sweep")
	assert.Len(t, planning.calls, 3)
}

func TestRunOnceEmptyRoster(t *testing.T) {
	planning := &stubPlanning{}
	s := New("@daily", &stubAthleteRepo{}, planning)

	planned, failed := s.RunOnce(context.Background())

	assert.Zero(t, planned)
	assert.Zero(t, failed)
	assert.Empty(t, planning.calls)
}

func TestRunOnceListFailure(t *testing.T) {
	planning := &stubPlanning{}
	s := New("@daily", &stubAthleteRepo{err: errors.New("mongo down")}, planning)

	planned, failed := s.RunOnce(context.Background())

	assert.Zero(t, planned)
	assert.Zero(t, failed)
	assert.Empty(t, planning.calls)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New("every full moon", &stubAthleteRepo{}, &stubPlanning{})
	err := s.Start()
	assert.Error(t, err)
}

func TestStartAcceptsDescriptorSpec(t *testing.T) {
	s := New("@daily", &stubAthleteRepo{}, &stubPlanning{})
	err := s.Start()
	assert.NoError(t, err)
	s.Stop()
}
