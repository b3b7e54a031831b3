package api

import (
	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/service"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service stubs ---

type stubAthleteService struct {
	athlete *domain.Athlete
	events  []domain.Event
	err     error
}

func (s *stubAthleteService) CreateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *athlete
	out.ID = primitive.NewObjectID()
	return &out, nil
}

func (s *stubAthleteService) GetAthlete(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.athlete, nil
}

func (s *stubAthleteService) UpdateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error) {
	if s.err != nil {
		return nil, s.err
	}
	return athlete, nil
}

func (s *stubAthleteService) AddEvent(ctx context.Context, athleteID primitive.ObjectID, event *domain.Event) (*domain.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *event
	out.ID = primitive.NewObjectID()
	out.AthleteID = athleteID
	return &out, nil
}

func (s *stubAthleteService) ListEvents(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.Event, error) {
	return s.events, s.err
}

func (s *stubAthleteService) RemoveEvent(ctx context.Context, athleteID, eventID primitive.ObjectID) error {
	return s.err
}

type stubPlanningService struct {
	result      *service.PlanResult
	days        []domain.PlanDay
	err         error
	gotOptions  service.GenerateOptions
	gotFeedback domain.DayFeedback
	gotDate     time.Time
}

func (s *stubPlanningService) GeneratePlan(ctx context.Context, athleteID primitive.ObjectID, opts service.GenerateOptions) (*service.PlanResult, error) {
	s.gotOptions = opts
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &service.PlanResult{Plan: &domain.CompiledPlan{ID: "plan-1"}}, nil
}

func (s *stubPlanningService) GetPlanDays(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.PlanDay, error) {
	return s.days, s.err
}

func (s *stubPlanningService) RecordDayFeedback(ctx context.Context, athleteID primitive.ObjectID, date time.Time, feedback domain.DayFeedback) error {
	s.gotDate = date
	s.gotFeedback = feedback
	return s.err
}

// --- Harness ---

func newTestRouter(t *testing.T, athletes service.AthleteService, plans service.PlanningService, health HealthCheckFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, athletes, plans, nil, health)
	return router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(req, rec)
	return rec
}

// --- Tests ---

func TestPingRoute(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	rec := perform(router, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")
}

func TestHealthzReportsDependencyFailure(t *testing.T) {
	down := func(ctx context.Context) error { return errors.New("mongo unreachable") }
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, down)

	rec := perform(router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "mongo unreachable")
}

func TestHealthzOK(t *testing.T) {
	up := func(ctx context.Context) error { return nil }
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, up)

	rec := perform(router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(req, rec)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsGenerated(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	rec := perform(router, http.MethodGet, "/ping", "")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateAthlete(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	body := `{"name":"Dana","goal":"strength","trainingDaysPerWeek":3}`
	rec := perform(router, http.MethodPost, "/api/v1/athletes", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp AthleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Dana", resp.Name)
	assert.NotEmpty(t, resp.ID)
}

func TestCreateAthleteRejectsBadFrequency(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	body := `{"name":"Dana","trainingDaysPerWeek":9}`
	rec := perform(router, http.MethodPost, "/api/v1/athletes", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation error")
}

func TestGetAthleteRejectsMalformedID(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	rec := perform(router, http.MethodGet, "/api/v1/athletes/not-a-hex-id", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAthleteNotFound(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{err: service.ErrAthleteNotFound}, &stubPlanningService{}, nil)

	rec := perform(router, http.MethodGet, "/api/v1/athletes/"+primitive.NewObjectID().Hex(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeneratePlanAcceptsEmptyBody(t *testing.T) {
	plans := &stubPlanningService{}
	router := newTestRouter(t, &stubAthleteService{}, plans, nil)

	rec := perform(router, http.MethodPost, "/api/v1/athletes/"+primitive.NewObjectID().Hex()+"/plans", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.GenerateOptions{}, plans.gotOptions)
}

func TestGeneratePlanPassesOptions(t *testing.T) {
	plans := &stubPlanningService{}
	router := newTestRouter(t, &stubAthleteService{}, plans, nil)

	body := `{"horizonDays":14,"model":"gpt-4o","refine":true}`
	rec := perform(router, http.MethodPost, "/api/v1/athletes/"+primitive.NewObjectID().Hex()+"/plans", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.GenerateOptions{HorizonDays: 14, Model: "gpt-4o", Refine: true}, plans.gotOptions)
}

func TestGeneratePlanUnknownAthlete(t *testing.T) {
	plans := &stubPlanningService{err: service.ErrAthleteNotFound}
	router := newTestRouter(t, &stubAthleteService{}, plans, nil)

	rec := perform(router, http.MethodPost, "/api/v1/athletes/"+primitive.NewObjectID().Hex()+"/plans", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPlanDaysReturnsEmptyArray(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	rec := perform(router, http.MethodGet, "/api/v1/athletes/"+primitive.NewObjectID().Hex()+"/plans", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetPlanDaysRejectsInvertedRange(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	path := "/api/v1/athletes/" + primitive.NewObjectID().Hex() + "/plans?from=2025-03-10&to=2025-03-01"
	rec := perform(router, http.MethodGet, path, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEventsReturnsEmptyArray(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	rec := perform(router, http.MethodGet, "/api/v1/athletes/"+primitive.NewObjectID().Hex()+"/events", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestAddEventRejectsBadDate(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	body := `{"date":"March 3rd","label":"10k race"}`
	rec := perform(router, http.MethodPost, "/api/v1/athletes/"+primitive.NewObjectID().Hex()+"/events", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
}

func TestRemoveEventNotFound(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{err: service.ErrEventNotFound}, &stubPlanningService{}, nil)

	path := "/api/v1/athletes/" + primitive.NewObjectID().Hex() + "/events/" + primitive.NewObjectID().Hex()
	rec := perform(router, http.MethodDelete, path, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordDayFeedback(t *testing.T) {
	plans := &stubPlanningService{}
	router := newTestRouter(t, &stubAthleteService{}, plans, nil)

	path := "/api/v1/athletes/" + primitive.NewObjectID().Hex() + "/days/2025-03-05/feedback"
	body := `{"completed":true,"exertion":7,"exercises":[{"order":1,"rir":2}]}`
	rec := perform(router, http.MethodPost, path, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, plans.gotFeedback.Completed)
	require.NotNil(t, plans.gotFeedback.Exertion)
	assert.Equal(t, 7, *plans.gotFeedback.Exertion)
	require.Len(t, plans.gotFeedback.Exercises, 1)
	assert.Equal(t, 1, plans.gotFeedback.Exercises[0].Order)
	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), plans.gotDate)
}

func TestRecordDayFeedbackRejectsBadDate(t *testing.T) {
	router := newTestRouter(t, &stubAthleteService{}, &stubPlanningService{}, nil)

	path := "/api/v1/athletes/" + primitive.NewObjectID().Hex() + "/days/05-03-2025/feedback"
	rec := perform(router, http.MethodPost, path, `{"completed":true}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordDayFeedbackMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unknown day", service.ErrDayNotFound, http.StatusNotFound},
		{"bad rating", service.ErrInvalidRating, http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plans := &stubPlanningService{err: tc.err}
			router := newTestRouter(t, &stubAthleteService{}, plans, nil)

			path := "/api/v1/athletes/" + primitive.NewObjectID().Hex() + "/days/2025-03-05/feedback"
			rec := perform(router, http.MethodPost, path, `{"completed":true}`)

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}
