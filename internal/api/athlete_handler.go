// internal/api/athlete_handler.go
package api

import (
	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/policy"
	"alcyxob/microcycle/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dateLayout is the wire format for calendar dates. Plans and events are
// keyed by day, so timestamps are never accepted here.
const dateLayout = "2006-01-02"

type AthleteHandler struct {
	athleteService service.AthleteService
}

func NewAthleteHandler(athleteService service.AthleteService) *AthleteHandler {
	return &AthleteHandler{athleteService: athleteService}
}

// --- DTOs for Athlete Management ---

// AthleteRequest defines the payload for creating or updating an athlete.
type AthleteRequest struct {
	Name                string `json:"name" binding:"required"`
	Goal                string `json:"goal"`
	TrainingDaysPerWeek int    `json:"trainingDaysPerWeek" binding:"gte=0,lte=7"`
	Equipment           string `json:"equipment"`
	Dislikes            string `json:"dislikes"`
	SessionMinutes      int    `json:"sessionMinutes" binding:"gte=0"`
	AutoPlan            bool   `json:"autoPlan"`
	HorizonDays         int    `json:"horizonDays" binding:"gte=0"`
}

// AthleteResponse is the DTO for returning athlete details.
type AthleteResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Goal                string    `json:"goal,omitempty"`
	TrainingDaysPerWeek int       `json:"trainingDaysPerWeek"`
	Equipment           string    `json:"equipment,omitempty"`
	Dislikes            string    `json:"dislikes,omitempty"`
	SessionMinutes      int       `json:"sessionMinutes,omitempty"`
	AutoPlan            bool      `json:"autoPlan"`
	HorizonDays         int       `json:"horizonDays,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// MapAthleteToResponse converts a domain.Athlete to an AthleteResponse DTO.
func MapAthleteToResponse(athlete *domain.Athlete) AthleteResponse {
	if athlete == nil {
		return AthleteResponse{}
	}
	return AthleteResponse{
		ID:                  athlete.ID.Hex(),
		Name:                athlete.Name,
		Goal:                athlete.Goal,
		TrainingDaysPerWeek: athlete.TrainingDaysPerWeek,
		Equipment:           athlete.Equipment,
		Dislikes:            athlete.Dislikes,
		SessionMinutes:      athlete.SessionMinutes,
		AutoPlan:            athlete.AutoPlan,
		HorizonDays:         athlete.HorizonDays,
		CreatedAt:           athlete.CreatedAt,
		UpdatedAt:           athlete.UpdatedAt,
	}
}

// --- DTOs for Event Management ---

// EventRequest defines the payload for adding a calendar event.
type EventRequest struct {
	Date      string   `json:"date" binding:"required"` // "2006-01-02"
	Label     string   `json:"label" binding:"required"`
	Intensity string   `json:"intensity"` // low|medium|high, empty lets the planner infer it
	Tags      []string `json:"tags"`
	Notes     string   `json:"notes"`
}

// EventResponse is the DTO for returning event details.
type EventResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Label     string    `json:"label"`
	Intensity string    `json:"intensity,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapEventToResponse converts a domain.Event to an EventResponse DTO.
func MapEventToResponse(event *domain.Event) EventResponse {
	if event == nil {
		return EventResponse{}
	}
	return EventResponse{
		ID:        event.ID.Hex(),
		Date:      event.Date.Format(dateLayout),
		Label:     event.Label,
		Intensity: string(event.Intensity),
		Tags:      event.Tags,
		Notes:     event.Notes,
		CreatedAt: event.CreatedAt,
	}
}

// MapEventsToResponse converts a slice of domain.Event to EventResponse DTOs.
func MapEventsToResponse(events []domain.Event) []EventResponse {
	eventResponses := make([]EventResponse, len(events))
	for i, e := range events {
		eventResponses[i] = MapEventToResponse(&e)
	}
	return eventResponses
}

// --- Handler Methods for Athlete Management ---

// CreateAthlete godoc
// @Summary Register a new athlete
// @Description Creates an athlete profile the planner generates schedules for.
// @Tags Athletes
// @Accept json
// @Produce json
// @Param athleteRequest body AthleteRequest true "Athlete profile"
// @Success 201 {object} AthleteResponse "Athlete created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes [post]
func (h *AthleteHandler) CreateAthlete(c *gin.Context) {
	var req AthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	athlete := &domain.Athlete{
		Name:                req.Name,
		Goal:                req.Goal,
		TrainingDaysPerWeek: req.TrainingDaysPerWeek,
		Equipment:           req.Equipment,
		Dislikes:            req.Dislikes,
		SessionMinutes:      req.SessionMinutes,
		AutoPlan:            req.AutoPlan,
		HorizonDays:         req.HorizonDays,
	}

	created, err := h.athleteService.CreateAthlete(c.Request.Context(), athlete)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create athlete.")
		return
	}

	c.JSON(http.StatusCreated, MapAthleteToResponse(created))
}

// GetAthlete godoc
// @Summary Get an athlete by ID
// @Tags Athletes
// @Produce json
// @Param athleteId path string true "Athlete ID (ObjectID Hex)"
// @Success 200 {object} AthleteResponse "Athlete details"
// @Failure 400 {object} gin.H "Invalid athlete ID format"
// @Failure 404 {object} gin.H "Athlete not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes/{athleteId} [get]
func (h *AthleteHandler) GetAthlete(c *gin.Context) {
	athleteID, err := primitive.ObjectIDFromHex(c.Param("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format in URL path.")
		return
	}

	athlete, err := h.athleteService.GetAthlete(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrAthleteNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve athlete.")
		}
		return
	}

	c.JSON(http.StatusOK, MapAthleteToResponse(athlete))
}

// UpdateAthlete godoc
// @Summary Update an athlete's profile
// @Description Replaces the mutable profile fields. The whole profile is sent each time.
// @Tags Athletes
// @Accept json
// @Produce json
// @Param athleteId path string true "Athlete ID (ObjectID Hex)"
// @Param athleteRequest body AthleteRequest true "Updated profile"
// @Success 200 {object} AthleteResponse "Updated athlete"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Athlete not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes/{athleteId} [put]
func (h *AthleteHandler) UpdateAthlete(c *gin.Context) {
	athleteID, err := primitive.ObjectIDFromHex(c.Param("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format in URL path.")
		return
	}

	var req AthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	athlete := &domain.Athlete{
		ID:                  athleteID,
		Name:                req.Name,
		Goal:                req.Goal,
		TrainingDaysPerWeek: req.TrainingDaysPerWeek,
		Equipment:           req.Equipment,
		Dislikes:            req.Dislikes,
		SessionMinutes:      req.SessionMinutes,
		AutoPlan:            req.AutoPlan,
		HorizonDays:         req.HorizonDays,
	}

	updated, err := h.athleteService.UpdateAthlete(c.Request.Context(), athlete)
	if err != nil {
		if errors.Is(err, service.ErrAthleteNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update athlete.")
		}
		return
	}

	c.JSON(http.StatusOK, MapAthleteToResponse(updated))
}

// --- Handler Methods for Event Management ---

// AddEvent godoc
// @Summary Add a calendar event for an athlete
// @Description Registers a race, match or other fixed commitment the planner must schedule around.
// @Tags Events
// @Accept json
// @Produce json
// @Param athleteId path string true "Athlete ID (ObjectID Hex)"
// @Param eventRequest body EventRequest true "Event details"
// @Success 201 {object} EventResponse "Event created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Athlete not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes/{athleteId}/events [post]
func (h *AthleteHandler) AddEvent(c *gin.Context) {
	athleteID, err := primitive.ObjectIDFromHex(c.Param("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format in URL path.")
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD.")
		return
	}

	event := &domain.Event{
		Date:      date,
		Label:     req.Label,
		Intensity: domain.EventIntensity(req.Intensity),
		Tags:      req.Tags,
		Notes:     req.Notes,
	}

	created, err := h.athleteService.AddEvent(c.Request.Context(), athleteID, event)
	if err != nil {
		if errors.Is(err, service.ErrAthleteNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrInvalidIntensity) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add event.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapEventToResponse(created))
}

// ListEvents godoc
// @Summary List an athlete's upcoming events
// @Description Returns events in [from, to). Defaults to the next 30 days.
// @Tags Events
// @Produce json
// @Param athleteId path string true "Athlete ID (ObjectID Hex)"
// @Param from query string false "Range start, YYYY-MM-DD (inclusive)"
// @Param to query string false "Range end, YYYY-MM-DD (exclusive)"
// @Success 200 {array} EventResponse "Events in range"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes/{athleteId}/events [get]
func (h *AthleteHandler) ListEvents(c *gin.Context) {
	athleteID, err := primitive.ObjectIDFromHex(c.Param("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format in URL path.")
		return
	}

	from, to, err := parseDateRange(c, 30)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.athleteService.ListEvents(c.Request.Context(), athleteID, from, to)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve events.")
		return
	}

	if events == nil {
		c.JSON(http.StatusOK, []EventResponse{}) // Return empty JSON array, not null
		return
	}

	c.JSON(http.StatusOK, MapEventsToResponse(events))
}

// RemoveEvent godoc
// @Summary Remove a calendar event
// @Tags Events
// @Produce json
// @Param athleteId path string true "Athlete ID (ObjectID Hex)"
// @Param eventId path string true "Event ID (ObjectID Hex)"
// @Success 200 {object} gin.H "Event removed"
// @Failure 400 {object} gin.H "Invalid ID format"
// @Failure 404 {object} gin.H "Event not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes/{athleteId}/events/{eventId} [delete]
func (h *AthleteHandler) RemoveEvent(c *gin.Context) {
	athleteID, err := primitive.ObjectIDFromHex(c.Param("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format in URL path.")
		return
	}
	eventID, err := primitive.ObjectIDFromHex(c.Param("eventId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid event ID format in URL path.")
		return
	}

	if err := h.athleteService.RemoveEvent(c.Request.Context(), athleteID, eventID); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to remove event.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event removed"})
}

// parseDateRange reads the optional from/to query parameters. from defaults
// to today (UTC), to defaults to from plus spanDays.
func parseDateRange(c *gin.Context, spanDays int) (time.Time, time.Time, error) {
	from := policy.Midnight(time.Now().UTC())
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'from' date, expected YYYY-MM-DD")
		}
		from = parsed
	}

	to := from.AddDate(0, 0, spanDays)
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'to' date, expected YYYY-MM-DD")
		}
		to = parsed
	}

	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("'to' must be after 'from'")
	}
	return from, to, nil
}
