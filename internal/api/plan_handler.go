// internal/api/plan_handler.go
package api

import (
	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/service"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanHandler struct {
	planningService service.PlanningService
}

func NewPlanHandler(planningService service.PlanningService) *PlanHandler {
	return &PlanHandler{planningService: planningService}
}

// --- DTOs for Plan Generation ---

// GeneratePlanRequest defines the optional knobs for a generation run.
// An empty body generates with the athlete's stored preferences.
type GeneratePlanRequest struct {
	HorizonDays int    `json:"horizonDays" binding:"gte=0"`
	Model       string `json:"model"`
	Refine      bool   `json:"refine"`
}

// PlanDayResponse is the DTO for returning a persisted plan day.
type PlanDayResponse struct {
	ID        string                `json:"id"`
	PlanID    string                `json:"planId"`
	Date      string                `json:"date"`
	Action    string                `json:"action"`
	Focus     string                `json:"focus,omitempty"`
	Tags      []string              `json:"tags,omitempty"`
	Reason    string                `json:"reason,omitempty"`
	Exercises []domain.ExerciseSpec `json:"exercises"`
	Source    string                `json:"source,omitempty"`
	Strategy  string                `json:"strategy,omitempty"`
	Completed bool                  `json:"completed"`
	Exertion  *int                  `json:"exertion,omitempty"`
	Soreness  *int                  `json:"soreness,omitempty"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// MapPlanDayToResponse converts a domain.PlanDay to a PlanDayResponse DTO.
func MapPlanDayToResponse(day *domain.PlanDay) PlanDayResponse {
	if day == nil {
		return PlanDayResponse{}
	}
	return PlanDayResponse{
		ID:        day.ID.Hex(),
		PlanID:    day.PlanID,
		Date:      day.Date.Format(dateLayout),
		Action:    string(day.Action),
		Focus:     string(day.Focus),
		Tags:      day.Tags,
		Reason:    day.Reason,
		Exercises: day.Exercises,
		Source:    day.Source,
		Strategy:  day.Strategy,
		Completed: day.Completed,
		Exertion:  day.Exertion,
		Soreness:  day.Soreness,
		UpdatedAt: day.UpdatedAt,
	}
}

// MapPlanDaysToResponse converts a slice of domain.PlanDay to PlanDayResponse DTOs.
func MapPlanDaysToResponse(days []domain.PlanDay) []PlanDayResponse {
	dayResponses := make([]PlanDayResponse, len(days))
	for i, d := range days {
		dayResponses[i] = MapPlanDayToResponse(&d)
	}
	return dayResponses
}

// --- DTOs for Feedback ---

// ExerciseFeedbackRequest reports reps-in-reserve for one exercise of the
// day, addressed by the order value the plan returned it with.
type ExerciseFeedbackRequest struct {
	Order int  `json:"order" binding:"gte=0"`
	RIR   *int `json:"rir"`
}

// DayFeedbackRequest defines the payload for the athlete's post-session report.
type DayFeedbackRequest struct {
	Completed bool                      `json:"completed"`
	Exertion  *int                      `json:"exertion"` // 1-10
	Soreness  *int                      `json:"soreness"` // 1-10
	Exercises []ExerciseFeedbackRequest `json:"exercises"`
}

// --- Handler Methods for Plan Management ---

// GeneratePlan godoc
// @Summary Generate a training plan for an athlete
// @Description Runs the planning pipeline over the requested horizon and persists one day per date. Dates that already hold a stored day are skipped, not overwritten.
// @Tags Plans
// @Accept json
// @Produce json
// @Param athleteId path string true "Athlete ID (ObjectID Hex)"
// @Param generateRequest body GeneratePlanRequest false "Generation options (may be omitted)"
// @Success 200 {object} service.PlanResult "Compiled plan with summary and any skipped dates"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Athlete not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes/{athleteId}/plans [post]
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	athleteID, err := primitive.ObjectIDFromHex(c.Param("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format in URL path.")
		return
	}

	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// An absent body is fine, a malformed one is not.
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.planningService.GeneratePlan(c.Request.Context(), athleteID, service.GenerateOptions{
		HorizonDays: req.HorizonDays,
		Model:       req.Model,
		Refine:      req.Refine,
	})
	if err != nil {
		if errors.Is(err, service.ErrAthleteNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate plan.")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPlanDays godoc
// @Summary List an athlete's persisted plan days
// @Description Returns stored days in [from, to). Defaults to the next 7 days.
// @Tags Plans
// @Produce json
// @Param athleteId path string true "Athlete ID (ObjectID Hex)"
// @Param from query string false "Range start, YYYY-MM-DD (inclusive)"
// @Param to query string false "Range end, YYYY-MM-DD (exclusive)"
// @Success 200 {array} PlanDayResponse "Stored plan days in range"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes/{athleteId}/plans [get]
func (h *PlanHandler) GetPlanDays(c *gin.Context) {
	athleteID, err := primitive.ObjectIDFromHex(c.Param("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format in URL path.")
		return
	}

	from, to, err := parseDateRange(c, 7)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	days, err := h.planningService.GetPlanDays(c.Request.Context(), athleteID, from, to)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plan days.")
		return
	}

	if days == nil {
		c.JSON(http.StatusOK, []PlanDayResponse{}) // Return empty JSON array, not null
		return
	}

	c.JSON(http.StatusOK, MapPlanDaysToResponse(days))
}

// RecordDayFeedback godoc
// @Summary Record post-session feedback for a plan day
// @Description Marks the day completed and stores exertion, soreness and per-exercise reps-in-reserve. Feedback feeds the next generation run's adaptation.
// @Tags Plans
// @Accept json
// @Produce json
// @Param athleteId path string true "Athlete ID (ObjectID Hex)"
// @Param date path string true "Plan day date, YYYY-MM-DD"
// @Param feedbackRequest body DayFeedbackRequest true "Session report"
// @Success 200 {object} gin.H "Feedback recorded"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "No plan day stored for that date"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /athletes/{athleteId}/days/{date}/feedback [post]
func (h *PlanHandler) RecordDayFeedback(c *gin.Context) {
	athleteID, err := primitive.ObjectIDFromHex(c.Param("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format in URL path.")
		return
	}
	date, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date in URL path, expected YYYY-MM-DD.")
		return
	}

	var req DayFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	feedback := domain.DayFeedback{
		Completed: req.Completed,
		Exertion:  req.Exertion,
		Soreness:  req.Soreness,
	}
	for _, ex := range req.Exercises {
		feedback.Exercises = append(feedback.Exercises, domain.ExerciseFeedback{
			Order: ex.Order,
			RIR:   ex.RIR,
		})
	}

	if err := h.planningService.RecordDayFeedback(c.Request.Context(), athleteID, date, feedback); err != nil {
		if errors.Is(err, service.ErrDayNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrInvalidRating) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to record feedback.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback recorded"})
}
