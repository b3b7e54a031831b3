package api

import (
	"alcyxob/microcycle/internal/metrics"
	"alcyxob/microcycle/internal/service"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	// swaggerFiles "github.com/swaggo/files"
	// ginSwagger "github.com/swaggo/gin-swagger"
)

// HealthCheckFunc reports whether the service's dependencies are reachable.
// main wires this to a MongoDB ping.
type HealthCheckFunc func(ctx context.Context) error

func SetupRoutes(
	router *gin.Engine,
	athleteService service.AthleteService,
	planningService service.PlanningService,
	recorder *metrics.Recorder,
	healthCheck HealthCheckFunc,
) {

	athleteHandler := NewAthleteHandler(athleteService)
	planHandler := NewPlanHandler(planningService)

	router.Use(RequestIDMiddleware(), RequestLogMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/healthz", func(c *gin.Context) {
		if healthCheck != nil {
			if err := healthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(recorder.Handler()))

	// router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")
	{
		athleteGroup := apiV1.Group("/athletes")
		{
			// POST /api/v1/athletes
			athleteGroup.POST("", athleteHandler.CreateAthlete)
			// GET /api/v1/athletes/{athleteId}
			athleteGroup.GET("/:athleteId", athleteHandler.GetAthlete)
			// PUT /api/v1/athletes/{athleteId}
			athleteGroup.PUT("/:athleteId", athleteHandler.UpdateAthlete)

			// --- Event Management ---
			// POST /api/v1/athletes/{athleteId}/events
			athleteGroup.POST("/:athleteId/events", athleteHandler.AddEvent)
			// GET /api/v1/athletes/{athleteId}/events
			athleteGroup.GET("/:athleteId/events", athleteHandler.ListEvents)
			// DELETE /api/v1/athletes/{athleteId}/events/{eventId}
			athleteGroup.DELETE("/:athleteId/events/:eventId", athleteHandler.RemoveEvent)

			// --- Plan Generation and History ---
			// POST /api/v1/athletes/{athleteId}/plans
			athleteGroup.POST("/:athleteId/plans", planHandler.GeneratePlan)
			// GET /api/v1/athletes/{athleteId}/plans
			athleteGroup.GET("/:athleteId/plans", planHandler.GetPlanDays)
			// POST /api/v1/athletes/{athleteId}/days/{date}/feedback
			athleteGroup.POST("/:athleteId/days/:date/feedback", planHandler.RecordDayFeedback)
		}
	}
}
