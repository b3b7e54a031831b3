package main

import (
	"alcyxob/microcycle/internal/adaptation"
	"alcyxob/microcycle/internal/api"
	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/config"
	"alcyxob/microcycle/internal/engine"
	"alcyxob/microcycle/internal/metrics"
	"alcyxob/microcycle/internal/repository/mongo"
	"alcyxob/microcycle/internal/scheduler"
	"alcyxob/microcycle/internal/service"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// @title Microcycle API
// @version 1.0
// @description API for generating and adapting day-by-day training microcycles.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	log.Println("Starting Microcycle Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureAthleteIndexes(ctx, appDB.Collection("athletes"))
		mongo.EnsureEventIndexes(ctx, appDB.Collection("events"))
		mongo.EnsurePlanDayIndexes(ctx, appDB.Collection("plan_days"))
		log.Println("Index creation process completed.")
	}()

	// --- Completion Backend ---
	completionClient, err := completion.NewClient(cfg.Completion)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize completion client: %v", err)
	}
	if completionClient.IsAvailable() {
		log.Printf("Completion backend enabled (model %s).", cfg.Completion.Model)
	} else {
		log.Println("WARN: No completion API key configured; planning runs deterministic-only.")
	}

	// --- Metrics ---
	recorder := metrics.NewRecorder()
	completionClient.SetObserver(recorder)

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	athleteRepo := mongo.NewMongoAthleteRepository(appDB)
	eventRepo := mongo.NewMongoEventRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	planEngine := engine.New(completionClient, cfg.Planner, recorder)
	adaptPlanner := adaptation.New(completionClient, cfg.Completion.Model)
	planningService := service.NewPlanningService(athleteRepo, eventRepo, planRepo, planEngine, adaptPlanner, cfg.Planner)
	athleteService := service.NewAthleteService(athleteRepo, eventRepo)

	// --- Scheduler ---
	if cfg.Scheduler.Enabled {
		autoPlanner := scheduler.New(cfg.Scheduler.Spec, athleteRepo, planningService)
		if err := autoPlanner.Start(); err != nil {
			log.Fatalf("FATAL: Could not start scheduler: %v", err)
		}
		defer autoPlanner.Stop()
	} else {
		log.Println("Scheduler disabled.")
	}

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.New()
	// Request logging comes from the api middleware, so only Recovery here.
	router.Use(gin.Recovery())

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	healthCheck := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return dbClient.Ping(ctx, readpref.Primary())
	}
	api.SetupRoutes(router, athleteService, planningService, recorder, healthCheck)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // Generation runs can outlive the usual 10s
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
