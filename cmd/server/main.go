package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcoach/coach-app/internal/api"
	"fitcoach/coach-app/internal/config"
	"fitcoach/coach-app/internal/email"
	"fitcoach/coach-app/internal/exercisedb"
	"fitcoach/coach-app/internal/repository/mongo"
	"fitcoach/coach-app/internal/service"
	"fitcoach/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Coach App Server...")

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
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureTrainerIndexes(ctx, appDB.Collection("trainers"))
		mongo.EnsureClientIndexes(ctx, appDB.Collection("clients"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("workout_assignments"))
		mongo.EnsureWorkoutLogIndexes(ctx, appDB.Collection("workout_logs"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Outbound Clients ---
	var mailer email.Mailer
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPMailer(email.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			From:      cfg.SMTP.From,
			InviteURL: cfg.SMTP.InviteURL,
		})
		log.Println("SMTP mailer initialized.")
	} else {
		log.Println("SMTP host not configured, invite emails disabled.")
	}

	var catalog exercisedb.Client
	if cfg.ExerciseDB.APIKey != "" {
		catalog = exercisedb.NewClient(cfg.ExerciseDB.BaseURL, cfg.ExerciseDB.APIKey, nil)
		log.Println("ExerciseDB catalog client initialized.")
	} else {
		log.Println("ExerciseDB API key not configured, catalog search disabled.")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	trainerRepo := mongo.NewMongoTrainerRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	logRepo := mongo.NewMongoWorkoutLogRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(trainerRepo, clientRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	exerciseService := service.NewExerciseService(exerciseRepo, catalog, fileStorage)
	workoutService := service.NewWorkoutService(workoutRepo, exerciseRepo, assignmentRepo, logRepo)
	trainerService := service.NewTrainerService(trainerRepo, clientRepo, workoutRepo, assignmentRepo, logRepo, mailer)
	clientService := service.NewClientService(clientRepo, trainerRepo, workoutRepo, assignmentRepo, logRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, workoutRepo, logRepo)
	analyticsService := service.NewAnalyticsService(clientRepo, assignmentRepo, workoutRepo, logRepo, exerciseRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		trainerService,
		clientService,
		workoutService,
		exerciseService,
		assignmentService,
		analyticsService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
