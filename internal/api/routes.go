package api

import (
	"net/http"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers onto the router. Every route except auth
// and ping requires a valid JWT; role middleware narrows trainer-only and
// client-only groups.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	trainerService service.TrainerService,
	clientService service.ClientService,
	workoutService service.WorkoutService,
	exerciseService service.ExerciseService,
	assignmentService service.AssignmentService,
	analyticsService service.AnalyticsService,
) {
	authHandler := NewAuthHandler(authService)
	trainerHandler := NewTrainerHandler(trainerService)
	clientHandler := NewClientHandler(clientService)
	workoutHandler := NewWorkoutHandler(workoutService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	assignmentHandler := NewAssignmentHandler(assignmentService)
	analyticsHandler := NewAnalyticsHandler(analyticsService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.RegisterTrainer)
			authGroup.POST("/login", authHandler.LoginTrainer)
			authGroup.POST("/client/login", authHandler.LoginClient)
			authGroup.POST("/client/accept-invite", authHandler.AcceptInvite)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			actor, err := getActorFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": actor.ID.Hex(), "role": actor.Role})
		})

		// --- Exercise Library ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.GetExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.POST("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.CreateExercise)
			exerciseGroup.PUT("/:exerciseId", RoleMiddleware(domain.RoleTrainer), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", RoleMiddleware(domain.RoleTrainer), exerciseHandler.DeleteExercise)

			exerciseGroup.GET("/catalog/search", RoleMiddleware(domain.RoleTrainer), exerciseHandler.SearchCatalog)
			exerciseGroup.POST("/catalog/import", RoleMiddleware(domain.RoleTrainer), exerciseHandler.ImportCatalogExercise)
			exerciseGroup.POST("/media/upload-url", RoleMiddleware(domain.RoleTrainer), exerciseHandler.GenerateMediaUploadURL)
		}

		// --- Trainer: clients, workouts, assignments ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.POST("/clients", trainerHandler.CreateClient)
			trainerGroup.GET("/clients", trainerHandler.GetClients)
			trainerGroup.GET("/clients/:clientId", trainerHandler.GetClient)
			trainerGroup.PATCH("/clients/:clientId", trainerHandler.UpdateClient)
			trainerGroup.POST("/clients/:clientId/archive", trainerHandler.ArchiveClient)
			trainerGroup.DELETE("/clients/:clientId", trainerHandler.DeleteClient)
			trainerGroup.GET("/clients/:clientId/assignments", trainerHandler.GetClientAssignments)

			trainerGroup.POST("/workouts", workoutHandler.CreateWorkout)
			trainerGroup.GET("/workouts", workoutHandler.GetWorkouts)
			trainerGroup.GET("/workouts/:workoutId", workoutHandler.GetWorkout)
			trainerGroup.PUT("/workouts/:workoutId", workoutHandler.UpdateWorkout)
			trainerGroup.DELETE("/workouts/:workoutId", workoutHandler.DeleteWorkout)

			trainerGroup.POST("/assignments", trainerHandler.AssignWorkout)
		}

		// --- Client: own profile and workout list ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/me", clientHandler.GetMyProfile)
			clientGroup.GET("/trainer", clientHandler.GetMyTrainer)
			clientGroup.GET("/assignments", clientHandler.GetMyAssignments)
		}

		// --- Assignment lifecycle (both roles; services check ownership) ---
		assignmentGroup := protected.Group("/assignments")
		{
			assignmentGroup.GET("/:assignmentId", assignmentHandler.GetAssignment)
			assignmentGroup.POST("/:assignmentId/start", assignmentHandler.StartAssignment)
			assignmentGroup.POST("/:assignmentId/complete", assignmentHandler.CompleteAssignment)
			assignmentGroup.POST("/:assignmentId/skip", assignmentHandler.SkipAssignment)
			assignmentGroup.DELETE("/:assignmentId", RoleMiddleware(domain.RoleTrainer), assignmentHandler.DeleteAssignment)

			assignmentGroup.POST("/:assignmentId/logs", assignmentHandler.LogSet)
			assignmentGroup.GET("/:assignmentId/logs", assignmentHandler.GetLogs)
		}
		protected.PATCH("/logs/:logId", assignmentHandler.UpdateLog)
		protected.DELETE("/logs/:logId", assignmentHandler.DeleteLog)

		// --- Analytics ---
		analyticsGroup := protected.Group("/analytics")
		{
			analyticsGroup.GET("/dashboard", RoleMiddleware(domain.RoleTrainer), analyticsHandler.GetTrainerDashboard)
			analyticsGroup.GET("/clients/:clientId", analyticsHandler.GetClientAnalytics)
			analyticsGroup.GET("/clients/:clientId/exercises", analyticsHandler.GetExerciseProgress)
		}
	}
}
