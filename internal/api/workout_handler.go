package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves the workout template endpoints. Trainer only.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type WorkoutExerciseRequest struct {
	ExerciseID  string   `json:"exerciseId" binding:"required"`
	OrderIndex  int      `json:"orderIndex"`
	Sets        int      `json:"sets" binding:"required"`
	Reps        int      `json:"reps" binding:"required"`
	Weight      *float64 `json:"weight"`
	RestSeconds int      `json:"restSeconds"`
	Notes       string   `json:"notes"`
}

type WorkoutRequest struct {
	Name                 string                   `json:"name" binding:"required"`
	Description          string                   `json:"description"`
	Category             string                   `json:"category" binding:"omitempty,oneof=strength cardio hybrid flexibility"`
	Difficulty           string                   `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	DurationMinutes      *int                     `json:"durationMinutes"`
	ScheduledDays        *string                  `json:"scheduledDays"`
	ProgramDurationWeeks *int                     `json:"programDurationWeeks"`
	Exercises            []WorkoutExerciseRequest `json:"exercises"`
}

type WorkoutExerciseResponse struct {
	ID          string   `json:"id"`
	ExerciseID  string   `json:"exerciseId"`
	OrderIndex  int      `json:"orderIndex"`
	Sets        int      `json:"sets"`
	Reps        int      `json:"reps"`
	Weight      *float64 `json:"weight,omitempty"`
	RestSeconds int      `json:"restSeconds"`
	Notes       string   `json:"notes,omitempty"`
}

type WorkoutResponse struct {
	ID                   string                    `json:"id"`
	TrainerID            string                    `json:"trainerId"`
	Name                 string                    `json:"name"`
	Description          string                    `json:"description,omitempty"`
	Category             string                    `json:"category,omitempty"`
	Difficulty           string                    `json:"difficulty,omitempty"`
	DurationMinutes      *int                      `json:"durationMinutes,omitempty"`
	ScheduledDays        *string                   `json:"scheduledDays,omitempty"`
	ProgramDurationWeeks *int                      `json:"programDurationWeeks,omitempty"`
	Exercises            []WorkoutExerciseResponse `json:"exercises"`
	CreatedAt            time.Time                 `json:"createdAt"`
}

// --- Handler Methods ---

// CreateWorkout stores a new workout template.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input, err := buildWorkoutInput(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.workoutService.Create(c.Request.Context(), actor.ID, input)
	if err != nil {
		h.abortWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// GetWorkouts lists the trainer's workout templates.
func (h *WorkoutHandler) GetWorkouts(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	workouts, err := h.workoutService.GetByTrainer(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts")
		return
	}

	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetWorkout returns one workout template.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	workoutID, err := parseObjectIDParam(c, "workoutId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.workoutService.GetByID(c.Request.Context(), actor.ID, workoutID)
	if err != nil {
		h.abortWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// UpdateWorkout replaces a workout definition, including its exercise list.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	workoutID, err := parseObjectIDParam(c, "workoutId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input, err := buildWorkoutInput(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.workoutService.Update(c.Request.Context(), actor.ID, workoutID, input)
	if err != nil {
		h.abortWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout removes a workout and all assignments created from it.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	workoutID, err := parseObjectIDParam(c, "workoutId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), actor.ID, workoutID); err != nil {
		h.abortWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkoutHandler) abortWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func buildWorkoutInput(req WorkoutRequest) (service.WorkoutInput, error) {
	input := service.WorkoutInput{
		Name:                 req.Name,
		Description:          req.Description,
		Category:             req.Category,
		Difficulty:           req.Difficulty,
		DurationMinutes:      req.DurationMinutes,
		ScheduledDays:        req.ScheduledDays,
		ProgramDurationWeeks: req.ProgramDurationWeeks,
	}
	for _, ex := range req.Exercises {
		exerciseID, err := parseObjectIDHex(ex.ExerciseID, "exerciseId")
		if err != nil {
			return service.WorkoutInput{}, err
		}
		input.Exercises = append(input.Exercises, service.WorkoutExerciseInput{
			ExerciseID:  exerciseID,
			OrderIndex:  ex.OrderIndex,
			Sets:        ex.Sets,
			Reps:        ex.Reps,
			Weight:      ex.Weight,
			RestSeconds: ex.RestSeconds,
			Notes:       ex.Notes,
		})
	}
	return input, nil
}

// MapWorkoutToResponse converts a domain Workout to its DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	exercises := make([]WorkoutExerciseResponse, len(w.Exercises))
	for i, ex := range w.Exercises {
		exercises[i] = WorkoutExerciseResponse{
			ID:          ex.ID.Hex(),
			ExerciseID:  ex.ExerciseID.Hex(),
			OrderIndex:  ex.OrderIndex,
			Sets:        ex.Sets,
			Reps:        ex.Reps,
			Weight:      ex.Weight,
			RestSeconds: ex.RestSeconds,
			Notes:       ex.Notes,
		}
	}
	return WorkoutResponse{
		ID:                   w.ID.Hex(),
		TrainerID:            w.TrainerID.Hex(),
		Name:                 w.Name,
		Description:          w.Description,
		Category:             w.Category,
		Difficulty:           w.Difficulty,
		DurationMinutes:      w.DurationMinutes,
		ScheduledDays:        w.ScheduledDays,
		ProgramDurationWeeks: w.ProgramDurationWeeks,
		Exercises:            exercises,
		CreatedAt:            w.CreatedAt,
	}
}
