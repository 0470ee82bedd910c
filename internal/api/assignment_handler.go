package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentHandler serves the assignment lifecycle endpoints. Both roles
// use these routes; the service checks ownership per assignment.
type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// --- Request/Response Structs ---

type LogSetRequest struct {
	WorkoutExerciseID string   `json:"workoutExerciseId" binding:"required"`
	SetNumber         int      `json:"setNumber" binding:"required,min=1"`
	RepsCompleted     int      `json:"repsCompleted"`
	WeightUsed        *float64 `json:"weightUsed"`
	RPE               *int     `json:"rpe"`
	Notes             string   `json:"notes"`
}

type UpdateLogRequest struct {
	RepsCompleted *int     `json:"repsCompleted"`
	WeightUsed    *float64 `json:"weightUsed"`
	RPE           *int     `json:"rpe"`
	Notes         *string  `json:"notes"`
}

type WorkoutLogResponse struct {
	ID                string    `json:"id"`
	AssignmentID      string    `json:"assignmentId"`
	WorkoutExerciseID string    `json:"workoutExerciseId"`
	ExerciseID        string    `json:"exerciseId"`
	SetNumber         int       `json:"setNumber"`
	RepsCompleted     int       `json:"repsCompleted"`
	WeightUsed        *float64  `json:"weightUsed,omitempty"`
	RPE               *int      `json:"rpe,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	LoggedAt          time.Time `json:"loggedAt"`
}

// AssignmentDetailResponse is an assignment plus its derived progress
// percentages.
type AssignmentDetailResponse struct {
	AssignmentResponse
	AdherencePct    *float64 `json:"adherencePct,omitempty"`
	TimeProgressPct *float64 `json:"timeProgressPct,omitempty"`
}

// --- Handler Methods ---

// GetAssignment returns one assignment with its derived progress.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	actor, assignmentID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), actor, assignmentID)
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}

	detail := AssignmentDetailResponse{
		AssignmentResponse: MapAssignmentToResponse(assignment),
		TimeProgressPct:    service.TimeProgressPercentage(assignment, time.Now().UTC()),
	}
	if pct, err := h.assignmentService.AdherencePercentage(c.Request.Context(), assignment); err == nil {
		detail.AdherencePct = pct
	}
	c.JSON(http.StatusOK, detail)
}

// StartAssignment transitions a pending assignment to in_progress.
func (h *AssignmentHandler) StartAssignment(c *gin.Context) {
	actor, assignmentID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Start(c.Request.Context(), actor, assignmentID)
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapAssignmentToResponse(assignment))
}

// LogSet records one completed set against the assignment. Logging the same
// set again overwrites the earlier entry.
func (h *AssignmentHandler) LogSet(c *gin.Context) {
	actor, assignmentID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req LogSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	workoutExerciseID, err := parseObjectIDHex(req.WorkoutExerciseID, "workoutExerciseId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	log, err := h.assignmentService.LogSet(c.Request.Context(), actor, assignmentID, service.LogSetInput{
		WorkoutExerciseID: workoutExerciseID,
		SetNumber:         req.SetNumber,
		RepsCompleted:     req.RepsCompleted,
		WeightUsed:        req.WeightUsed,
		RPE:               req.RPE,
		Notes:             req.Notes,
	})
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutLogToResponse(log))
}

// CompleteAssignment marks the assignment completed.
func (h *AssignmentHandler) CompleteAssignment(c *gin.Context) {
	actor, assignmentID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Complete(c.Request.Context(), actor, assignmentID)
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapAssignmentToResponse(assignment))
}

// SkipAssignment marks the assignment skipped.
func (h *AssignmentHandler) SkipAssignment(c *gin.Context) {
	actor, assignmentID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Skip(c.Request.Context(), actor, assignmentID)
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapAssignmentToResponse(assignment))
}

// GetLogs lists the assignment's logged sets.
func (h *AssignmentHandler) GetLogs(c *gin.Context) {
	actor, assignmentID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	logs, err := h.assignmentService.GetLogs(c.Request.Context(), actor, assignmentID)
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}

	responses := make([]WorkoutLogResponse, len(logs))
	for i := range logs {
		responses[i] = MapWorkoutLogToResponse(&logs[i])
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateLog corrects a stored set; absent fields are kept.
func (h *AssignmentHandler) UpdateLog(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	logID, err := parseObjectIDParam(c, "logId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	log, err := h.assignmentService.UpdateLog(c.Request.Context(), actor, logID, service.LogPatch{
		RepsCompleted: req.RepsCompleted,
		WeightUsed:    req.WeightUsed,
		RPE:           req.RPE,
		Notes:         req.Notes,
	})
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutLogToResponse(log))
}

// DeleteLog removes a stored set.
func (h *AssignmentHandler) DeleteLog(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	logID, err := parseObjectIDParam(c, "logId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.assignmentService.DeleteLog(c.Request.Context(), actor, logID); err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAssignment removes an assignment and its logs. Trainer only.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	actor, assignmentID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), actor, assignmentID); err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AssignmentHandler) actorAndID(c *gin.Context) (domain.Actor, primitive.ObjectID, bool) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return domain.Actor{}, primitive.NilObjectID, false
	}
	assignmentID, err := parseObjectIDParam(c, "assignmentId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return domain.Actor{}, primitive.NilObjectID, false
	}
	return actor, assignmentID, true
}

func (h *AssignmentHandler) abortAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrLogNotFound),
		errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAssignmentAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidStateTransition), errors.Is(err, service.ErrAlreadyCompleted):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrExerciseNotInWorkout):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// MapWorkoutLogToResponse converts a domain WorkoutLog to its DTO.
func MapWorkoutLogToResponse(log *domain.WorkoutLog) WorkoutLogResponse {
	if log == nil {
		return WorkoutLogResponse{}
	}
	return WorkoutLogResponse{
		ID:                log.ID.Hex(),
		AssignmentID:      log.AssignmentID.Hex(),
		WorkoutExerciseID: log.WorkoutExerciseID.Hex(),
		ExerciseID:        log.ExerciseID.Hex(),
		SetNumber:         log.SetNumber,
		RepsCompleted:     log.RepsCompleted,
		WeightUsed:        log.WeightUsed,
		RPE:               log.RPE,
		Notes:             log.Notes,
		LoggedAt:          log.LoggedAt,
	}
}
