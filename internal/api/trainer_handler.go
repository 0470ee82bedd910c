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

// TrainerHandler serves the trainer-side client and assignment endpoints.
type TrainerHandler struct {
	trainerService service.TrainerService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- Request/Response Structs ---

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Notes string `json:"notes"`
}

type UpdateClientRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	AvatarURL *string `json:"avatarUrl"`
	Notes     *string `json:"notes"`
}

type AssignWorkoutRequest struct {
	WorkoutID    string     `json:"workoutId" binding:"required"`
	ClientID     string     `json:"clientId" binding:"required"`
	AssignedDate *time.Time `json:"assignedDate"`
	DueDate      *time.Time `json:"dueDate"`
	// ScheduledDays overrides the workout's program schedule for this
	// client, e.g. "mon,wed,fri".
	ScheduledDays *string `json:"scheduledDays"`
}

type AssignmentResponse struct {
	ID              string     `json:"id"`
	WorkoutID       string     `json:"workoutId"`
	ClientID        string     `json:"clientId"`
	TrainerID       string     `json:"trainerId"`
	AssignedDate    time.Time  `json:"assignedDate"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	Status          string     `json:"status"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`

	ScheduledDays    *string    `json:"scheduledDays,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	ExpectedSessions *int       `json:"expectedSessions,omitempty"`
}

// --- Handler Methods ---

// CreateClient invites a new client to the trainer's roster.
func (h *TrainerHandler) CreateClient(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.trainerService.CreateClient(c.Request.Context(), actor.ID, req.Name, req.Email, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrClientEmailTaken) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create client")
		}
		return
	}

	c.JSON(http.StatusCreated, MapClientToResponse(client))
}

// GetClients lists the trainer's clients. ?active=true hides archived ones.
func (h *TrainerHandler) GetClients(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	activeOnly := c.Query("active") == "true"
	clients, err := h.trainerService.GetClients(c.Request.Context(), actor.ID, activeOnly)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = MapClientToResponse(&clients[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetClient returns one client owned by the trainer.
func (h *TrainerHandler) GetClient(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	clientID, err := parseObjectIDParam(c, "clientId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.trainerService.GetClient(c.Request.Context(), actor.ID, clientID)
	if err != nil {
		h.abortClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapClientToResponse(client))
}

// UpdateClient applies a partial profile update; absent fields are kept.
func (h *TrainerHandler) UpdateClient(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	clientID, err := parseObjectIDParam(c, "clientId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	patch := service.ClientPatch{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Notes:     req.Notes,
	}
	client, err := h.trainerService.UpdateClient(c.Request.Context(), actor.ID, clientID, patch)
	if err != nil {
		if errors.Is(err, service.ErrClientEmailTaken) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		h.abortClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapClientToResponse(client))
}

// ArchiveClient soft-deletes a client; history stays intact.
func (h *TrainerHandler) ArchiveClient(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	clientID, err := parseObjectIDParam(c, "clientId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.trainerService.ArchiveClient(c.Request.Context(), actor.ID, clientID)
	if err != nil {
		h.abortClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapClientToResponse(client))
}

// DeleteClient hard-deletes a client and all their assignments and logs.
func (h *TrainerHandler) DeleteClient(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	clientID, err := parseObjectIDParam(c, "clientId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.trainerService.DeleteClient(c.Request.Context(), actor.ID, clientID); err != nil {
		h.abortClientError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignWorkout schedules a workout for a client on a date.
func (h *TrainerHandler) AssignWorkout(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	var req AssignWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workoutID, err := parseObjectIDHex(req.WorkoutID, "workoutId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	clientID, err := parseObjectIDHex(req.ClientID, "clientId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	input := service.AssignWorkoutInput{
		WorkoutID:     workoutID,
		ClientID:      clientID,
		DueDate:       req.DueDate,
		ScheduledDays: req.ScheduledDays,
	}
	if req.AssignedDate != nil {
		input.AssignedDate = *req.AssignedDate
	}

	assignment, err := h.trainerService.AssignWorkout(c.Request.Context(), actor.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrWorkoutAccessDenied), errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrDuplicateAssignment):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign workout")
		}
		return
	}

	c.JSON(http.StatusCreated, MapAssignmentToResponse(assignment))
}

// GetClientAssignments lists a client's assignments, newest first.
func (h *TrainerHandler) GetClientAssignments(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	clientID, err := parseObjectIDParam(c, "clientId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	assignments, err := h.trainerService.GetClientAssignments(c.Request.Context(), actor, clientID)
	if err != nil {
		h.abortClientError(c, err)
		return
	}

	responses := make([]AssignmentResponse, len(assignments))
	for i := range assignments {
		responses[i] = MapAssignmentToResponse(&assignments[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *TrainerHandler) abortClientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientNotManaged):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// MapAssignmentToResponse converts a domain WorkoutAssignment to its DTO.
func MapAssignmentToResponse(a *domain.WorkoutAssignment) AssignmentResponse {
	if a == nil {
		return AssignmentResponse{}
	}
	return AssignmentResponse{
		ID:               a.ID.Hex(),
		WorkoutID:        a.WorkoutID.Hex(),
		ClientID:         a.ClientID.Hex(),
		TrainerID:        a.TrainerID.Hex(),
		AssignedDate:     a.AssignedAt,
		DueDate:          a.DueDate,
		Status:           string(a.Status),
		StartedAt:        a.StartedAt,
		CompletedAt:      a.CompletedAt,
		DurationMinutes:  a.DurationMinutes,
		ScheduledDays:    a.ScheduledDays,
		StartDate:        a.StartDate,
		EndDate:          a.EndDate,
		ExpectedSessions: a.ExpectedSessions,
	}
}
