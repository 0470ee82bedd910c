package api

import (
	"errors"
	"net/http"

	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientHandler serves the client-facing read endpoints: own profile, own
// trainer, own workout list. Client role only.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// GetMyProfile returns the authenticated client's profile.
func (h *ClientHandler) GetMyProfile(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	client, err := h.clientService.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		h.abortClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapClientToResponse(client))
}

// GetMyTrainer returns the authenticated client's trainer.
func (h *ClientHandler) GetMyTrainer(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	trainer, err := h.clientService.GetTrainer(c.Request.Context(), actor.ID)
	if err != nil {
		h.abortClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainerToResponse(trainer))
}

// GetMyAssignments lists the client's assignments enriched with workout
// details and logging progress, newest first.
func (h *ClientHandler) GetMyAssignments(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	summaries, err := h.clientService.GetAssignmentSummaries(c.Request.Context(), actor.ID)
	if err != nil {
		h.abortClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *ClientHandler) abortClientError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrClientNotFound) {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}
