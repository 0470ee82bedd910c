package api

import (
	"errors"
	"net/http"

	"fitcoach/coach-app/internal/period"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the read-only analytics endpoints. The ?period
// query parameter accepts week, month, quarter or year; anything else falls
// back to week.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetTrainerDashboard returns the trainer's windowed rollup.
// GET /analytics/dashboard?period=month
func (h *AnalyticsHandler) GetTrainerDashboard(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	token := period.Token(c.DefaultQuery("period", string(period.TokenWeek)))
	dashboard, err := h.analyticsService.TrainerDashboard(c.Request.Context(), actor, token)
	if err != nil {
		h.abortAnalyticsError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetClientAnalytics returns one client's windowed rollup. Accessible to
// the owning trainer and to the client themselves.
// GET /analytics/clients/:clientId?period=month
func (h *AnalyticsHandler) GetClientAnalytics(c *gin.Context) {
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

	token := period.Token(c.DefaultQuery("period", string(period.TokenWeek)))
	analytics, err := h.analyticsService.ClientAnalytics(c.Request.Context(), actor, clientID, token)
	if err != nil {
		h.abortAnalyticsError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// GetExerciseProgress returns the client's per-exercise session series.
// GET /analytics/clients/:clientId/exercises?period=quarter
func (h *AnalyticsHandler) GetExerciseProgress(c *gin.Context) {
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

	token := period.Token(c.DefaultQuery("period", string(period.TokenWeek)))
	progress, err := h.analyticsService.ExerciseProgress(c.Request.Context(), actor, clientID, token)
	if err != nil {
		h.abortAnalyticsError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *AnalyticsHandler) abortAnalyticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientNotManaged), errors.Is(err, service.ErrTrainerAccessRequired):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
