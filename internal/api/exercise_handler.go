package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/exercisedb"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise library endpoints.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- Request/Response Structs ---

type ExerciseRequest struct {
	Name      string `json:"name" binding:"required"`
	BodyPart  string `json:"bodyPart"`
	Equipment string `json:"equipment"`
	Target    string `json:"target"`
	GifURL    string `json:"gifUrl"`
}

type ExerciseResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BodyPart  string `json:"bodyPart,omitempty"`
	Equipment string `json:"equipment,omitempty"`
	Target    string `json:"target,omitempty"`
	GifURL    string `json:"gifUrl,omitempty"`
	IsCustom  bool   `json:"isCustom"`
	TrainerID string `json:"trainerId,omitempty"`
}

type ImportCatalogRequest struct {
	Name      string `json:"name" binding:"required"`
	BodyPart  string `json:"bodyPart"`
	Equipment string `json:"equipment"`
	Target    string `json:"target"`
	GifURL    string `json:"gifUrl"`
}

type MediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// CreateExercise adds a custom exercise to the trainer's library.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateCustom(c.Request.Context(), actor.ID, service.ExerciseInput{
		Name:      req.Name,
		BodyPart:  req.BodyPart,
		Equipment: req.Equipment,
		Target:    req.Target,
		GifURL:    req.GifURL,
	})
	if err != nil {
		h.abortExerciseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetExercises lists catalog exercises plus the trainer's custom ones.
func (h *ExerciseHandler) GetExercises(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	exercises, err := h.exerciseService.ListVisible(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list exercises")
		return
	}

	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetExercise returns one library entry.
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, err := parseObjectIDParam(c, "exerciseId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	exercise, err := h.exerciseService.GetByID(c.Request.Context(), exerciseID)
	if err != nil {
		h.abortExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// UpdateExercise edits one of the trainer's custom exercises.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	exerciseID, err := parseObjectIDParam(c, "exerciseId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.UpdateCustom(c.Request.Context(), actor.ID, exerciseID, service.ExerciseInput{
		Name:      req.Name,
		BodyPart:  req.BodyPart,
		Equipment: req.Equipment,
		Target:    req.Target,
		GifURL:    req.GifURL,
	})
	if err != nil {
		h.abortExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise removes one of the trainer's custom exercises.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	exerciseID, err := parseObjectIDParam(c, "exerciseId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.exerciseService.DeleteCustom(c.Request.Context(), actor.ID, exerciseID); err != nil {
		h.abortExerciseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchCatalog proxies a name search to the external catalog.
// GET /exercises/catalog/search?q=press&limit=20
func (h *ExerciseHandler) SearchCatalog(c *gin.Context) {
	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.exerciseService.SearchCatalog(c.Request.Context(), query, limit)
	if err != nil {
		h.abortExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ImportCatalogExercise copies a catalog entry into the local library.
func (h *ExerciseHandler) ImportCatalogExercise(c *gin.Context) {
	var req ImportCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.ImportCatalogExercise(c.Request.Context(), exercisedb.CatalogExercise{
		Name:      req.Name,
		BodyPart:  req.BodyPart,
		Equipment: req.Equipment,
		Target:    req.Target,
		GifURL:    req.GifURL,
	})
	if err != nil {
		h.abortExerciseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GenerateMediaUploadURL returns a presigned PUT URL for exercise media.
func (h *ExerciseHandler) GenerateMediaUploadURL(c *gin.Context) {
	actor, err := getActorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.exerciseService.GenerateMediaUploadURL(c.Request.Context(), actor.ID, req.ContentType)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}
	c.JSON(http.StatusOK, upload)
}

func (h *ExerciseHandler) abortExerciseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCatalogUnavailable):
		abortWithError(c, http.StatusBadGateway, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// MapExerciseToResponse converts a domain Exercise to its DTO.
func MapExerciseToResponse(e *domain.Exercise) ExerciseResponse {
	if e == nil {
		return ExerciseResponse{}
	}
	resp := ExerciseResponse{
		ID:        e.ID.Hex(),
		Name:      e.Name,
		BodyPart:  e.BodyPart,
		Equipment: e.Equipment,
		Target:    e.Target,
		GifURL:    e.GifURL,
		IsCustom:  e.IsCustom,
	}
	if e.TrainerID != nil {
		resp.TrainerID = e.TrainerID.Hex()
	}
	return resp
}
