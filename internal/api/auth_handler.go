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

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterTrainerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AcceptInviteRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// TrainerResponse excludes sensitive info like the password hash.
type TrainerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClientResponse excludes credentials and the invite token.
type ClientResponse struct {
	ID        string    `json:"id"`
	TrainerID string    `json:"trainerId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type TrainerLoginResponse struct {
	Token   string          `json:"token"`
	Trainer TrainerResponse `json:"trainer"`
}

type ClientLoginResponse struct {
	Token  string         `json:"token"`
	Client ClientResponse `json:"client"`
}

// --- Handler Methods ---

// RegisterTrainer creates a new trainer account.
func (h *AuthHandler) RegisterTrainer(c *gin.Context) {
	var req RegisterTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainer, err := h.authService.RegisterTrainer(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapTrainerToResponse(trainer))
}

// LoginTrainer authenticates a trainer and returns a JWT.
func (h *AuthHandler) LoginTrainer(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, trainer, err := h.authService.LoginTrainer(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abortLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, TrainerLoginResponse{
		Token:   token,
		Trainer: MapTrainerToResponse(trainer),
	})
}

// LoginClient authenticates a client and returns a JWT.
func (h *AuthHandler) LoginClient(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, client, err := h.authService.LoginClient(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.abortLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, ClientLoginResponse{
		Token:  token,
		Client: MapClientToResponse(client),
	})
}

// AcceptInvite lets an invited client set a password; on success the client
// is logged in immediately.
func (h *AuthHandler) AcceptInvite(c *gin.Context) {
	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, client, err := h.authService.AcceptInvite(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInviteTokenInvalid) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process invite")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred while accepting the invite")
		}
		return
	}

	c.JSON(http.StatusOK, ClientLoginResponse{
		Token:  token,
		Client: MapClientToResponse(client),
	})
}

func (h *AuthHandler) abortLoginError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrAuthenticationFailed) {
		abortWithError(c, http.StatusUnauthorized, err.Error())
	} else if errors.Is(err, service.ErrTokenGeneration) {
		abortWithError(c, http.StatusInternalServerError, "Could not process login")
	} else {
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
	}
}

// MapTrainerToResponse converts a domain Trainer to its DTO.
func MapTrainerToResponse(trainer *domain.Trainer) TrainerResponse {
	if trainer == nil {
		return TrainerResponse{}
	}
	return TrainerResponse{
		ID:        trainer.ID.Hex(),
		Name:      trainer.Name,
		Email:     trainer.Email,
		CreatedAt: trainer.CreatedAt,
	}
}

// MapClientToResponse converts a domain Client to its DTO.
func MapClientToResponse(client *domain.Client) ClientResponse {
	if client == nil {
		return ClientResponse{}
	}
	return ClientResponse{
		ID:        client.ID.Hex(),
		TrainerID: client.TrainerID.Hex(),
		Name:      client.Name,
		Email:     client.Email,
		AvatarURL: client.AvatarURL,
		Notes:     client.Notes,
		IsActive:  client.IsActive,
		CreatedAt: client.CreatedAt,
	}
}
