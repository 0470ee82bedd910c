package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrEmailAlreadyExists   = errors.New("an account with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrInviteTokenInvalid   = errors.New("invite token is invalid or already used")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// --- Service Interface ---
type AuthService interface {
	RegisterTrainer(ctx context.Context, name, email, password string) (*domain.Trainer, error)
	LoginTrainer(ctx context.Context, email, password string) (token string, trainer *domain.Trainer, err error)
	LoginClient(ctx context.Context, email, password string) (token string, client *domain.Client, err error)
	// AcceptInvite turns an invited client into an active account: the
	// client sets a password and the one-shot token is consumed.
	AcceptInvite(ctx context.Context, inviteToken, password string) (token string, client *domain.Client, err error)
	GetJWTSecret() string
}

// --- Service Implementation ---

type authService struct {
	trainerRepo   repository.TrainerRepository
	clientRepo    repository.ClientRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	trainerRepo repository.TrainerRepository,
	clientRepo repository.ClientRepository,
	jwtSecret string,
	jwtExpiration time.Duration,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		trainerRepo:   trainerRepo,
		clientRepo:    clientRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// RegisterTrainer handles new trainer registration.
func (s *authService) RegisterTrainer(ctx context.Context, name, email, password string) (*domain.Trainer, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}

	_, err := s.trainerRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	trainer := &domain.Trainer{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	trainerID, err := s.trainerRepo.Create(ctx, trainer)
	if err != nil {
		// The unique email index closes the check-then-create race.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	trainer.ID = trainerID
	trainer.PasswordHash = ""
	return trainer, nil
}

// LoginTrainer authenticates a trainer and issues a JWT.
func (s *authService) LoginTrainer(ctx context.Context, email, password string) (string, *domain.Trainer, error) {
	if email == "" || password == "" {
		return "", nil, errors.New("email and password cannot be empty")
	}

	trainer, err := s.trainerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(trainer.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(trainer.ID.Hex(), domain.RoleTrainer)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	trainer.PasswordHash = ""
	return token, trainer, nil
}

// LoginClient authenticates a client and issues a JWT. Clients that never
// accepted their invite have no password hash and cannot log in.
func (s *authService) LoginClient(ctx context.Context, email, password string) (string, *domain.Client, error) {
	if email == "" || password == "" {
		return "", nil, errors.New("email and password cannot be empty")
	}

	client, err := s.clientRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}
	if client.PasswordHash == "" || !client.IsActive {
		return "", nil, ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(client.ID.Hex(), domain.RoleClient)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	client.PasswordHash = ""
	return token, client, nil
}

// AcceptInvite sets the client's password, consumes the invite token and
// logs the client in.
func (s *authService) AcceptInvite(ctx context.Context, inviteToken, password string) (string, *domain.Client, error) {
	if inviteToken == "" || password == "" {
		return "", nil, errors.New("invite token and password cannot be empty")
	}

	client, err := s.clientRepo.GetByInviteToken(ctx, inviteToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInviteTokenInvalid
		}
		return "", nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, ErrHashingFailed
	}

	client.PasswordHash = string(hashedPassword)
	client.InviteToken = nil // one-shot
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return "", nil, err
	}

	token, err := s.generateJWT(client.ID.Hex(), domain.RoleClient)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	client.PasswordHash = ""
	return token, client, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new signed token for the given account.
func (s *authService) generateJWT(subjectID string, role domain.Role) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: subjectID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "coach-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
