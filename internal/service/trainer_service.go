package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/email"
	"fitcoach/coach-app/internal/period"
	"fitcoach/coach-app/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound        = errors.New("client not found")
	ErrClientNotManaged      = errors.New("client is not managed by this trainer")
	ErrClientEmailTaken      = errors.New("trainer already has a client with this email")
	ErrTrainerAccessRequired = errors.New("trainer access required")
	ErrDuplicateAssignment   = errors.New("workout is already assigned to this client for this date")
)

// ClientPatch is an explicit partial update for a client profile; nil
// fields are left untouched.
type ClientPatch struct {
	Name      *string
	Email     *string
	AvatarURL *string
	Notes     *string
}

// AssignWorkoutInput carries the parameters of a new assignment.
type AssignWorkoutInput struct {
	WorkoutID    primitive.ObjectID
	ClientID     primitive.ObjectID
	AssignedDate time.Time
	DueDate      *time.Time
	// ScheduledDays overrides the workout's program schedule for this
	// client when set.
	ScheduledDays *string
}

// --- Service Interface ---
type TrainerService interface {
	// Client Management
	CreateClient(ctx context.Context, trainerID primitive.ObjectID, name, email, notes string) (*domain.Client, error)
	GetClients(ctx context.Context, trainerID primitive.ObjectID, activeOnly bool) ([]domain.Client, error)
	GetClient(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.Client, error)
	UpdateClient(ctx context.Context, trainerID, clientID primitive.ObjectID, patch ClientPatch) (*domain.Client, error)
	ArchiveClient(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.Client, error)
	DeleteClient(ctx context.Context, trainerID, clientID primitive.ObjectID) error

	// Assignment Management
	AssignWorkout(ctx context.Context, trainerID primitive.ObjectID, input AssignWorkoutInput) (*domain.WorkoutAssignment, error)
	GetClientAssignments(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID) ([]domain.WorkoutAssignment, error)
}

// --- Service Implementation ---

type trainerService struct {
	trainerRepo    repository.TrainerRepository
	clientRepo     repository.ClientRepository
	workoutRepo    repository.WorkoutRepository
	assignmentRepo repository.AssignmentRepository
	logRepo        repository.WorkoutLogRepository
	mailer         email.Mailer
}

// NewTrainerService creates a new instance of trainerService. The mailer is
// optional; invites are created with a token either way.
func NewTrainerService(
	trainerRepo repository.TrainerRepository,
	clientRepo repository.ClientRepository,
	workoutRepo repository.WorkoutRepository,
	assignmentRepo repository.AssignmentRepository,
	logRepo repository.WorkoutLogRepository,
	mailer email.Mailer,
) TrainerService {
	return &trainerService{
		trainerRepo:    trainerRepo,
		clientRepo:     clientRepo,
		workoutRepo:    workoutRepo,
		assignmentRepo: assignmentRepo,
		logRepo:        logRepo,
		mailer:         mailer,
	}
}

// === Client Management ===

// CreateClient registers a new client under the trainer with an invite
// token. Credentials are deferred until the client accepts the invite.
func (s *trainerService) CreateClient(ctx context.Context, trainerID primitive.ObjectID, name, emailAddr, notes string) (*domain.Client, error) {
	if trainerID == primitive.NilObjectID || name == "" || emailAddr == "" {
		return nil, errors.New("trainer ID, client name and email are required")
	}

	trainer, err := s.trainerRepo.GetByID(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	client := &domain.Client{
		TrainerID:   trainerID,
		Name:        name,
		Email:       emailAddr,
		Notes:       notes,
		InviteToken: &token,
		IsActive:    true,
	}

	clientID, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrClientEmailTaken
		}
		return nil, err
	}
	client.ID = clientID

	// Best effort; the invite token stays valid even if the mail bounces.
	if s.mailer != nil {
		_ = s.mailer.SendInvite(ctx, client.Email, client.Name, trainer.Name, token)
	}

	return client, nil
}

// GetClients retrieves the trainer's clients.
func (s *trainerService) GetClients(ctx context.Context, trainerID primitive.ObjectID, activeOnly bool) ([]domain.Client, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	clients, err := s.clientRepo.GetByTrainerID(ctx, trainerID, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// GetClient retrieves one client owned by the trainer.
func (s *trainerService) GetClient(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.Client, error) {
	return s.ownedClient(ctx, trainerID, clientID)
}

// UpdateClient applies a partial profile update. A nil patch field means
// "leave unchanged", which keeps partial-update semantics explicit instead
// of inferring presence from zero values.
func (s *trainerService) UpdateClient(ctx context.Context, trainerID, clientID primitive.ObjectID, patch ClientPatch) (*domain.Client, error) {
	client, err := s.ownedClient(ctx, trainerID, clientID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		client.Name = *patch.Name
	}
	if patch.Email != nil {
		client.Email = *patch.Email
	}
	if patch.AvatarURL != nil {
		client.AvatarURL = *patch.AvatarURL
	}
	if patch.Notes != nil {
		client.Notes = *patch.Notes
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrClientEmailTaken
		}
		return nil, err
	}
	return client, nil
}

// ArchiveClient soft-deletes a client by clearing the active flag. History
// (assignments, logs) stays in place.
func (s *trainerService) ArchiveClient(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.ownedClient(ctx, trainerID, clientID)
	if err != nil {
		return nil, err
	}
	client.IsActive = false
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient hard-deletes a client and cascades to their assignments and
// logs. Administrative action; archiving is the normal path.
func (s *trainerService) DeleteClient(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	client, err := s.ownedClient(ctx, trainerID, clientID)
	if err != nil {
		return err
	}

	assignments, err := s.assignmentRepo.GetByClientID(ctx, client.ID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if err := s.logRepo.DeleteByAssignmentID(ctx, a.ID); err != nil {
			return err
		}
	}
	if err := s.assignmentRepo.DeleteByClientID(ctx, client.ID); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, client.ID, trainerID)
}

// === Assignment Management ===

// AssignWorkout creates a pending assignment of a workout to a client and
// derives its program-period metrics. At most one assignment may exist per
// (workout, client, assignedDate).
func (s *trainerService) AssignWorkout(ctx context.Context, trainerID primitive.ObjectID, input AssignWorkoutInput) (*domain.WorkoutAssignment, error) {
	if trainerID == primitive.NilObjectID || input.WorkoutID == primitive.NilObjectID || input.ClientID == primitive.NilObjectID {
		return nil, errors.New("trainer ID, workout ID and client ID are required")
	}

	workout, err := s.workoutRepo.GetByID(ctx, input.WorkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.TrainerID != trainerID {
		return nil, ErrWorkoutAccessDenied
	}

	if _, err := s.ownedClient(ctx, trainerID, input.ClientID); err != nil {
		return nil, err
	}

	assignedDate := input.AssignedDate
	if assignedDate.IsZero() {
		assignedDate = time.Now().UTC()
	}
	assignedDate = period.StartOfDay(assignedDate)

	assignment := &domain.WorkoutAssignment{
		WorkoutID:     input.WorkoutID,
		ClientID:      input.ClientID,
		TrainerID:     trainerID,
		AssignedAt:    assignedDate,
		DueDate:       input.DueDate,
		Status:        domain.StatusPending,
		ScheduledDays: input.ScheduledDays,
	}
	CalculateProgramMetrics(assignment, workout, assignedDate)

	assignmentID, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateAssignment
		}
		return nil, err
	}
	assignment.ID = assignmentID
	return assignment, nil
}

// GetClientAssignments lists a client's assignments, newest first. Trainers
// see their own clients; clients see themselves.
func (s *trainerService) GetClientAssignments(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID) ([]domain.WorkoutAssignment, error) {
	switch actor.Role {
	case domain.RoleTrainer:
		if _, err := s.ownedClient(ctx, actor.ID, clientID); err != nil {
			return nil, err
		}
	case domain.RoleClient:
		if actor.ID != clientID {
			return nil, ErrClientNotManaged
		}
	default:
		return nil, ErrClientNotManaged
	}
	return s.assignmentRepo.GetByClientID(ctx, clientID)
}

// ownedClient fetches a client and verifies trainer ownership.
func (s *trainerService) ownedClient(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.TrainerID != trainerID {
		return nil, ErrClientNotManaged
	}
	return client, nil
}
