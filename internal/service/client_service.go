package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentSummary is one row of a client's workout list: the assignment
// itself plus the template details a client needs to act on it.
type AssignmentSummary struct {
	Assignment      domain.WorkoutAssignment `json:"assignment"`
	WorkoutName     string                   `json:"workoutName"`
	WorkoutCategory string                   `json:"workoutCategory,omitempty"`
	ExerciseCount   int                      `json:"exerciseCount"`
	LoggedSetCount  int                      `json:"loggedSetCount"`
	TimeProgressPct *float64                 `json:"timeProgressPct,omitempty"`
}

// --- Service Interface ---

// ClientService serves the client-facing read side: a client sees their own
// profile and assignments, never another client's.
type ClientService interface {
	GetProfile(ctx context.Context, clientID primitive.ObjectID) (*domain.Client, error)
	GetTrainer(ctx context.Context, clientID primitive.ObjectID) (*domain.Trainer, error)
	// GetAssignmentSummaries lists the client's assignments enriched with
	// workout details and logging progress, newest first.
	GetAssignmentSummaries(ctx context.Context, clientID primitive.ObjectID) ([]AssignmentSummary, error)
}

// --- Service Implementation ---

type clientService struct {
	clientRepo     repository.ClientRepository
	trainerRepo    repository.TrainerRepository
	workoutRepo    repository.WorkoutRepository
	assignmentRepo repository.AssignmentRepository
	logRepo        repository.WorkoutLogRepository
	now            func() time.Time
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	clientRepo repository.ClientRepository,
	trainerRepo repository.TrainerRepository,
	workoutRepo repository.WorkoutRepository,
	assignmentRepo repository.AssignmentRepository,
	logRepo repository.WorkoutLogRepository,
) ClientService {
	return &clientService{
		clientRepo:     clientRepo,
		trainerRepo:    trainerRepo,
		workoutRepo:    workoutRepo,
		assignmentRepo: assignmentRepo,
		logRepo:        logRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns the client's own profile without credentials.
func (s *clientService) GetProfile(ctx context.Context, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	client.PasswordHash = ""
	client.InviteToken = nil
	return client, nil
}

// GetTrainer returns the client's trainer profile without credentials.
func (s *clientService) GetTrainer(ctx context.Context, clientID primitive.ObjectID) (*domain.Trainer, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	trainer, err := s.trainerRepo.GetByID(ctx, client.TrainerID)
	if err != nil {
		return nil, err
	}
	trainer.PasswordHash = ""
	return trainer, nil
}

// GetAssignmentSummaries joins the client's assignments with their workout
// templates and logged sets. Workouts are fetched once per distinct template.
func (s *clientService) GetAssignmentSummaries(ctx context.Context, clientID primitive.ObjectID) ([]AssignmentSummary, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}

	assignments, err := s.assignmentRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	workoutCache := make(map[primitive.ObjectID]*domain.Workout)
	now := s.now()

	summaries := make([]AssignmentSummary, 0, len(assignments))
	for _, assignment := range assignments {
		summary := AssignmentSummary{
			Assignment:      assignment,
			TimeProgressPct: TimeProgressPercentage(&assignment, now),
		}

		workout, ok := workoutCache[assignment.WorkoutID]
		if !ok {
			workout, err = s.workoutRepo.GetByID(ctx, assignment.WorkoutID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			workoutCache[assignment.WorkoutID] = workout
		}
		if workout != nil {
			summary.WorkoutName = workout.Name
			summary.WorkoutCategory = workout.Category
			summary.ExerciseCount = len(workout.Exercises)
		}

		logs, err := s.logRepo.GetByAssignmentID(ctx, assignment.ID)
		if err != nil {
			return nil, err
		}
		summary.LoggedSetCount = len(logs)

		summaries = append(summaries, summary)
	}
	return summaries, nil
}
