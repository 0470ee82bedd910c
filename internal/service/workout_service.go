package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrWorkoutAccessDenied = errors.New("access denied to this workout")
)

// WorkoutExerciseInput is one prescribed exercise of a workout being
// created or updated.
type WorkoutExerciseInput struct {
	ExerciseID  primitive.ObjectID
	OrderIndex  int
	Sets        int
	Reps        int
	Weight      *float64
	RestSeconds int
	Notes       string
}

// WorkoutInput carries a full workout template definition.
type WorkoutInput struct {
	Name                 string
	Description          string
	Category             string
	Difficulty           string
	DurationMinutes      *int
	ScheduledDays        *string
	ProgramDurationWeeks *int
	Exercises            []WorkoutExerciseInput
}

// --- Service Interface ---
type WorkoutService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error)
	GetByID(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	GetByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, trainerID, workoutID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error)
	Delete(ctx context.Context, trainerID, workoutID primitive.ObjectID) error
}

// --- Service Implementation ---

type workoutService struct {
	workoutRepo    repository.WorkoutRepository
	exerciseRepo   repository.ExerciseRepository
	assignmentRepo repository.AssignmentRepository
	logRepo        repository.WorkoutLogRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	assignmentRepo repository.AssignmentRepository,
	logRepo repository.WorkoutLogRepository,
) WorkoutService {
	return &workoutService{
		workoutRepo:    workoutRepo,
		exerciseRepo:   exerciseRepo,
		assignmentRepo: assignmentRepo,
		logRepo:        logRepo,
	}
}

// Create validates and stores a new workout template. The embedded exercise
// list is kept sorted by order index.
func (s *workoutService) Create(ctx context.Context, trainerID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error) {
	if trainerID == primitive.NilObjectID || input.Name == "" {
		return nil, fmt.Errorf("%w: workout name is required", ErrValidation)
	}
	exercises, err := s.buildExerciseList(ctx, input.Exercises)
	if err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		TrainerID:            trainerID,
		Name:                 input.Name,
		Description:          input.Description,
		Category:             input.Category,
		Difficulty:           input.Difficulty,
		DurationMinutes:      input.DurationMinutes,
		ScheduledDays:        input.ScheduledDays,
		ProgramDurationWeeks: input.ProgramDurationWeeks,
		Exercises:            exercises,
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID
	return workout, nil
}

// GetByID retrieves a workout owned by the trainer.
func (s *workoutService) GetByID(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.ownedWorkout(ctx, trainerID, workoutID)
}

// GetByTrainer lists the trainer's workout templates.
func (s *workoutService) GetByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	return s.workoutRepo.GetByTrainerID(ctx, trainerID)
}

// Update replaces a workout definition, including its exercise list.
func (s *workoutService) Update(ctx context.Context, trainerID, workoutID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error) {
	workout, err := s.ownedWorkout(ctx, trainerID, workoutID)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: workout name is required", ErrValidation)
	}
	exercises, err := s.buildExerciseList(ctx, input.Exercises)
	if err != nil {
		return nil, err
	}

	workout.Name = input.Name
	workout.Description = input.Description
	workout.Category = input.Category
	workout.Difficulty = input.Difficulty
	workout.DurationMinutes = input.DurationMinutes
	workout.ScheduledDays = input.ScheduledDays
	workout.ProgramDurationWeeks = input.ProgramDurationWeeks
	workout.Exercises = exercises

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

// Delete removes a workout and cascades to its assignments and their logs.
func (s *workoutService) Delete(ctx context.Context, trainerID, workoutID primitive.ObjectID) error {
	workout, err := s.ownedWorkout(ctx, trainerID, workoutID)
	if err != nil {
		return err
	}

	assignments, err := s.assignmentRepo.ListByTrainerAssignedSince(ctx, trainerID, time.Time{})
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.WorkoutID != workout.ID {
			continue
		}
		if err := s.logRepo.DeleteByAssignmentID(ctx, a.ID); err != nil {
			return err
		}
	}
	if err := s.assignmentRepo.DeleteByWorkoutID(ctx, workout.ID); err != nil {
		return err
	}
	return s.workoutRepo.Delete(ctx, workout.ID, trainerID)
}

// buildExerciseList validates the prescribed exercises and converts them to
// embedded entries sorted by order index.
func (s *workoutService) buildExerciseList(ctx context.Context, inputs []WorkoutExerciseInput) ([]domain.WorkoutExercise, error) {
	exercises := make([]domain.WorkoutExercise, 0, len(inputs))
	seenOrder := make(map[int]struct{}, len(inputs))
	for _, in := range inputs {
		if in.Sets < 1 || in.Sets > 10 {
			return nil, fmt.Errorf("%w: sets must be between 1 and 10", ErrValidation)
		}
		if in.Reps < 1 || in.Reps > 100 {
			return nil, fmt.Errorf("%w: reps must be between 1 and 100", ErrValidation)
		}
		if in.RestSeconds < 0 {
			return nil, fmt.Errorf("%w: rest seconds must be >= 0", ErrValidation)
		}
		if in.Weight != nil && *in.Weight < 0 {
			return nil, fmt.Errorf("%w: weight must be >= 0", ErrValidation)
		}
		if _, dup := seenOrder[in.OrderIndex]; dup {
			return nil, fmt.Errorf("%w: duplicate order index %d", ErrValidation, in.OrderIndex)
		}
		seenOrder[in.OrderIndex] = struct{}{}

		if _, err := s.exerciseRepo.GetByID(ctx, in.ExerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrExerciseNotFound
			}
			return nil, err
		}

		exercises = append(exercises, domain.WorkoutExercise{
			ID:          primitive.NewObjectID(),
			ExerciseID:  in.ExerciseID,
			OrderIndex:  in.OrderIndex,
			Sets:        in.Sets,
			Reps:        in.Reps,
			Weight:      in.Weight,
			RestSeconds: in.RestSeconds,
			Notes:       in.Notes,
		})
	}

	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].OrderIndex < exercises[j].OrderIndex
	})
	return exercises, nil
}

// ownedWorkout fetches a workout and verifies trainer ownership.
func (s *workoutService) ownedWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.TrainerID != trainerID {
		return nil, ErrWorkoutAccessDenied
	}
	return workout, nil
}
