package repository

import (
	"context"
	"time"

	"fitcoach/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TrainerRepository defines the interface for interacting with trainer data.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Trainer, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
}

// ClientRepository defines the interface for interacting with client data.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
	GetByInviteToken(ctx context.Context, token string) (*domain.Client, error)
	// GetByTrainerID lists the trainer's clients; activeOnly filters out
	// archived clients when true.
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID, activeOnly bool) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with the
// exercise library (shared catalog plus per-trainer custom exercises).
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetVisibleToTrainer returns catalog exercises plus the trainer's own
	// custom exercises.
	GetVisibleToTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with workout
// templates. The exercise list is embedded in the workout document.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// AssignmentRepository defines the interface for interacting with workout
// assignments. Create surfaces ErrDuplicateKey when the
// (workout, client, assignedDate) uniqueness constraint is violated.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutAssignment, error)
	// Windowed reads for the analytics engine. "AssignedSince" filters on
	// assignedDate, "CompletedSince" on completedAt.
	ListByTrainerAssignedSince(ctx context.Context, trainerID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error)
	ListByTrainerCompletedSince(ctx context.Context, trainerID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error)
	ListByClientAssignedSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error)
	ListByClientCompletedSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error)
	Update(ctx context.Context, assignment *domain.WorkoutAssignment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error
	DeleteByClientID(ctx context.Context, clientID primitive.ObjectID) error
}

// WorkoutLogRepository defines the interface for interacting with logged
// sets. Upsert writes on the (assignment, workoutExercise, setNumber) key
// with last-write-wins semantics.
type WorkoutLogRepository interface {
	Upsert(ctx context.Context, log *domain.WorkoutLog) (*domain.WorkoutLog, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error)
	GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutLog, error)
	ListByClientLoggedSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error)
	Update(ctx context.Context, log *domain.WorkoutLog) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) error
}
