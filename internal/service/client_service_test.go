package service

import (
	"context"
	"testing"
	"time"

	"fitcoach/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type clientFixture struct {
	svc            ClientService
	clientRepo     *fakeClientRepo
	trainerRepo    *fakeTrainerRepo
	workoutRepo    *fakeWorkoutRepo
	assignmentRepo *fakeAssignmentRepo
	logRepo        *fakeWorkoutLogRepo

	trainerID primitive.ObjectID
	clientID  primitive.ObjectID
	now       time.Time
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()
	f := &clientFixture{
		clientRepo:     newFakeClientRepo(),
		trainerRepo:    newFakeTrainerRepo(),
		workoutRepo:    newFakeWorkoutRepo(),
		assignmentRepo: newFakeAssignmentRepo(),
		logRepo:        newFakeWorkoutLogRepo(),
		now:            time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC),
	}
	ctx := context.Background()

	trainerID, err := f.trainerRepo.Create(ctx, &domain.Trainer{
		Name:         "Coach Sam",
		Email:        "sam@example.com",
		PasswordHash: "bcrypt-hash",
	})
	require.NoError(t, err)
	f.trainerID = trainerID

	inviteToken := "pending-invite"
	clientID, err := f.clientRepo.Create(ctx, &domain.Client{
		TrainerID:    trainerID,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "bcrypt-hash",
		InviteToken:  &inviteToken,
		IsActive:     true,
	})
	require.NoError(t, err)
	f.clientID = clientID

	svc := NewClientService(f.clientRepo, f.trainerRepo, f.workoutRepo, f.assignmentRepo, f.logRepo)
	svc.(*clientService).now = func() time.Time { return f.now }
	f.svc = svc
	return f
}

func TestGetProfileStripsCredentials(t *testing.T) {
	f := newClientFixture(t)

	profile, err := f.svc.GetProfile(context.Background(), f.clientID)
	require.NoError(t, err)

	assert.Equal(t, "Alice", profile.Name)
	assert.Empty(t, profile.PasswordHash)
	assert.Nil(t, profile.InviteToken)

	_, err = f.svc.GetProfile(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestGetTrainerStripsCredentials(t *testing.T) {
	f := newClientFixture(t)

	trainer, err := f.svc.GetTrainer(context.Background(), f.clientID)
	require.NoError(t, err)
	assert.Equal(t, f.trainerID, trainer.ID)
	assert.Empty(t, trainer.PasswordHash)
}

func TestGetAssignmentSummaries(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	workout := &domain.Workout{
		TrainerID: f.trainerID,
		Name:      "Push Day",
		Category:  "strength",
		Exercises: []domain.WorkoutExercise{
			{ID: primitive.NewObjectID(), OrderIndex: 1, Sets: 3, Reps: 8},
			{ID: primitive.NewObjectID(), OrderIndex: 2, Sets: 3, Reps: 12},
		},
	}
	workoutID, err := f.workoutRepo.Create(ctx, workout)
	require.NoError(t, err)

	// Two assignments of the same template on consecutive days; the newer
	// one carries program-period metrics.
	start := f.now.AddDate(0, 0, -7)
	end := f.now.AddDate(0, 0, 7)
	newerID, err := f.assignmentRepo.Create(ctx, &domain.WorkoutAssignment{
		WorkoutID:  workoutID,
		ClientID:   f.clientID,
		TrainerID:  f.trainerID,
		AssignedAt: f.now.AddDate(0, 0, -1),
		Status:     domain.StatusInProgress,
		StartDate:  &start,
		EndDate:    &end,
	})
	require.NoError(t, err)
	_, err = f.assignmentRepo.Create(ctx, &domain.WorkoutAssignment{
		WorkoutID:  workoutID,
		ClientID:   f.clientID,
		TrainerID:  f.trainerID,
		AssignedAt: f.now.AddDate(0, 0, -2),
		Status:     domain.StatusPending,
	})
	require.NoError(t, err)

	for set := 1; set <= 3; set++ {
		_, err = f.logRepo.Upsert(ctx, &domain.WorkoutLog{
			AssignmentID:      newerID,
			WorkoutExerciseID: workout.Exercises[0].ID,
			ClientID:          f.clientID,
			ExerciseID:        primitive.NewObjectID(),
			SetNumber:         set,
			RepsCompleted:     8,
		})
		require.NoError(t, err)
	}

	summaries, err := f.svc.GetAssignmentSummaries(ctx, f.clientID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest first.
	newest := summaries[0]
	assert.Equal(t, newerID, newest.Assignment.ID)
	assert.Equal(t, "Push Day", newest.WorkoutName)
	assert.Equal(t, "strength", newest.WorkoutCategory)
	assert.Equal(t, 2, newest.ExerciseCount)
	assert.Equal(t, 3, newest.LoggedSetCount)
	require.NotNil(t, newest.TimeProgressPct)
	assert.Equal(t, 50.0, *newest.TimeProgressPct)

	older := summaries[1]
	assert.Equal(t, 0, older.LoggedSetCount)
	assert.Nil(t, older.TimeProgressPct)
}

func TestGetAssignmentSummariesToleratesDeletedWorkout(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	// Assignment whose workout template no longer exists.
	_, err := f.assignmentRepo.Create(ctx, &domain.WorkoutAssignment{
		WorkoutID:  primitive.NewObjectID(),
		ClientID:   f.clientID,
		TrainerID:  f.trainerID,
		AssignedAt: f.now.AddDate(0, 0, -1),
		Status:     domain.StatusPending,
	})
	require.NoError(t, err)

	summaries, err := f.svc.GetAssignmentSummaries(ctx, f.clientID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Empty(t, summaries[0].WorkoutName)
	assert.Equal(t, 0, summaries[0].ExerciseCount)
}
