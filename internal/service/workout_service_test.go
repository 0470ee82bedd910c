package service

import (
	"context"
	"testing"

	"fitcoach/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutFixture struct {
	svc            WorkoutService
	workoutRepo    *fakeWorkoutRepo
	exerciseRepo   *fakeExerciseRepo
	assignmentRepo *fakeAssignmentRepo
	logRepo        *fakeWorkoutLogRepo

	trainerID   primitive.ObjectID
	exerciseIDs []primitive.ObjectID
}

func newWorkoutFixture(t *testing.T, exerciseCount int) *workoutFixture {
	t.Helper()
	f := &workoutFixture{
		workoutRepo:    newFakeWorkoutRepo(),
		exerciseRepo:   newFakeExerciseRepo(),
		assignmentRepo: newFakeAssignmentRepo(),
		logRepo:        newFakeWorkoutLogRepo(),
		trainerID:      primitive.NewObjectID(),
	}
	f.svc = NewWorkoutService(f.workoutRepo, f.exerciseRepo, f.assignmentRepo, f.logRepo)
	for i := 0; i < exerciseCount; i++ {
		id, err := f.exerciseRepo.Create(context.Background(), &domain.Exercise{Name: "Exercise"})
		require.NoError(t, err)
		f.exerciseIDs = append(f.exerciseIDs, id)
	}
	return f
}

func TestCreateWorkoutKeepsExerciseOrder(t *testing.T) {
	f := newWorkoutFixture(t, 3)
	ctx := context.Background()

	// Exercises supplied out of order come back sorted by order index.
	input := WorkoutInput{
		Name: "Full Body",
		Exercises: []WorkoutExerciseInput{
			{ExerciseID: f.exerciseIDs[2], OrderIndex: 3, Sets: 3, Reps: 12},
			{ExerciseID: f.exerciseIDs[0], OrderIndex: 1, Sets: 5, Reps: 5},
			{ExerciseID: f.exerciseIDs[1], OrderIndex: 2, Sets: 3, Reps: 8},
		},
	}

	workout, err := f.svc.Create(ctx, f.trainerID, input)
	require.NoError(t, err)
	require.Len(t, workout.Exercises, 3)

	for i, ex := range workout.Exercises {
		assert.Equal(t, i+1, ex.OrderIndex)
		assert.Equal(t, f.exerciseIDs[i], ex.ExerciseID)
		assert.False(t, ex.ID.IsZero())
	}

	stored, err := f.svc.GetByID(ctx, f.trainerID, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, workout.Exercises, stored.Exercises)
}

func TestCreateWorkoutValidation(t *testing.T) {
	f := newWorkoutFixture(t, 1)
	ctx := context.Background()
	exID := f.exerciseIDs[0]

	cases := []struct {
		name  string
		input WorkoutExerciseInput
	}{
		{"sets too low", WorkoutExerciseInput{ExerciseID: exID, OrderIndex: 1, Sets: 0, Reps: 8}},
		{"sets too high", WorkoutExerciseInput{ExerciseID: exID, OrderIndex: 1, Sets: 11, Reps: 8}},
		{"reps too low", WorkoutExerciseInput{ExerciseID: exID, OrderIndex: 1, Sets: 3, Reps: 0}},
		{"reps too high", WorkoutExerciseInput{ExerciseID: exID, OrderIndex: 1, Sets: 3, Reps: 101}},
		{"negative rest", WorkoutExerciseInput{ExerciseID: exID, OrderIndex: 1, Sets: 3, Reps: 8, RestSeconds: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.trainerID, WorkoutInput{
				Name:      "Bad",
				Exercises: []WorkoutExerciseInput{tc.input},
			})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.svc.Create(ctx, f.trainerID, WorkoutInput{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateWorkoutRejectsDuplicateOrderIndex(t *testing.T) {
	f := newWorkoutFixture(t, 2)

	_, err := f.svc.Create(context.Background(), f.trainerID, WorkoutInput{
		Name: "Dup",
		Exercises: []WorkoutExerciseInput{
			{ExerciseID: f.exerciseIDs[0], OrderIndex: 1, Sets: 3, Reps: 8},
			{ExerciseID: f.exerciseIDs[1], OrderIndex: 1, Sets: 3, Reps: 8},
		},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateWorkoutRejectsUnknownExercise(t *testing.T) {
	f := newWorkoutFixture(t, 0)

	_, err := f.svc.Create(context.Background(), f.trainerID, WorkoutInput{
		Name: "Ghost",
		Exercises: []WorkoutExerciseInput{
			{ExerciseID: primitive.NewObjectID(), OrderIndex: 1, Sets: 3, Reps: 8},
		},
	})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestUpdateWorkoutReplacesExerciseList(t *testing.T) {
	f := newWorkoutFixture(t, 2)
	ctx := context.Background()

	workout, err := f.svc.Create(ctx, f.trainerID, WorkoutInput{
		Name: "V1",
		Exercises: []WorkoutExerciseInput{
			{ExerciseID: f.exerciseIDs[0], OrderIndex: 1, Sets: 3, Reps: 8},
		},
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.trainerID, workout.ID, WorkoutInput{
		Name: "V2",
		Exercises: []WorkoutExerciseInput{
			{ExerciseID: f.exerciseIDs[1], OrderIndex: 1, Sets: 4, Reps: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "V2", updated.Name)
	require.Len(t, updated.Exercises, 1)
	assert.Equal(t, f.exerciseIDs[1], updated.Exercises[0].ExerciseID)
}

func TestWorkoutOwnership(t *testing.T) {
	f := newWorkoutFixture(t, 1)
	ctx := context.Background()

	workout, err := f.svc.Create(ctx, f.trainerID, WorkoutInput{
		Name: "Mine",
		Exercises: []WorkoutExerciseInput{
			{ExerciseID: f.exerciseIDs[0], OrderIndex: 1, Sets: 3, Reps: 8},
		},
	})
	require.NoError(t, err)

	otherTrainer := primitive.NewObjectID()
	_, err = f.svc.GetByID(ctx, otherTrainer, workout.ID)
	assert.ErrorIs(t, err, ErrWorkoutAccessDenied)

	err = f.svc.Delete(ctx, otherTrainer, workout.ID)
	assert.ErrorIs(t, err, ErrWorkoutAccessDenied)

	_, err = f.svc.GetByID(ctx, f.trainerID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestDeleteWorkoutCascades(t *testing.T) {
	f := newWorkoutFixture(t, 1)
	ctx := context.Background()

	workout, err := f.svc.Create(ctx, f.trainerID, WorkoutInput{
		Name: "Doomed",
		Exercises: []WorkoutExerciseInput{
			{ExerciseID: f.exerciseIDs[0], OrderIndex: 1, Sets: 3, Reps: 8},
		},
	})
	require.NoError(t, err)

	clientID := primitive.NewObjectID()
	assignment := domain.WorkoutAssignment{
		WorkoutID: workout.ID,
		ClientID:  clientID,
		TrainerID: f.trainerID,
		Status:    domain.StatusPending,
	}
	assignmentID, err := f.assignmentRepo.Create(ctx, &assignment)
	require.NoError(t, err)

	_, err = f.logRepo.Upsert(ctx, &domain.WorkoutLog{
		AssignmentID:      assignmentID,
		WorkoutExerciseID: workout.Exercises[0].ID,
		ClientID:          clientID,
		ExerciseID:        f.exerciseIDs[0],
		SetNumber:         1,
		RepsCompleted:     8,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.trainerID, workout.ID))

	assert.Empty(t, f.workoutRepo.workouts)
	assert.Empty(t, f.assignmentRepo.assignments)
	assert.Empty(t, f.logRepo.logs)
}
