package service

import (
	"context"
	"testing"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/period"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type lifecycleFixture struct {
	svc            *assignmentService
	assignmentRepo *fakeAssignmentRepo
	workoutRepo    *fakeWorkoutRepo
	logRepo        *fakeWorkoutLogRepo

	trainer    domain.Actor
	client     domain.Actor
	workout    domain.Workout
	assignment domain.WorkoutAssignment
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	assignmentRepo := newFakeAssignmentRepo()
	workoutRepo := newFakeWorkoutRepo()
	logRepo := newFakeWorkoutLogRepo()

	trainerID := primitive.NewObjectID()
	clientID := primitive.NewObjectID()

	workout := domain.Workout{
		TrainerID: trainerID,
		Name:      "Push Day",
		Exercises: []domain.WorkoutExercise{
			{ID: primitive.NewObjectID(), ExerciseID: primitive.NewObjectID(), OrderIndex: 1, Sets: 3, Reps: 8},
			{ID: primitive.NewObjectID(), ExerciseID: primitive.NewObjectID(), OrderIndex: 2, Sets: 4, Reps: 10},
		},
	}
	workoutID, err := workoutRepo.Create(context.Background(), &workout)
	require.NoError(t, err)
	workout.ID = workoutID

	assignment := domain.WorkoutAssignment{
		WorkoutID:  workoutID,
		ClientID:   clientID,
		TrainerID:  trainerID,
		AssignedAt: period.StartOfDay(time.Now().UTC()),
		Status:     domain.StatusPending,
	}
	assignmentID, err := assignmentRepo.Create(context.Background(), &assignment)
	require.NoError(t, err)
	assignment.ID = assignmentID

	svc := NewAssignmentService(assignmentRepo, workoutRepo, logRepo).(*assignmentService)

	return &lifecycleFixture{
		svc:            svc,
		assignmentRepo: assignmentRepo,
		workoutRepo:    workoutRepo,
		logRepo:        logRepo,
		trainer:        domain.Actor{ID: trainerID, Role: domain.RoleTrainer},
		client:         domain.Actor{ID: clientID, Role: domain.RoleClient},
		workout:        workout,
		assignment:     assignment,
	}
}

func TestStartAssignment(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)

	// A second start is not a valid transition.
	_, err = f.svc.Start(ctx, f.client, f.assignment.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestStartAssignmentAccessControl(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	otherClient := domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleClient}
	_, err := f.svc.Start(ctx, otherClient, f.assignment.ID)
	assert.ErrorIs(t, err, ErrAssignmentAccessDenied)

	// The assigning trainer may operate on it.
	_, err = f.svc.Start(ctx, f.trainer, f.assignment.ID)
	assert.NoError(t, err)
}

func TestLogSetUpsertsOnSameSet(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	we := f.workout.Exercises[0]

	first, err := f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: we.ID,
		SetNumber:         1,
		RepsCompleted:     8,
	})
	require.NoError(t, err)

	second, err := f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: we.ID,
		SetNumber:         1,
		RepsCompleted:     10,
	})
	require.NoError(t, err)

	// Re-logging the same set overwrote the row instead of duplicating it.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 10, second.RepsCompleted)

	logs, err := f.svc.GetLogs(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestLogSetPromotesPendingAssignment(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: f.workout.Exercises[0].ID,
		SetNumber:         1,
		RepsCompleted:     8,
	})
	require.NoError(t, err)

	assignment, err := f.svc.GetByID(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, assignment.Status)
	assert.NotNil(t, assignment.StartedAt)
}

func TestLogSetRejectsForeignWorkoutExercise(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: primitive.NewObjectID(),
		SetNumber:         1,
		RepsCompleted:     8,
	})
	assert.ErrorIs(t, err, ErrExerciseNotInWorkout)
}

func TestLogSetRejectsTerminalAssignment(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.svc.Complete(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)

	_, err = f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: f.workout.Exercises[0].ID,
		SetNumber:         1,
		RepsCompleted:     8,
	})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestLogSetValidation(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	we := f.workout.Exercises[0]

	_, err := f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{WorkoutExerciseID: we.ID, SetNumber: 0})
	assert.ErrorIs(t, err, ErrValidation)

	badRPE := 11
	_, err = f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: we.ID, SetNumber: 1, RPE: &badRPE,
	})
	assert.ErrorIs(t, err, ErrValidation)

	badWeight := -5.0
	_, err = f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: we.ID, SetNumber: 1, WeightUsed: &badWeight,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompleteRecordsDuration(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	_, err := f.svc.Start(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return start.Add(45 * time.Minute) }
	completed, err := f.svc.Complete(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.DurationMinutes)
	assert.Equal(t, 45, *completed.DurationMinutes)
	require.NotNil(t, completed.CompletedAt)
}

func TestCompleteWithoutStartHasNoDuration(t *testing.T) {
	f := newLifecycleFixture(t)

	completed, err := f.svc.Complete(context.Background(), f.client, f.assignment.ID)
	require.NoError(t, err)
	assert.Nil(t, completed.DurationMinutes)
}

func TestCompleteTwice(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.svc.Complete(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, f.client, f.assignment.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestSkipPolicy(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	skipped, err := f.svc.Skip(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, skipped.Status)

	// Skipping again is a no-op, not an error.
	again, err := f.svc.Skip(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, again.Status)
}

func TestSkipCompletedAssignment(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.svc.Complete(ctx, f.client, f.assignment.ID)
	require.NoError(t, err)

	_, err = f.svc.Skip(ctx, f.client, f.assignment.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestUpdateLogPatchSemantics(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	weight := 80.0

	log, err := f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: f.workout.Exercises[0].ID,
		SetNumber:         1,
		RepsCompleted:     8,
		WeightUsed:        &weight,
		Notes:             "felt heavy",
	})
	require.NoError(t, err)

	newReps := 9
	updated, err := f.svc.UpdateLog(ctx, f.client, log.ID, LogPatch{RepsCompleted: &newReps})
	require.NoError(t, err)

	assert.Equal(t, 9, updated.RepsCompleted)
	// Fields absent from the patch kept their stored values.
	require.NotNil(t, updated.WeightUsed)
	assert.Equal(t, 80.0, *updated.WeightUsed)
	assert.Equal(t, "felt heavy", updated.Notes)
}

func TestDeleteAssignmentCascadesLogs(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	_, err := f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
		WorkoutExerciseID: f.workout.Exercises[0].ID,
		SetNumber:         1,
		RepsCompleted:     8,
	})
	require.NoError(t, err)

	// Clients cannot delete assignments.
	err = f.svc.Delete(ctx, f.client, f.assignment.ID)
	assert.ErrorIs(t, err, ErrAssignmentAccessDenied)

	err = f.svc.Delete(ctx, f.trainer, f.assignment.ID)
	require.NoError(t, err)
	assert.Empty(t, f.logRepo.logs)
	assert.Empty(t, f.assignmentRepo.assignments)
}

func TestAdherencePercentage(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	// No expectation set: adherence is undefined, not zero.
	pct, err := f.svc.AdherencePercentage(ctx, &f.assignment)
	require.NoError(t, err)
	assert.Nil(t, pct)

	expected := 4
	f.assignment.ExpectedSessions = &expected
	require.NoError(t, f.assignmentRepo.Update(ctx, &f.assignment))

	// Three sets over two distinct days count as two sessions.
	day1 := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 2)
	for i, at := range []time.Time{day1, day1.Add(10 * time.Minute), day2} {
		f.logRepo.now = func() time.Time { return at }
		_, err := f.svc.LogSet(ctx, f.client, f.assignment.ID, LogSetInput{
			WorkoutExerciseID: f.workout.Exercises[0].ID,
			SetNumber:         i + 1,
			RepsCompleted:     8,
		})
		require.NoError(t, err)
	}

	pct, err = f.svc.AdherencePercentage(ctx, &f.assignment)
	require.NoError(t, err)
	require.NotNil(t, pct)
	assert.Equal(t, 50.0, *pct)
}

func TestCalculateProgramMetrics(t *testing.T) {
	start := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	days := "mon,wed,fri"
	weeks := 4
	workout := &domain.Workout{ScheduledDays: &days, ProgramDurationWeeks: &weeks}
	assignment := &domain.WorkoutAssignment{}

	CalculateProgramMetrics(assignment, workout, start)

	require.NotNil(t, assignment.ExpectedSessions)
	assert.Equal(t, 12, *assignment.ExpectedSessions)
	require.NotNil(t, assignment.StartDate)
	assert.Equal(t, period.StartOfDay(start), *assignment.StartDate)
	require.NotNil(t, assignment.EndDate)
	assert.Equal(t, period.StartOfDay(start).AddDate(0, 0, 28), *assignment.EndDate)
}

func TestCalculateProgramMetricsDeduplicatesDays(t *testing.T) {
	days := "Mon, wed , mon"
	weeks := 2
	workout := &domain.Workout{ScheduledDays: &days, ProgramDurationWeeks: &weeks}
	assignment := &domain.WorkoutAssignment{}

	CalculateProgramMetrics(assignment, workout, time.Now().UTC())

	require.NotNil(t, assignment.ExpectedSessions)
	assert.Equal(t, 4, *assignment.ExpectedSessions)
}

func TestCalculateProgramMetricsOverride(t *testing.T) {
	workoutDays := "mon,wed,fri"
	override := "tue,thu"
	weeks := 3
	workout := &domain.Workout{ScheduledDays: &workoutDays, ProgramDurationWeeks: &weeks}
	assignment := &domain.WorkoutAssignment{ScheduledDays: &override}

	CalculateProgramMetrics(assignment, workout, time.Now().UTC())

	require.NotNil(t, assignment.ExpectedSessions)
	assert.Equal(t, 6, *assignment.ExpectedSessions)
}

func TestCalculateProgramMetricsWithoutSchedule(t *testing.T) {
	assignment := &domain.WorkoutAssignment{}
	CalculateProgramMetrics(assignment, &domain.Workout{}, time.Now().UTC())
	assert.Nil(t, assignment.ExpectedSessions)
	assert.Nil(t, assignment.StartDate)
	assert.Nil(t, assignment.EndDate)
}

func TestTimeProgressPercentage(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 28)
	assignment := &domain.WorkoutAssignment{StartDate: &start, EndDate: &end}

	pct := TimeProgressPercentage(assignment, start.AddDate(0, 0, 14))
	require.NotNil(t, pct)
	assert.Equal(t, 50.0, *pct)

	// Before the program starts and after it ends the value clamps.
	pct = TimeProgressPercentage(assignment, start.AddDate(0, 0, -3))
	require.NotNil(t, pct)
	assert.Equal(t, 0.0, *pct)

	pct = TimeProgressPercentage(assignment, end.AddDate(0, 0, 10))
	require.NotNil(t, pct)
	assert.Equal(t, 100.0, *pct)

	assert.Nil(t, TimeProgressPercentage(&domain.WorkoutAssignment{}, start))
}
