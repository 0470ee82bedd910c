package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/period"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAssignmentAccessDenied = errors.New("access denied to this assignment")
	ErrInvalidStateTransition = errors.New("invalid assignment state transition")
	ErrAlreadyCompleted       = errors.New("assignment is already completed")
	ErrExerciseNotInWorkout   = errors.New("workout exercise does not belong to the assignment's workout")
	ErrLogNotFound            = errors.New("workout log not found")

	// ErrValidation wraps out-of-range or missing input values.
	ErrValidation = errors.New("validation error")
)

// LogSetInput carries one set to record against an assignment.
type LogSetInput struct {
	WorkoutExerciseID primitive.ObjectID
	SetNumber         int
	RepsCompleted     int
	WeightUsed        *float64
	RPE               *int
	Notes             string
}

// LogPatch is an explicit partial update for a stored log; nil fields are
// left untouched.
type LogPatch struct {
	RepsCompleted *int
	WeightUsed    *float64
	RPE           *int
	Notes         *string
}

// --- Service Interface ---

// AssignmentService owns the assignment status lifecycle
// (pending -> in_progress -> completed | skipped) and the derived
// program-period metrics.
type AssignmentService interface {
	Start(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error)
	LogSet(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID, input LogSetInput) (*domain.WorkoutLog, error)
	Complete(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error)
	Skip(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error)

	GetByID(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error)
	GetLogs(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) ([]domain.WorkoutLog, error)
	UpdateLog(ctx context.Context, actor domain.Actor, logID primitive.ObjectID, patch LogPatch) (*domain.WorkoutLog, error)
	DeleteLog(ctx context.Context, actor domain.Actor, logID primitive.ObjectID) error
	Delete(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) error

	// AdherencePercentage reports sessions logged against the program's
	// expected session count; nil when no expectation is set.
	AdherencePercentage(ctx context.Context, assignment *domain.WorkoutAssignment) (*float64, error)
}

// --- Service Implementation ---

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	workoutRepo    repository.WorkoutRepository
	logRepo        repository.WorkoutLogRepository
	now            func() time.Time
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	workoutRepo repository.WorkoutRepository,
	logRepo repository.WorkoutLogRepository,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		workoutRepo:    workoutRepo,
		logRepo:        logRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// getOwned fetches an assignment and verifies the actor may touch it: a
// client must be the assignee, a trainer must be the assigning trainer.
func (s *assignmentService) getOwned(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	switch actor.Role {
	case domain.RoleClient:
		if assignment.ClientID != actor.ID {
			return nil, ErrAssignmentAccessDenied
		}
	case domain.RoleTrainer:
		if assignment.TrainerID != actor.ID {
			return nil, ErrAssignmentAccessDenied
		}
	default:
		return nil, ErrAssignmentAccessDenied
	}
	return assignment, nil
}

// Start transitions a pending assignment to in_progress. Any other starting
// status is rejected.
func (s *assignmentService) Start(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	assignment, err := s.getOwned(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: cannot start assignment in status %q", ErrInvalidStateTransition, assignment.Status)
	}

	assignment.Status = domain.StatusInProgress
	if assignment.StartedAt == nil {
		now := s.now()
		assignment.StartedAt = &now
	}

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// LogSet records one completed set. Writing the same
// (workoutExercise, setNumber) twice overwrites the earlier row. Logging
// against a pending assignment promotes it to in_progress.
func (s *assignmentService) LogSet(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID, input LogSetInput) (*domain.WorkoutLog, error) {
	if err := validateLogInput(input.SetNumber, &input.RepsCompleted, input.WeightUsed, input.RPE); err != nil {
		return nil, err
	}

	assignment, err := s.getOwned(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot log sets on a %s assignment", ErrInvalidStateTransition, assignment.Status)
	}

	workout, err := s.workoutRepo.GetByID(ctx, assignment.WorkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	workoutExercise := workout.ExerciseByID(input.WorkoutExerciseID)
	if workoutExercise == nil {
		return nil, ErrExerciseNotInWorkout
	}

	log := &domain.WorkoutLog{
		AssignmentID:      assignment.ID,
		WorkoutExerciseID: workoutExercise.ID,
		ClientID:          assignment.ClientID,
		ExerciseID:        workoutExercise.ExerciseID,
		SetNumber:         input.SetNumber,
		RepsCompleted:     input.RepsCompleted,
		WeightUsed:        input.WeightUsed,
		RPE:               input.RPE,
		Notes:             input.Notes,
	}
	stored, err := s.logRepo.Upsert(ctx, log)
	if err != nil {
		return nil, err
	}

	// First logged set implicitly starts the workout.
	if assignment.Status == domain.StatusPending {
		assignment.Status = domain.StatusInProgress
		if assignment.StartedAt == nil {
			now := s.now()
			assignment.StartedAt = &now
		}
		if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
			return nil, err
		}
	}

	return stored, nil
}

// Complete marks the assignment completed and records the elapsed duration
// when the workout was started first.
func (s *assignmentService) Complete(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	assignment, err := s.getOwned(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status == domain.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	now := s.now()
	assignment.Status = domain.StatusCompleted
	assignment.CompletedAt = &now
	if assignment.StartedAt != nil {
		minutes := int(now.Sub(*assignment.StartedAt).Minutes())
		assignment.DurationMinutes = &minutes
	}

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Skip marks the assignment skipped. Skipping an already-skipped assignment
// is a no-op; a completed assignment cannot be reopened as skipped.
func (s *assignmentService) Skip(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	assignment, err := s.getOwned(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status == domain.StatusSkipped {
		return assignment, nil
	}
	if assignment.Status == domain.StatusCompleted {
		return nil, fmt.Errorf("%w: cannot skip a completed assignment", ErrInvalidStateTransition)
	}

	assignment.Status = domain.StatusSkipped
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// GetByID returns an assignment the actor is allowed to see.
func (s *assignmentService) GetByID(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	return s.getOwned(ctx, actor, assignmentID)
}

// GetLogs returns all logged sets of an assignment.
func (s *assignmentService) GetLogs(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	assignment, err := s.getOwned(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}
	return s.logRepo.GetByAssignmentID(ctx, assignment.ID)
}

// UpdateLog corrects reps/weight/RPE/notes of a stored set. Fields absent
// from the patch keep their stored values.
func (s *assignmentService) UpdateLog(ctx context.Context, actor domain.Actor, logID primitive.ObjectID, patch LogPatch) (*domain.WorkoutLog, error) {
	log, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	if _, err := s.getOwned(ctx, actor, log.AssignmentID); err != nil {
		return nil, err
	}

	if err := validateLogInput(log.SetNumber, patch.RepsCompleted, patch.WeightUsed, patch.RPE); err != nil {
		return nil, err
	}
	if patch.RepsCompleted != nil {
		log.RepsCompleted = *patch.RepsCompleted
	}
	if patch.WeightUsed != nil {
		log.WeightUsed = patch.WeightUsed
	}
	if patch.RPE != nil {
		log.RPE = patch.RPE
	}
	if patch.Notes != nil {
		log.Notes = *patch.Notes
	}

	if err := s.logRepo.Update(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// DeleteLog removes one stored set.
func (s *assignmentService) DeleteLog(ctx context.Context, actor domain.Actor, logID primitive.ObjectID) error {
	log, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}
	if _, err := s.getOwned(ctx, actor, log.AssignmentID); err != nil {
		return err
	}
	return s.logRepo.Delete(ctx, logID)
}

// Delete removes an assignment and cascades to its logs. Trainer only.
func (s *assignmentService) Delete(ctx context.Context, actor domain.Actor, assignmentID primitive.ObjectID) error {
	if !actor.IsTrainer() {
		return ErrAssignmentAccessDenied
	}
	assignment, err := s.getOwned(ctx, actor, assignmentID)
	if err != nil {
		return err
	}
	if err := s.logRepo.DeleteByAssignmentID(ctx, assignment.ID); err != nil {
		return err
	}
	return s.assignmentRepo.Delete(ctx, assignment.ID)
}

// AdherencePercentage reports how much of the program's expected session
// count the client has actually trained. A session counts as completed on
// every distinct calendar day with at least one logged set. Returns nil when
// the assignment carries no expectation, never dividing by zero.
func (s *assignmentService) AdherencePercentage(ctx context.Context, assignment *domain.WorkoutAssignment) (*float64, error) {
	if assignment.ExpectedSessions == nil || *assignment.ExpectedSessions == 0 {
		return nil, nil
	}

	logs, err := s.logRepo.GetByAssignmentID(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}
	days := make(map[time.Time]struct{})
	for _, log := range logs {
		days[period.StartOfDay(log.LoggedAt)] = struct{}{}
	}

	pct := period.Round1(float64(len(days)) / float64(*assignment.ExpectedSessions) * 100)
	return &pct, nil
}

// --- Derived program metrics ---

// CalculateProgramMetrics derives days-per-week, expected session count and
// the program end date from the assignment's effective scheduled days (its
// own override, else the workout's) and the workout's program duration.
// Leaves all derived fields nil when either input is absent.
func CalculateProgramMetrics(assignment *domain.WorkoutAssignment, workout *domain.Workout, startDate time.Time) {
	scheduledDays := assignment.ScheduledDays
	if scheduledDays == nil {
		scheduledDays = workout.ScheduledDays
	}
	if scheduledDays == nil || workout.ProgramDurationWeeks == nil || *workout.ProgramDurationWeeks <= 0 {
		return
	}

	daysPerWeek := countDistinctDayTokens(*scheduledDays)
	if daysPerWeek == 0 {
		return
	}

	expected := daysPerWeek * *workout.ProgramDurationWeeks
	start := period.StartOfDay(startDate)
	end := start.AddDate(0, 0, 7**workout.ProgramDurationWeeks)

	assignment.ScheduledDays = scheduledDays
	assignment.ExpectedSessions = &expected
	assignment.StartDate = &start
	assignment.EndDate = &end
}

// countDistinctDayTokens counts unique non-empty tokens in a comma-joined
// day list, so "mon,wed,mon" still means two training days.
func countDistinctDayTokens(scheduledDays string) int {
	seen := make(map[string]struct{})
	for _, token := range strings.Split(scheduledDays, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			seen[token] = struct{}{}
		}
	}
	return len(seen)
}

// TimeProgressPercentage reports how far into the program period the clock
// has advanced, in whole days, clamped to [0, 100]. Returns nil when the
// assignment has no program period.
func TimeProgressPercentage(assignment *domain.WorkoutAssignment, now time.Time) *float64 {
	if assignment.StartDate == nil || assignment.EndDate == nil {
		return nil
	}
	totalDays := period.WholeDays(*assignment.StartDate, *assignment.EndDate)
	if totalDays <= 0 {
		return nil
	}

	elapsed := period.WholeDays(*assignment.StartDate, now)
	pct := float64(elapsed) / float64(totalDays) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	pct = period.Round1(pct)
	return &pct
}

// validateLogInput checks the numeric ranges shared by LogSet and UpdateLog.
// Nil pointers mean "not provided" and are skipped.
func validateLogInput(setNumber int, reps *int, weight *float64, rpe *int) error {
	if setNumber < 1 {
		return fmt.Errorf("%w: set number must be >= 1", ErrValidation)
	}
	if reps != nil && *reps < 0 {
		return fmt.Errorf("%w: reps completed must be >= 0", ErrValidation)
	}
	if weight != nil && *weight < 0 {
		return fmt.Errorf("%w: weight used must be >= 0", ErrValidation)
	}
	if rpe != nil && (*rpe < 1 || *rpe > 10) {
		return fmt.Errorf("%w: rpe must be between 1 and 10", ErrValidation)
	}
	return nil
}
