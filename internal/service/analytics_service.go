package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/period"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Value objects ---

// DailyActivityPoint is one day bucket of completed workouts.
type DailyActivityPoint struct {
	Date      time.Time `json:"date"`
	Completed int       `json:"completed"`
}

// ClientAdherenceEntry is one client's adherence within the window.
type ClientAdherenceEntry struct {
	ClientID     primitive.ObjectID `json:"clientId"`
	Name         string             `json:"name"`
	AdherencePct float64            `json:"adherence"`
	Completed    int                `json:"workoutsCompleted"`
	Assigned     int                `json:"workoutsAssigned"`
}

// TrainerDashboard aggregates a trainer's activity for one window.
type TrainerDashboard struct {
	TotalClients      int                    `json:"totalClients"`
	ActiveClients     int                    `json:"activeClients"`
	AvgAdherence      float64                `json:"avgAdherence"`
	WorkoutsCompleted int                    `json:"workoutsCompleted"`
	DailyActivity     []DailyActivityPoint   `json:"dailyActivity"`
	ClientsAdherence  []ClientAdherenceEntry `json:"clientsAdherence"`
}

// WeeklyProgressPoint is one trailing-week bucket of completions.
type WeeklyProgressPoint struct {
	WeekStart time.Time `json:"weekStart"`
	Workouts  int       `json:"workouts"`
}

// ClientAnalytics aggregates one client's activity for one window.
type ClientAnalytics struct {
	ClientID               primitive.ObjectID    `json:"clientId"`
	Name                   string                `json:"name"`
	AdherencePct           float64               `json:"adherence"`
	TotalAssigned          int                   `json:"totalAssigned"`
	TotalCompleted         int                   `json:"totalCompleted"`
	AverageDurationMinutes int                   `json:"averageDurationMinutes"`
	WeeklyProgress         []WeeklyProgressPoint `json:"weeklyProgress"`
	LastActivity           *time.Time            `json:"lastActivity,omitempty"`
}

// ExerciseSession is one calendar day of logged sets for one exercise.
type ExerciseSession struct {
	Date      time.Time `json:"date"`
	AvgWeight float64   `json:"avgWeight"`
	MaxWeight float64   `json:"maxWeight"`
	TotalReps int       `json:"totalReps"`
}

// ExerciseProgress is the per-day session series of one exercise.
type ExerciseProgress struct {
	ExerciseID primitive.ObjectID `json:"exerciseId"`
	Name       string             `json:"name"`
	Sessions   []ExerciseSession  `json:"sessions"`
}

// --- Service Interface ---

// AnalyticsService computes read-only, time-windowed rollups over
// assignments and logs. Every call re-reads persisted state; nothing is
// cached. Clients without data degrade to zero-valued fields, never errors.
type AnalyticsService interface {
	TrainerDashboard(ctx context.Context, actor domain.Actor, token period.Token) (*TrainerDashboard, error)
	ClientAnalytics(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID, token period.Token) (*ClientAnalytics, error)
	ExerciseProgress(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID, token period.Token) ([]ExerciseProgress, error)
}

// --- Service Implementation ---

type analyticsService struct {
	clientRepo     repository.ClientRepository
	assignmentRepo repository.AssignmentRepository
	workoutRepo    repository.WorkoutRepository
	logRepo        repository.WorkoutLogRepository
	exerciseRepo   repository.ExerciseRepository
	now            func() time.Time
}

// NewAnalyticsService creates a new instance of analyticsService.
func NewAnalyticsService(
	clientRepo repository.ClientRepository,
	assignmentRepo repository.AssignmentRepository,
	workoutRepo repository.WorkoutRepository,
	logRepo repository.WorkoutLogRepository,
	exerciseRepo repository.ExerciseRepository,
) AnalyticsService {
	return &analyticsService{
		clientRepo:     clientRepo,
		assignmentRepo: assignmentRepo,
		workoutRepo:    workoutRepo,
		logRepo:        logRepo,
		exerciseRepo:   exerciseRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// TrainerDashboard computes the trainer's windowed rollup. Adherence counts
// work assigned in the window (by assignedDate), not work completed in the
// window; activity counts completions (by completedAt). The daily series is
// always the trailing 7 days regardless of the requested window.
func (s *analyticsService) TrainerDashboard(ctx context.Context, actor domain.Actor, token period.Token) (*TrainerDashboard, error) {
	if !actor.IsTrainer() {
		return nil, ErrTrainerAccessRequired
	}
	now := s.now()
	window := period.FromToken(token, now)

	clients, err := s.clientRepo.GetByTrainerID(ctx, actor.ID, true)
	if err != nil {
		return nil, err
	}

	assigned, err := s.assignmentRepo.ListByTrainerAssignedSince(ctx, actor.ID, window.Start)
	if err != nil {
		return nil, err
	}
	completed, err := s.assignmentRepo.ListByTrainerCompletedSince(ctx, actor.ID, window.Start)
	if err != nil {
		return nil, err
	}

	// Adherence numerator/denominator both keyed on assignedDate.
	totalInWindow := 0
	completedInWindow := 0
	perClientAssigned := make(map[primitive.ObjectID]int)
	perClientCompleted := make(map[primitive.ObjectID]int)
	for _, a := range assigned {
		totalInWindow++
		perClientAssigned[a.ClientID]++
		if a.Status == domain.StatusCompleted {
			completedInWindow++
			perClientCompleted[a.ClientID]++
		}
	}

	// Active clients and the daily series are keyed on completedAt.
	activeClients := make(map[primitive.ObjectID]struct{})
	buckets := period.DayBuckets(now, 7)
	daily := make([]DailyActivityPoint, len(buckets))
	for i, b := range buckets {
		daily[i] = DailyActivityPoint{Date: b.Start}
	}
	for _, a := range completed {
		if a.CompletedAt == nil {
			continue
		}
		activeClients[a.ClientID] = struct{}{}
		for i, b := range buckets {
			if b.Contains(*a.CompletedAt) {
				daily[i].Completed++
				break
			}
		}
	}

	adherence := make([]ClientAdherenceEntry, 0, len(clients))
	for _, c := range clients {
		entry := ClientAdherenceEntry{
			ClientID:  c.ID,
			Name:      c.Name,
			Completed: perClientCompleted[c.ID],
			Assigned:  perClientAssigned[c.ID],
		}
		entry.AdherencePct = period.Percentage(entry.Completed, entry.Assigned)
		adherence = append(adherence, entry)
	}
	// Lowest adherence first: the at-risk clients lead the list.
	sort.SliceStable(adherence, func(i, j int) bool {
		return adherence[i].AdherencePct < adherence[j].AdherencePct
	})

	return &TrainerDashboard{
		TotalClients:      len(clients),
		ActiveClients:     len(activeClients),
		AvgAdherence:      period.Percentage(completedInWindow, totalInWindow),
		WorkoutsCompleted: len(completed),
		DailyActivity:     daily,
		ClientsAdherence:  adherence,
	}, nil
}

// ClientAnalytics computes one client's windowed rollup.
func (s *analyticsService) ClientAnalytics(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID, token period.Token) (*ClientAnalytics, error) {
	client, err := s.authorizedClient(ctx, actor, clientID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	window := period.FromToken(token, now)

	assigned, err := s.assignmentRepo.ListByClientAssignedSince(ctx, clientID, window.Start)
	if err != nil {
		return nil, err
	}
	totalCompleted := 0
	for _, a := range assigned {
		if a.Status == domain.StatusCompleted {
			totalCompleted++
		}
	}

	// Weekly progress buckets on completedAt over the trailing 4 weeks,
	// independent of the adherence window.
	completions, err := s.assignmentRepo.ListByClientCompletedSince(ctx, clientID, now.AddDate(0, 0, -28))
	if err != nil {
		return nil, err
	}
	weekBuckets := period.WeekBuckets(now, 4)
	weekly := make([]WeeklyProgressPoint, len(weekBuckets))
	for i, b := range weekBuckets {
		weekly[i] = WeeklyProgressPoint{WeekStart: b.Start}
	}
	for _, a := range completions {
		if a.CompletedAt == nil {
			continue
		}
		for i, b := range weekBuckets {
			if b.Contains(*a.CompletedAt) {
				weekly[i].Workouts++
				break
			}
		}
	}

	avgDuration, err := s.averageDurationMinutes(ctx, assigned)
	if err != nil {
		return nil, err
	}

	var lastActivity *time.Time
	logs, err := s.logRepo.ListByClientLoggedSince(ctx, clientID, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(logs) > 0 {
		// ListByClientLoggedSince returns newest first.
		lastActivity = &logs[0].LoggedAt
	}

	return &ClientAnalytics{
		ClientID:               client.ID,
		Name:                   client.Name,
		AdherencePct:           period.Percentage(totalCompleted, len(assigned)),
		TotalAssigned:          len(assigned),
		TotalCompleted:         totalCompleted,
		AverageDurationMinutes: avgDuration,
		WeeklyProgress:         weekly,
		LastActivity:           lastActivity,
	}, nil
}

// averageDurationMinutes averages the tracked duration of completed
// assignments. Assignments completed without being started fall back to the
// workout's prescribed duration; assignments with neither are excluded.
func (s *analyticsService) averageDurationMinutes(ctx context.Context, assignments []domain.WorkoutAssignment) (int, error) {
	sum, count := 0, 0
	prescribed := make(map[primitive.ObjectID]*int)
	for _, a := range assignments {
		if a.Status != domain.StatusCompleted {
			continue
		}
		if a.DurationMinutes != nil {
			sum += *a.DurationMinutes
			count++
			continue
		}
		minutes, ok := prescribed[a.WorkoutID]
		if !ok {
			workout, err := s.workoutRepo.GetByID(ctx, a.WorkoutID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					prescribed[a.WorkoutID] = nil
					continue
				}
				return 0, err
			}
			minutes = workout.DurationMinutes
			prescribed[a.WorkoutID] = minutes
		}
		if minutes != nil {
			sum += *minutes
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

// ExerciseProgress builds, for every exercise the client logged inside the
// window, a per-calendar-day session series ordered most recent day first.
func (s *analyticsService) ExerciseProgress(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID, token period.Token) ([]ExerciseProgress, error) {
	if _, err := s.authorizedClient(ctx, actor, clientID); err != nil {
		return nil, err
	}
	now := s.now()
	window := period.FromToken(token, now)

	logs, err := s.logRepo.ListByClientLoggedSince(ctx, clientID, window.Start)
	if err != nil {
		return nil, err
	}

	type daySums struct {
		weightSum   float64
		weightCount int
		maxWeight   float64
		totalReps   int
	}
	type exerciseAgg struct {
		days     map[time.Time]*daySums
		dayOrder []time.Time
	}

	byExercise := make(map[primitive.ObjectID]*exerciseAgg)
	exerciseOrder := make([]primitive.ObjectID, 0)
	for _, log := range logs {
		agg, ok := byExercise[log.ExerciseID]
		if !ok {
			agg = &exerciseAgg{days: make(map[time.Time]*daySums)}
			byExercise[log.ExerciseID] = agg
			exerciseOrder = append(exerciseOrder, log.ExerciseID)
		}
		day := period.StartOfDay(log.LoggedAt)
		sums, ok := agg.days[day]
		if !ok {
			sums = &daySums{}
			agg.days[day] = sums
			// Logs arrive newest first, so days are discovered most
			// recent first.
			agg.dayOrder = append(agg.dayOrder, day)
		}
		sums.totalReps += log.RepsCompleted
		if log.WeightUsed != nil {
			sums.weightSum += *log.WeightUsed
			sums.weightCount++
			if *log.WeightUsed > sums.maxWeight {
				sums.maxWeight = *log.WeightUsed
			}
		}
	}

	result := make([]ExerciseProgress, 0, len(exerciseOrder))
	for _, exerciseID := range exerciseOrder {
		agg := byExercise[exerciseID]
		progress := ExerciseProgress{ExerciseID: exerciseID}
		if exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID); err == nil {
			progress.Name = exercise.Name
		}
		for _, day := range agg.dayOrder {
			sums := agg.days[day]
			session := ExerciseSession{
				Date:      day,
				MaxWeight: sums.maxWeight,
				TotalReps: sums.totalReps,
			}
			if sums.weightCount > 0 {
				session.AvgWeight = period.Round1(sums.weightSum / float64(sums.weightCount))
			}
			progress.Sessions = append(progress.Sessions, session)
		}
		result = append(result, progress)
	}
	return result, nil
}

// authorizedClient loads a client and checks the actor may read their data:
// the owning trainer, or the client themselves.
func (s *analyticsService) authorizedClient(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	switch actor.Role {
	case domain.RoleTrainer:
		if client.TrainerID != actor.ID {
			return nil, ErrClientNotManaged
		}
	case domain.RoleClient:
		if client.ID != actor.ID {
			return nil, ErrClientNotManaged
		}
	default:
		return nil, ErrClientNotManaged
	}
	return client, nil
}
