package service

import (
	"context"
	"sort"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They store value copies so a caller mutating
// a returned struct cannot bypass Update, and they enforce the same unique
// keys the Mongo indexes do.

type fakeTrainerRepo struct {
	trainers map[primitive.ObjectID]domain.Trainer
}

func newFakeTrainerRepo() *fakeTrainerRepo {
	return &fakeTrainerRepo{trainers: make(map[primitive.ObjectID]domain.Trainer)}
}

func (f *fakeTrainerRepo) Create(_ context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	for _, t := range f.trainers {
		if t.Email == trainer.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	id := primitive.NewObjectID()
	stored := *trainer
	stored.ID = id
	f.trainers[id] = stored
	return id, nil
}

func (f *fakeTrainerRepo) GetByEmail(_ context.Context, email string) (*domain.Trainer, error) {
	for _, t := range f.trainers {
		if t.Email == email {
			copy := t
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTrainerRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	t, ok := f.trainers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := t
	return &copy, nil
}

type fakeClientRepo struct {
	clients map[primitive.ObjectID]domain.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[primitive.ObjectID]domain.Client)}
}

func (f *fakeClientRepo) Create(_ context.Context, client *domain.Client) (primitive.ObjectID, error) {
	for _, c := range f.clients {
		if c.TrainerID == client.TrainerID && c.Email == client.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	id := primitive.NewObjectID()
	stored := *client
	stored.ID = id
	f.clients[id] = stored
	return id, nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := c
	return &copy, nil
}

func (f *fakeClientRepo) GetByEmail(_ context.Context, email string) (*domain.Client, error) {
	for _, c := range f.clients {
		if c.Email == email {
			copy := c
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClientRepo) GetByInviteToken(_ context.Context, token string) (*domain.Client, error) {
	for _, c := range f.clients {
		if c.InviteToken != nil && *c.InviteToken == token {
			copy := c
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClientRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID, activeOnly bool) ([]domain.Client, error) {
	var result []domain.Client
	for _, c := range f.clients {
		if c.TrainerID != trainerID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeClientRepo) Update(_ context.Context, client *domain.Client) error {
	if _, ok := f.clients[client.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, c := range f.clients {
		if id != client.ID && c.TrainerID == client.TrainerID && c.Email == client.Email {
			return repository.ErrDuplicateKey
		}
	}
	f.clients[client.ID] = *client
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	c, ok := f.clients[id]
	if !ok || c.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

type fakeExerciseRepo struct {
	exercises map[primitive.ObjectID]domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

func (f *fakeExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *exercise
	stored.ID = id
	f.exercises[id] = stored
	return id, nil
}

func (f *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := f.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := e
	return &copy, nil
}

func (f *fakeExerciseRepo) GetVisibleToTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error) {
	var result []domain.Exercise
	for _, e := range f.exercises {
		if !e.IsCustom || (e.TrainerID != nil && *e.TrainerID == trainerID) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	if _, ok := f.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	f.exercises[exercise.ID] = *exercise
	return nil
}

func (f *fakeExerciseRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	e, ok := f.exercises[id]
	if !ok || e.TrainerID == nil || *e.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(f.exercises, id)
	return nil
}

type fakeWorkoutRepo struct {
	workouts map[primitive.ObjectID]domain.Workout
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]domain.Workout)}
}

func (f *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *workout
	stored.ID = id
	f.workouts[id] = stored
	return id, nil
}

func (f *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := f.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := w
	return &copy, nil
}

func (f *fakeWorkoutRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error) {
	var result []domain.Workout
	for _, w := range f.workouts {
		if w.TrainerID == trainerID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeWorkoutRepo) Update(_ context.Context, workout *domain.Workout) error {
	if _, ok := f.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	f.workouts[workout.ID] = *workout
	return nil
}

func (f *fakeWorkoutRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	w, ok := f.workouts[id]
	if !ok || w.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(f.workouts, id)
	return nil
}

type fakeAssignmentRepo struct {
	assignments map[primitive.ObjectID]domain.WorkoutAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[primitive.ObjectID]domain.WorkoutAssignment)}
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error) {
	for _, a := range f.assignments {
		if a.WorkoutID == assignment.WorkoutID && a.ClientID == assignment.ClientID && a.AssignedAt.Equal(assignment.AssignedAt) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	id := primitive.NewObjectID()
	stored := *assignment
	stored.ID = id
	f.assignments[id] = stored
	return id, nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := a
	return &copy, nil
}

func (f *fakeAssignmentRepo) GetByClientID(_ context.Context, clientID primitive.ObjectID) ([]domain.WorkoutAssignment, error) {
	result := f.filter(func(a domain.WorkoutAssignment) bool { return a.ClientID == clientID })
	sort.Slice(result, func(i, j int) bool { return result[i].AssignedAt.After(result[j].AssignedAt) })
	return result, nil
}

func (f *fakeAssignmentRepo) ListByTrainerAssignedSince(_ context.Context, trainerID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error) {
	return f.filter(func(a domain.WorkoutAssignment) bool {
		return a.TrainerID == trainerID && !a.AssignedAt.Before(since)
	}), nil
}

func (f *fakeAssignmentRepo) ListByTrainerCompletedSince(_ context.Context, trainerID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error) {
	return f.filter(func(a domain.WorkoutAssignment) bool {
		return a.TrainerID == trainerID && a.CompletedAt != nil && !a.CompletedAt.Before(since)
	}), nil
}

func (f *fakeAssignmentRepo) ListByClientAssignedSince(_ context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error) {
	return f.filter(func(a domain.WorkoutAssignment) bool {
		return a.ClientID == clientID && !a.AssignedAt.Before(since)
	}), nil
}

func (f *fakeAssignmentRepo) ListByClientCompletedSince(_ context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error) {
	return f.filter(func(a domain.WorkoutAssignment) bool {
		return a.ClientID == clientID && a.CompletedAt != nil && !a.CompletedAt.Before(since)
	}), nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, assignment *domain.WorkoutAssignment) error {
	if _, ok := f.assignments[assignment.ID]; !ok {
		return repository.ErrNotFound
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.assignments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.assignments, id)
	return nil
}

func (f *fakeAssignmentRepo) DeleteByWorkoutID(_ context.Context, workoutID primitive.ObjectID) error {
	for id, a := range f.assignments {
		if a.WorkoutID == workoutID {
			delete(f.assignments, id)
		}
	}
	return nil
}

func (f *fakeAssignmentRepo) DeleteByClientID(_ context.Context, clientID primitive.ObjectID) error {
	for id, a := range f.assignments {
		if a.ClientID == clientID {
			delete(f.assignments, id)
		}
	}
	return nil
}

func (f *fakeAssignmentRepo) filter(keep func(domain.WorkoutAssignment) bool) []domain.WorkoutAssignment {
	var result []domain.WorkoutAssignment
	for _, a := range f.assignments {
		if keep(a) {
			result = append(result, a)
		}
	}
	return result
}

type fakeWorkoutLogRepo struct {
	logs map[primitive.ObjectID]domain.WorkoutLog
	now  func() time.Time
}

func newFakeWorkoutLogRepo() *fakeWorkoutLogRepo {
	return &fakeWorkoutLogRepo{
		logs: make(map[primitive.ObjectID]domain.WorkoutLog),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (f *fakeWorkoutLogRepo) Upsert(_ context.Context, log *domain.WorkoutLog) (*domain.WorkoutLog, error) {
	for id, existing := range f.logs {
		if existing.AssignmentID == log.AssignmentID &&
			existing.WorkoutExerciseID == log.WorkoutExerciseID &&
			existing.SetNumber == log.SetNumber {
			existing.RepsCompleted = log.RepsCompleted
			existing.WeightUsed = log.WeightUsed
			existing.RPE = log.RPE
			existing.Notes = log.Notes
			existing.LoggedAt = f.now()
			f.logs[id] = existing
			copy := existing
			return &copy, nil
		}
	}
	stored := *log
	stored.ID = primitive.NewObjectID()
	stored.LoggedAt = f.now()
	f.logs[stored.ID] = stored
	copy := stored
	return &copy, nil
}

func (f *fakeWorkoutLogRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	l, ok := f.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := l
	return &copy, nil
}

func (f *fakeWorkoutLogRepo) GetByAssignmentID(_ context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	var result []domain.WorkoutLog
	for _, l := range f.logs {
		if l.AssignmentID == assignmentID {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].WorkoutExerciseID != result[j].WorkoutExerciseID {
			return result[i].WorkoutExerciseID.Hex() < result[j].WorkoutExerciseID.Hex()
		}
		return result[i].SetNumber < result[j].SetNumber
	})
	return result, nil
}

func (f *fakeWorkoutLogRepo) ListByClientLoggedSince(_ context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error) {
	var result []domain.WorkoutLog
	for _, l := range f.logs {
		if l.ClientID == clientID && !l.LoggedAt.Before(since) {
			result = append(result, l)
		}
	}
	// Newest first, matching the Mongo repository's sort.
	sort.Slice(result, func(i, j int) bool { return result[i].LoggedAt.After(result[j].LoggedAt) })
	return result, nil
}

func (f *fakeWorkoutLogRepo) Update(_ context.Context, log *domain.WorkoutLog) error {
	if _, ok := f.logs[log.ID]; !ok {
		return repository.ErrNotFound
	}
	f.logs[log.ID] = *log
	return nil
}

func (f *fakeWorkoutLogRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.logs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.logs, id)
	return nil
}

func (f *fakeWorkoutLogRepo) DeleteByAssignmentID(_ context.Context, assignmentID primitive.ObjectID) error {
	for id, l := range f.logs {
		if l.AssignmentID == assignmentID {
			delete(f.logs, id)
		}
	}
	return nil
}
