package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const assignmentCollectionName = "workout_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new assignment. The unique
// (workoutId, clientId, assignedDate) index surfaces duplicates as
// repository.ErrDuplicateKey.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error) {
	if assignment.WorkoutID == primitive.NilObjectID ||
		assignment.ClientID == primitive.NilObjectID ||
		assignment.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires workoutId, clientId and trainerId")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.StatusPending
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = now
	}

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

// GetByID retrieves an assignment by its ObjectID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	var assignment domain.WorkoutAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByClientID retrieves all assignments for a client, newest first.
func (r *mongoAssignmentRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutAssignment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedDate", Value: -1}})
	return r.find(ctx, bson.M{"clientId": clientID}, findOptions)
}

// ListByTrainerAssignedSince lists the trainer's assignments whose
// assignedDate falls at or after the given instant.
func (r *mongoAssignmentRepository) ListByTrainerAssignedSince(ctx context.Context, trainerID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error) {
	filter := bson.M{"trainerId": trainerID, "assignedDate": bson.M{"$gte": since}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "assignedDate", Value: 1}}))
}

// ListByTrainerCompletedSince lists the trainer's assignments completed at
// or after the given instant.
func (r *mongoAssignmentRepository) ListByTrainerCompletedSince(ctx context.Context, trainerID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error) {
	filter := bson.M{
		"trainerId":   trainerID,
		"status":      domain.StatusCompleted,
		"completedAt": bson.M{"$gte": since},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}}))
}

// ListByClientAssignedSince lists a client's assignments whose assignedDate
// falls at or after the given instant.
func (r *mongoAssignmentRepository) ListByClientAssignedSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error) {
	filter := bson.M{"clientId": clientID, "assignedDate": bson.M{"$gte": since}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "assignedDate", Value: 1}}))
}

// ListByClientCompletedSince lists a client's assignments completed at or
// after the given instant.
func (r *mongoAssignmentRepository) ListByClientCompletedSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutAssignment, error) {
	filter := bson.M{
		"clientId":    clientID,
		"status":      domain.StatusCompleted,
		"completedAt": bson.M{"$gte": since},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}}))
}

func (r *mongoAssignmentRepository) find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]domain.WorkoutAssignment, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.WorkoutAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, cursor.Err()
}

// Update persists the lifecycle fields of an assignment.
func (r *mongoAssignmentRepository) Update(ctx context.Context, assignment *domain.WorkoutAssignment) error {
	if assignment.ID == primitive.NilObjectID {
		return errors.New("assignment ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"status":           assignment.Status,
		"startedAt":        assignment.StartedAt,
		"completedAt":      assignment.CompletedAt,
		"durationMinutes":  assignment.DurationMinutes,
		"dueDate":          assignment.DueDate,
		"scheduledDays":    assignment.ScheduledDays,
		"startDate":        assignment.StartDate,
		"endDate":          assignment.EndDate,
		"expectedSessions": assignment.ExpectedSessions,
		"updatedAt":        time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": assignment.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single assignment.
func (r *mongoAssignmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByWorkoutID removes all assignments referencing a workout; used by
// the workout-deletion cascade.
func (r *mongoAssignmentRepository) DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	return err
}

// DeleteByClientID removes all assignments referencing a client; used by
// the client-deletion cascade.
func (r *mongoAssignmentRepository) DeleteByClientID(ctx context.Context, clientID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"clientId": clientID})
	return err
}

// EnsureAssignmentIndexes creates necessary indexes for the
// workout_assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One assignment per workout/client/date.
			Keys: bson.D{
				{Key: "workoutId", Value: 1},
				{Key: "clientId", Value: 1},
				{Key: "assignedDate", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "assignedDate", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "assignedDate", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
