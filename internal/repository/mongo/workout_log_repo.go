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

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository backed by MongoDB.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// Upsert writes a log row keyed by (assignmentId, workoutExerciseId,
// setNumber). An existing row for the key is overwritten in place, so
// re-logging a set never duplicates it. The atomicity of the check-then-write
// is delegated to Mongo's single-document upsert.
func (r *mongoWorkoutLogRepository) Upsert(ctx context.Context, log *domain.WorkoutLog) (*domain.WorkoutLog, error) {
	if log.AssignmentID == primitive.NilObjectID || log.WorkoutExerciseID == primitive.NilObjectID {
		return nil, errors.New("workout log requires assignmentId and workoutExerciseId")
	}

	filter := bson.M{
		"assignmentId":      log.AssignmentID,
		"workoutExerciseId": log.WorkoutExerciseID,
		"setNumber":         log.SetNumber,
	}
	update := bson.M{
		"$set": bson.M{
			"repsCompleted": log.RepsCompleted,
			"weightUsed":    log.WeightUsed,
			"rpe":           log.RPE,
			"notes":         log.Notes,
			"loggedAt":      time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"_id":               primitive.NewObjectID(),
			"assignmentId":      log.AssignmentID,
			"workoutExerciseId": log.WorkoutExerciseID,
			"clientId":          log.ClientID,
			"exerciseId":        log.ExerciseID,
			"setNumber":         log.SetNumber,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored domain.WorkoutLog
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicateKey
		}
		return nil, err
	}
	return &stored, nil
}

// GetByID retrieves a log by its ObjectID.
func (r *mongoWorkoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// GetByAssignmentID retrieves all logs of an assignment ordered by exercise
// and set number.
func (r *mongoWorkoutLogRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "workoutExerciseId", Value: 1},
		{Key: "setNumber", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"assignmentId": assignmentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.WorkoutLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, cursor.Err()
}

// ListByClientLoggedSince lists a client's logs recorded at or after the
// given instant, newest first.
func (r *mongoWorkoutLogRepository) ListByClientLoggedSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error) {
	filter := bson.M{"clientId": clientID, "loggedAt": bson.M{"$gte": since}}
	findOptions := options.Find().SetSort(bson.D{{Key: "loggedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.WorkoutLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, cursor.Err()
}

// Update corrects the mutable fields of an existing log.
func (r *mongoWorkoutLogRepository) Update(ctx context.Context, log *domain.WorkoutLog) error {
	if log.ID == primitive.NilObjectID {
		return errors.New("workout log ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"repsCompleted": log.RepsCompleted,
		"weightUsed":    log.WeightUsed,
		"rpe":           log.RPE,
		"notes":         log.Notes,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": log.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single log.
func (r *mongoWorkoutLogRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByAssignmentID removes all logs of an assignment; used by the
// assignment-deletion cascade.
func (r *mongoWorkoutLogRepository) DeleteByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"assignmentId": assignmentID})
	return err
}

// EnsureWorkoutLogIndexes creates necessary indexes for the workout_logs
// collection.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One row per set; re-logging overwrites.
			Keys: bson.D{
				{Key: "assignmentId", Value: 1},
				{Key: "workoutExerciseId", Value: 1},
				{Key: "setNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "loggedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
