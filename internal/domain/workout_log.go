package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLog records one completed set of one workout exercise within one
// assignment. The (AssignmentID, WorkoutExerciseID, SetNumber) tuple is
// unique; re-logging the same set overwrites the previous values.
// ClientID and ExerciseID are denormalized so analytics can query logs
// without joining through assignments and workouts.
type WorkoutLog struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID      primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	WorkoutExerciseID primitive.ObjectID `bson:"workoutExerciseId" json:"workoutExerciseId"`
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`
	ExerciseID        primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	SetNumber         int                `bson:"setNumber" json:"setNumber"`           // >= 1
	RepsCompleted     int                `bson:"repsCompleted" json:"repsCompleted"`   // >= 0
	WeightUsed        *float64           `bson:"weightUsed,omitempty" json:"weightUsed,omitempty"` // >= 0 when set
	RPE               *int               `bson:"rpe,omitempty" json:"rpe,omitempty"`   // 1-10 when set
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	LoggedAt          time.Time          `bson:"loggedAt" json:"loggedAt"`
}
