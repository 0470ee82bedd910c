package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutExercise is one prescribed exercise inside a workout template.
// OrderIndex is unique within the workout; sets and reps are validated to
// the 1-10 / 1-100 ranges when the workout is created or updated.
type WorkoutExercise struct {
	ID          primitive.ObjectID `bson:"id" json:"id"`
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	OrderIndex  int                `bson:"orderIndex" json:"orderIndex"`
	Sets        int                `bson:"sets" json:"sets"`
	Reps        int                `bson:"reps" json:"reps"`
	Weight      *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	RestSeconds int                `bson:"restSeconds" json:"restSeconds"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Workout is a reusable workout template owned by a trainer. The exercise
// list is embedded and kept sorted by OrderIndex, so reading a workout back
// returns the exercises in the order the trainer arranged them.
type Workout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`     // "strength" | "cardio" | "hybrid" | "flexibility"
	Difficulty  string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // "beginner" | "intermediate" | "advanced"

	// Prescribed session length in minutes; used as the duration fallback in
	// client analytics when an assignment was completed without being started.
	DurationMinutes *int `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`

	// Program scheduling metadata. ScheduledDays is a comma-joined list of
	// day tokens, e.g. "mon,wed,fri". Both are optional; program metrics on
	// assignments are only derived when both are present.
	ScheduledDays        *string `bson:"scheduledDays,omitempty" json:"scheduledDays,omitempty"`
	ProgramDurationWeeks *int    `bson:"programDurationWeeks,omitempty" json:"programDurationWeeks,omitempty"`

	Exercises []WorkoutExercise `bson:"exercises" json:"exercises"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseByID returns the embedded workout exercise with the given ID, or
// nil if the workout has no such entry.
func (w *Workout) ExerciseByID(id primitive.ObjectID) *WorkoutExercise {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i]
		}
	}
	return nil
}
