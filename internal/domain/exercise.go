package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a single entry in the exercise library. Catalog exercises
// (synced from ExerciseDB) have no owner; custom exercises are created by
// a trainer and only visible to that trainer.
// Invariant: IsCustom is true exactly when TrainerID is non-nil.
type Exercise struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name"`
	BodyPart  string              `bson:"bodyPart,omitempty" json:"bodyPart,omitempty"`   // e.g., "chest", "upper legs"
	Equipment string              `bson:"equipment,omitempty" json:"equipment,omitempty"` // e.g., "barbell", "body weight"
	Target    string              `bson:"target,omitempty" json:"target,omitempty"`       // Primary muscle, e.g., "pectorals"
	GifURL    string              `bson:"gifUrl,omitempty" json:"gifUrl,omitempty"`
	IsCustom  bool                `bson:"isCustom" json:"isCustom"`
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
