package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for assignment lifecycle
type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress" // Client started or logged a set
	StatusCompleted  AssignmentStatus = "completed"   // Terminal
	StatusSkipped    AssignmentStatus = "skipped"     // Terminal
)

// WorkoutAssignment binds a Workout to one Client for one scheduled date,
// as assigned by a Trainer. At most one assignment exists per
// (workout, client, assignedDate) tuple.
type WorkoutAssignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID   primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Denormalized for easier queries/auth
	AssignedAt  time.Time          `bson:"assignedDate" json:"assignedDate"`
	DueDate     *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Status      AssignmentStatus   `bson:"status" json:"status"`
	StartedAt   *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	// Elapsed workout time in whole minutes, recorded on completion when the
	// assignment was started first.
	DurationMinutes *int `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`

	// Program-period fields. ScheduledDays overrides the workout's own value
	// when set. StartDate/EndDate/ExpectedSessions are derived by the
	// lifecycle engine and stay nil when scheduling metadata is absent.
	ScheduledDays    *string    `bson:"scheduledDays,omitempty" json:"scheduledDays,omitempty"`
	StartDate        *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate          *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	ExpectedSessions *int       `bson:"expectedSessions,omitempty" json:"expectedSessions,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the assignment reached a final status.
func (a *WorkoutAssignment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusSkipped
}
