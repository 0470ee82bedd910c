package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a person coached by exactly one trainer. Clients may be created
// via an invite token with no credentials yet; they set a password when they
// accept the invite. Archiving a client flips IsActive instead of deleting
// the row, so history stays queryable.
type Client struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Email        string             `bson:"email" json:"email"` // Unique per trainer
	Name         string             `bson:"name" json:"name"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"` // Empty until the invite is accepted
	AvatarURL    string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	InviteToken  *string            `bson:"inviteToken,omitempty" json:"-"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
