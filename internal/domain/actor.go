package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role type to distinguish between caller roles
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// Actor is the authenticated caller, threaded explicitly into every service
// call instead of being read from ambient request state.
type Actor struct {
	ID   primitive.ObjectID
	Role Role
}

func (a Actor) IsTrainer() bool {
	return a.Role == RoleTrainer
}

func (a Actor) IsClient() bool {
	return a.Role == RoleClient
}
