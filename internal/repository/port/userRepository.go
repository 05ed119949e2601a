package port

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when no user exists for the given id.
var ErrUserNotFound = errors.New("user: not found")

// User is the projection of an account needed by messaging and booking
// flows: enough to render notification text and chat-list entries. Account
// lifecycle (signup, profile editing) lives outside this service.
type User struct {
	ID           string
	Name         string
	Email        string
	ProfileImage string
}

// UserRepository reads user records from the shared document store.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (User, error)
}
