package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AttributeStore reads and writes a user's attribute document.
// UpdateAttributes replaces each key in patch wholesale; keys absent from
// patch are left untouched.
type AttributeStore interface {
	LoadAttributes(ctx context.Context, userID string) (Attributes, error)
	UpdateAttributes(ctx context.Context, userID string, patch Attributes) error
}

// Credentials pairs an identity with its stored password hash.
type Credentials struct {
	Identity
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, c Credentials) error
	UserByEmail(ctx context.Context, email string) (*Credentials, error)
	UserByID(ctx context.Context, id string) (*Credentials, error)
	CountUsers(ctx context.Context) (int, error)
}
