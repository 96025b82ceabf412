// Package identity supplies the authenticated user and the attribute document
// that holds the user's persisted data.
package identity

import (
	"context"
	"strings"
)

// Type is the user's role on the platform.
type Type string

const (
	TypeUser  Type = "user"
	TypeAdmin Type = "admin"
)

// Valid reports whether t is a known role.
func (t Type) Valid() bool {
	return t == TypeUser || t == TypeAdmin
}

// Identity is the authenticated user. It is passed explicitly to whatever
// owns per-user state; there is no package-level current user.
type Identity struct {
	UserID    string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Type      Type   `json:"user_type"`
}

// IsAdmin reports whether the identity may see admin views.
func (i Identity) IsAdmin() bool {
	return i.Type == TypeAdmin
}

// DisplayName is the greeting name, falling back to "User".
func (i Identity) DisplayName() string {
	if n := strings.TrimSpace(i.FirstName); n != "" {
		return n
	}
	return "User"
}

// FullName joins first and last names.
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying ident.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok
}
