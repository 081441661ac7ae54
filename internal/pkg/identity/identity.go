// Package identity wraps the external authentication provider that end users
// log in against. The reconciler only talks to the Provider interface so
// tests can inject a fake.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyExists is returned by Create when the provider reports a
	// conflicting email. Callers recover by re-fetching instead of failing.
	ErrAlreadyExists = errors.New("identity already exists for this email")
	// ErrAccountNotFound is returned when no identity exists for the email.
	ErrAccountNotFound = errors.New("no identity exists for this email")
)

// Identity is a record in the external authentication provider.
type Identity struct {
	Ref         string
	Email       string
	DisplayName string
}

// Provider is the set of identity-provider operations the core needs.
type Provider interface {
	// FindByEmail returns (nil, nil) when no identity exists; absence is not
	// an error.
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	// Create registers a new identity. ErrAlreadyExists signals a concurrent
	// creation for the same email.
	Create(ctx context.Context, email, secret, displayName string) (*Identity, error)
	// GenerateResetLink builds a password-reset URL. Must only be called once
	// the identity exists; ErrAccountNotFound otherwise.
	GenerateResetLink(ctx context.Context, email string) (string, error)
	// Delete removes an identity. Administrative only, outside the
	// reconciler's critical path.
	Delete(ctx context.Context, ref string) error
}
