// Package auth defines the opaque authentication collaborator. The
// provider owns credentials, sessions, and the persistent user identity;
// the application only consumes the resulting session.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user already exists")
)

// Session is an authenticated identity as reported by the provider.
// UserID is the persistent identity key; profiles key off it.
type Session struct {
	UserID string
	Email  string
}

// Provider is the external auth service surface the application depends
// on. GetSession returns (nil, nil) when nobody is signed in.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	GetSession(ctx context.Context) (*Session, error)
	SignOut(ctx context.Context) error
}
