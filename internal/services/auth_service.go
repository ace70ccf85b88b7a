package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"scadenze/internal/auth"
	"scadenze/internal/core"
	"scadenze/internal/notify"
)

// AuthService drives the login, registration and session flows against the
// auth provider and keeps the application-side profile row in step via the
// reconciler.
//
// The welcome email is a named best-effort policy: a failed send is logged
// and swallowed, registration never fails because of it.
type AuthService struct {
	provider   auth.Provider
	profiles   ProfileStore
	reconciler *Reconciler
	notifier   notify.Sender
}

func NewAuthService(provider auth.Provider, profiles ProfileStore, bills BillStore, notifier notify.Sender) *AuthService {
	return &AuthService{
		provider:   provider,
		profiles:   profiles,
		reconciler: NewReconciler(profiles, bills),
		notifier:   notifier,
	}
}

// Register creates the auth-provider account and its profile row, then
// sends a best-effort welcome email.
func (s *AuthService) Register(ctx context.Context, email, password string) (*core.Profile, error) {
	sess, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	profile, err := s.reconciler.Resolve(ctx, sess.UserID, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("establish profile: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.SendEmail(ctx, notify.Message{
			Recipient: email,
			Kind:      notify.KindWelcome,
		}); err != nil {
			slog.ErrorContext(ctx, "Failed to send welcome email",
				"email", email, "error", err)
			// Don't fail registration - the profile is established
		}
	}

	return profile, nil
}

// Login signs the credentials in and returns the reconciled profile. A
// reconciliation failure aborts the login: the caller must not treat the
// user as signed in with an inconsistent identity.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.Profile, error) {
	sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	profile, err := s.reconciler.Resolve(ctx, sess.UserID, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	return profile, nil
}

// CurrentUser returns the reconciled profile for the active session, or
// (nil, nil) when nobody is signed in.
func (s *AuthService) CurrentUser(ctx context.Context) (*core.Profile, error) {
	sess, err := s.provider.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	profile, err := s.reconciler.Resolve(ctx, sess.UserID, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	return profile, nil
}

// Logout ends the provider session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// UpdateAvailableMoney sets the signed-in user's available balance.
func (s *AuthService) UpdateAvailableMoney(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	sess, err := s.provider.GetSession(ctx)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return fmt.Errorf("update available money: %w", core.ErrProfileNotFound)
	}

	if err := s.profiles.UpdateAvailableMoney(ctx, sess.UserID, amount); err != nil {
		return fmt.Errorf("update available money: %w", err)
	}
	return nil
}
