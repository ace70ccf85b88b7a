package auth

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryProvider_SignUpAndSignIn(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	sess, err := p.SignUp(ctx, "a@b.com", "secret")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if sess.UserID == "" {
		t.Error("SignUp() should assign a user id")
	}
	if sess.Email != "a@b.com" {
		t.Errorf("SignUp() Email = %v, want a@b.com", sess.Email)
	}

	if _, err := p.SignUp(ctx, "a@b.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("second SignUp() error = %v, want ErrEmailTaken", err)
	}

	again, err := p.SignInWithPassword(ctx, "a@b.com", "secret")
	if err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}
	if again.UserID != sess.UserID {
		t.Errorf("sign-in user id = %v, want %v", again.UserID, sess.UserID)
	}

	if _, err := p.SignInWithPassword(ctx, "a@b.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := p.SignInWithPassword(ctx, "missing@b.com", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestMemoryProvider_SessionLifecycle(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	sess, err := p.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if sess != nil {
		t.Errorf("GetSession() before sign-in = %+v, want nil", sess)
	}

	p.Seed("fixed-1", "seeded@b.com", "pw")
	signedIn, err := p.SignInWithPassword(ctx, "seeded@b.com", "pw")
	if err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}
	if signedIn.UserID != "fixed-1" {
		t.Errorf("seeded user id = %v, want fixed-1", signedIn.UserID)
	}

	sess, err = p.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if sess == nil || sess.UserID != "fixed-1" {
		t.Errorf("GetSession() = %+v, want session for fixed-1", sess)
	}

	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	sess, err = p.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if sess != nil {
		t.Errorf("GetSession() after sign-out = %+v, want nil", sess)
	}
}
