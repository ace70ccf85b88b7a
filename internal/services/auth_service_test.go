package services

import (
	"context"
	"errors"
	"testing"

	"scadenze/internal/auth"
	"scadenze/internal/core"
	"scadenze/internal/memory"
	"scadenze/internal/notify"
)

// recordingSender captures outgoing mail and optionally fails every send.
type recordingSender struct {
	sent []notify.Message
	fail bool
}

func (s *recordingSender) SendEmail(_ context.Context, msg notify.Message) error {
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newAuthFixture() (*AuthService, *auth.MemoryProvider, *memory.Store, *recordingSender) {
	provider := auth.NewMemoryProvider()
	store := memory.New()
	sender := &recordingSender{}
	return NewAuthService(provider, store, store, sender), provider, store, sender
}

func TestAuthService_Register(t *testing.T) {
	svc, _, store, sender := newAuthFixture()
	ctx := context.Background()

	profile, err := svc.Register(ctx, "mario@example.com", "segreto")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if profile.Email != "mario@example.com" {
		t.Errorf("profile email = %s", profile.Email)
	}
	if profile.IsPremium || !profile.AvailableMoney.IsZero() {
		t.Errorf("fresh profile = %+v, want premium=false money=0", profile)
	}

	rows, _ := store.ProfilesByEmail(ctx, "mario@example.com")
	if len(rows) != 1 {
		t.Fatalf("profile rows = %d, want 1", len(rows))
	}

	if len(sender.sent) != 1 || sender.sent[0].Kind != notify.KindWelcome {
		t.Errorf("welcome mail = %+v, want one KindWelcome message", sender.sent)
	}
	if sender.sent[0].Recipient != "mario@example.com" {
		t.Errorf("welcome recipient = %s", sender.sent[0].Recipient)
	}
}

func TestAuthService_RegisterSurvivesMailFailure(t *testing.T) {
	svc, _, _, sender := newAuthFixture()
	sender.fail = true

	profile, err := svc.Register(context.Background(), "mario@example.com", "segreto")
	if err != nil {
		t.Fatalf("Register() error = %v, want success despite dead mailer", err)
	}
	if profile == nil {
		t.Fatal("Register() returned nil profile")
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "mario@example.com", "segreto"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(ctx, "mario@example.com", "altro")
	if !errors.Is(err, auth.ErrEmailTaken) {
		t.Errorf("second Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestAuthService_LoginReconcilesLegacyProfile(t *testing.T) {
	svc, provider, store, _ := newAuthFixture()
	ctx := context.Background()

	// A profile row left behind under a pre-migration identity key.
	seedProfile(t, store, "legacy-7", "mario@example.com", true, "300")
	seedBills(t, store, "legacy-7", 2)
	provider.Seed("auth-7", "mario@example.com", "segreto")

	profile, err := svc.Login(ctx, "mario@example.com", "segreto")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if profile.ID != "auth-7" {
		t.Errorf("profile ID = %s, want auth-7", profile.ID)
	}
	if !profile.IsPremium || !profile.AvailableMoney.Equal(dec("300")) {
		t.Errorf("legacy data lost in merge: %+v", profile)
	}
	bills, _ := store.BillsByOwner(ctx, "auth-7")
	if len(bills) != 2 {
		t.Errorf("bills under auth-7 = %d, want 2", len(bills))
	}
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	svc, provider, _, _ := newAuthFixture()
	provider.Seed("auth-1", "mario@example.com", "segreto")

	_, err := svc.Login(context.Background(), "mario@example.com", "sbagliata")
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	// Signed out: no profile, no error.
	profile, err := svc.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if profile != nil {
		t.Errorf("CurrentUser() = %+v, want nil while signed out", profile)
	}

	if _, err := svc.Register(ctx, "mario@example.com", "segreto"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	profile, err = svc.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if profile == nil || profile.Email != "mario@example.com" {
		t.Errorf("CurrentUser() = %+v, want the registered profile", profile)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	profile, err = svc.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser() after logout error = %v", err)
	}
	if profile != nil {
		t.Errorf("CurrentUser() after logout = %+v, want nil", profile)
	}
}

func TestAuthService_UpdateAvailableMoney(t *testing.T) {
	svc, _, store, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "mario@example.com", "segreto"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.UpdateAvailableMoney(ctx, dec("1250.75")); err != nil {
		t.Fatalf("UpdateAvailableMoney() error = %v", err)
	}
	rows, _ := store.ProfilesByEmail(ctx, "mario@example.com")
	if len(rows) != 1 || !rows[0].AvailableMoney.Equal(dec("1250.75")) {
		t.Errorf("stored money = %+v, want 1250.75", rows)
	}

	if err := svc.UpdateAvailableMoney(ctx, dec("-1")); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want ErrInvalidAmount", err)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if err := svc.UpdateAvailableMoney(ctx, dec("10")); !errors.Is(err, core.ErrProfileNotFound) {
		t.Errorf("signed-out update error = %v, want ErrProfileNotFound", err)
	}
}
