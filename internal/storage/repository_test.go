package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"scadenze/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "scadenze.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testBill(id, name, amount string, due core.Date) core.Bill {
	now := time.Now().UTC()
	return core.Bill{
		ID:              id,
		Name:            name,
		Amount:          decimal.RequireFromString(amount),
		DueDate:         due,
		Frequency:       core.FreqNone,
		ReminderEnabled: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSQLiteRepository_ProfileLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ProfileByID(ctx, "missing")
	if !errors.Is(err, core.ErrProfileNotFound) {
		t.Fatalf("ProfileByID(missing) error = %v, want ErrProfileNotFound", err)
	}

	created, err := repo.CreateProfile(ctx, core.Profile{
		ID:             "auth-1",
		Email:          "a@b.com",
		AvailableMoney: decimal.RequireFromString("42.50"),
	})
	if err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if created.ID != "auth-1" || created.Email != "a@b.com" {
		t.Errorf("CreateProfile() = %+v, want id auth-1 email a@b.com", created)
	}
	if !created.AvailableMoney.Equal(decimal.RequireFromString("42.50")) {
		t.Errorf("CreateProfile() AvailableMoney = %v, want 42.50", created.AvailableMoney)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreateProfile() should set created_at")
	}

	got, err := repo.ProfileByID(ctx, "auth-1")
	if err != nil {
		t.Fatalf("ProfileByID() error = %v", err)
	}
	if got.Email != "a@b.com" {
		t.Errorf("ProfileByID() Email = %v, want a@b.com", got.Email)
	}

	byEmail, err := repo.ProfilesByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("ProfilesByEmail() error = %v", err)
	}
	if len(byEmail) != 1 || byEmail[0].ID != "auth-1" {
		t.Errorf("ProfilesByEmail() = %+v, want one row keyed auth-1", byEmail)
	}

	if err := repo.UpdateAvailableMoney(ctx, "auth-1", decimal.RequireFromString("100")); err != nil {
		t.Fatalf("UpdateAvailableMoney() error = %v", err)
	}
	got, err = repo.ProfileByID(ctx, "auth-1")
	if err != nil {
		t.Fatalf("ProfileByID() after update error = %v", err)
	}
	if !got.AvailableMoney.Equal(decimal.RequireFromString("100")) {
		t.Errorf("AvailableMoney after update = %v, want 100", got.AvailableMoney)
	}

	err = repo.UpdateAvailableMoney(ctx, "missing", decimal.Zero)
	if !errors.Is(err, core.ErrProfileNotFound) {
		t.Errorf("UpdateAvailableMoney(missing) error = %v, want ErrProfileNotFound", err)
	}
}

func TestSQLiteRepository_UpsertProfileByEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("insert when email is new", func(t *testing.T) {
		p, err := repo.UpsertProfileByEmail(ctx, core.Profile{
			ID:             "auth-1",
			Email:          "fresh@b.com",
			AvailableMoney: decimal.Zero,
		})
		if err != nil {
			t.Fatalf("UpsertProfileByEmail() error = %v", err)
		}
		if p.ID != "auth-1" {
			t.Errorf("upserted ID = %v, want auth-1", p.ID)
		}
	})

	t.Run("re-keys the existing row in place", func(t *testing.T) {
		if _, err := repo.CreateProfile(ctx, core.Profile{
			ID:             "old-1",
			Email:          "shared@b.com",
			IsPremium:      true,
			AvailableMoney: decimal.RequireFromString("42.00"),
		}); err != nil {
			t.Fatalf("CreateProfile() error = %v", err)
		}

		p, err := repo.UpsertProfileByEmail(ctx, core.Profile{
			ID:             "auth-999",
			Email:          "shared@b.com",
			IsPremium:      true,
			AvailableMoney: decimal.RequireFromString("42.00"),
		})
		if err != nil {
			t.Fatalf("UpsertProfileByEmail() error = %v", err)
		}
		if p.ID != "auth-999" {
			t.Errorf("upserted ID = %v, want auth-999", p.ID)
		}

		// Exactly one row remains for the email, keyed by the new id.
		rows, err := repo.ProfilesByEmail(ctx, "shared@b.com")
		if err != nil {
			t.Fatalf("ProfilesByEmail() error = %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("ProfilesByEmail() returned %d rows, want 1", len(rows))
		}
		if rows[0].ID != "auth-999" {
			t.Errorf("surviving row ID = %v, want auth-999", rows[0].ID)
		}
		if _, err := repo.ProfileByID(ctx, "old-1"); !errors.Is(err, core.ErrProfileNotFound) {
			t.Errorf("old id lookup error = %v, want ErrProfileNotFound", err)
		}
	})
}

func TestSQLiteRepository_BillCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	due := core.NewDate(2026, 9, 15)
	created, err := repo.CreateBill(ctx, "auth-1", testBill("b-1", "Rent", "850.00", due))
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if created.Name != "Rent" || created.DueDate.Key() != "2026-09-15" {
		t.Errorf("CreateBill() = %+v, want Rent due 2026-09-15", created)
	}

	if _, err := repo.CreateBill(ctx, "auth-1", testBill("b-2", "Power", "60.00", core.NewDate(2026, 9, 1))); err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}

	bills, err := repo.BillsByOwner(ctx, "auth-1")
	if err != nil {
		t.Fatalf("BillsByOwner() error = %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("BillsByOwner() returned %d bills, want 2", len(bills))
	}
	if bills[0].ID != "b-2" || bills[1].ID != "b-1" {
		t.Errorf("bills not sorted by due date: got %s, %s", bills[0].ID, bills[1].ID)
	}

	newAmount := decimal.RequireFromString("875.00")
	updated, err := repo.UpdateBill(ctx, "auth-1", "b-1", core.BillPatch{Amount: &newAmount})
	if err != nil {
		t.Fatalf("UpdateBill() error = %v", err)
	}
	if !updated.Amount.Equal(newAmount) {
		t.Errorf("updated Amount = %v, want 875.00", updated.Amount)
	}
	if updated.Name != "Rent" {
		t.Errorf("patch must leave untouched fields alone, Name = %v", updated.Name)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("UpdateBill() should refresh updated_at")
	}

	if _, err := repo.UpdateBill(ctx, "auth-1", "missing", core.BillPatch{}); !errors.Is(err, core.ErrBillNotFound) {
		t.Errorf("UpdateBill(missing) error = %v, want ErrBillNotFound", err)
	}
	if _, err := repo.UpdateBill(ctx, "other-owner", "b-1", core.BillPatch{}); !errors.Is(err, core.ErrBillNotFound) {
		t.Errorf("UpdateBill with wrong owner error = %v, want ErrBillNotFound", err)
	}

	if err := repo.DeleteBill(ctx, "auth-1", "b-2"); err != nil {
		t.Fatalf("DeleteBill() error = %v", err)
	}
	if err := repo.DeleteBill(ctx, "auth-1", "b-2"); !errors.Is(err, core.ErrBillNotFound) {
		t.Errorf("second DeleteBill() error = %v, want ErrBillNotFound", err)
	}

	if err := repo.DeleteAllBills(ctx, "auth-1"); err != nil {
		t.Fatalf("DeleteAllBills() error = %v", err)
	}
	bills, err = repo.BillsByOwner(ctx, "auth-1")
	if err != nil {
		t.Fatalf("BillsByOwner() error = %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("BillsByOwner() after clear returned %d bills, want 0", len(bills))
	}
}

func TestSQLiteRepository_ReassignBills(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, id := range []string{"b-1", "b-2", "b-3"} {
		if _, err := repo.CreateBill(ctx, "old-1", testBill(id, "Bill", "10.00", core.NewDate(2026, 9, 1+i))); err != nil {
			t.Fatalf("CreateBill() error = %v", err)
		}
	}

	moved, err := repo.ReassignBills(ctx, "old-1", "auth-999")
	if err != nil {
		t.Fatalf("ReassignBills() error = %v", err)
	}
	if moved != 3 {
		t.Errorf("ReassignBills() moved = %d, want 3", moved)
	}

	old, err := repo.BillsByOwner(ctx, "old-1")
	if err != nil {
		t.Fatalf("BillsByOwner(old) error = %v", err)
	}
	if len(old) != 0 {
		t.Errorf("old owner still has %d bills, want 0", len(old))
	}

	now, err := repo.BillsByOwner(ctx, "auth-999")
	if err != nil {
		t.Fatalf("BillsByOwner(new) error = %v", err)
	}
	if len(now) != 3 {
		t.Errorf("new owner has %d bills, want 3", len(now))
	}

	moved, err = repo.ReassignBills(ctx, "old-1", "auth-999")
	if err != nil {
		t.Fatalf("second ReassignBills() error = %v", err)
	}
	if moved != 0 {
		t.Errorf("second ReassignBills() moved = %d, want 0", moved)
	}
}

func TestSQLiteRepository_ReminderBills(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateProfile(ctx, core.Profile{
		ID:             "auth-1",
		Email:          "a@b.com",
		AvailableMoney: decimal.Zero,
	}); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}

	withReminder := testBill("b-1", "Rent", "850.00", core.NewDate(2026, 9, 15))
	withReminder.ReminderEnabled = true
	withReminder.Frequency = core.FreqThreeDays
	if _, err := repo.CreateBill(ctx, "auth-1", withReminder); err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if _, err := repo.CreateBill(ctx, "auth-1", testBill("b-2", "Power", "60.00", core.NewDate(2026, 9, 1))); err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}

	reminders, err := repo.ReminderBills(ctx)
	if err != nil {
		t.Fatalf("ReminderBills() error = %v", err)
	}
	if len(reminders) != 1 {
		t.Fatalf("ReminderBills() returned %d rows, want 1", len(reminders))
	}
	if reminders[0].Bill.ID != "b-1" {
		t.Errorf("reminder bill = %v, want b-1", reminders[0].Bill.ID)
	}
	if reminders[0].OwnerEmail != "a@b.com" {
		t.Errorf("reminder owner email = %v, want a@b.com", reminders[0].OwnerEmail)
	}
}
