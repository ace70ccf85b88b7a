package services

import (
	"context"

	"github.com/shopspring/decimal"

	"scadenze/internal/core"
)

// ProfileStore is the row-level contract for the users table.
// Implementations return core.ErrProfileNotFound (possibly wrapped) when a
// lookup by id misses.
type ProfileStore interface {
	// ProfileByID looks a profile up by its auth-provider identity.
	ProfileByID(ctx context.Context, id string) (*core.Profile, error)

	// ProfilesByEmail returns every profile row sharing the email, in the
	// store's natural order. An empty slice means no match.
	ProfilesByEmail(ctx context.Context, email string) ([]core.Profile, error)

	// CreateProfile inserts a fresh profile row.
	CreateProfile(ctx context.Context, p core.Profile) (*core.Profile, error)

	// UpsertProfileByEmail writes p with email as the conflict column:
	// afterwards exactly one row is associated with p.Email and it is keyed
	// by p.ID.
	UpsertProfileByEmail(ctx context.Context, p core.Profile) (*core.Profile, error)

	// UpdateAvailableMoney sets the available balance on an existing profile.
	UpdateAvailableMoney(ctx context.Context, id string, amount decimal.Decimal) error
}

// BillStore is the row-level contract for the bills table.
// Implementations return core.ErrBillNotFound (possibly wrapped, naming the
// id) when an update or delete references a missing bill.
type BillStore interface {
	// BillsByOwner returns the owner's bills sorted by due date ascending.
	BillsByOwner(ctx context.Context, ownerID string) ([]core.Bill, error)

	// CreateBill inserts a bill for the owner.
	CreateBill(ctx context.Context, ownerID string, b core.Bill) (*core.Bill, error)

	// UpdateBill applies a partial patch and refreshes UpdatedAt.
	UpdateBill(ctx context.Context, ownerID, id string, patch core.BillPatch) (*core.Bill, error)

	// DeleteBill removes one bill owned by ownerID.
	DeleteBill(ctx context.Context, ownerID, id string) error

	// DeleteAllBills removes every bill owned by ownerID.
	DeleteAllBills(ctx context.Context, ownerID string) error

	// ReassignBills moves every bill owned by oldOwner to newOwner and
	// reports how many rows moved.
	ReassignBills(ctx context.Context, oldOwner, newOwner string) (int64, error)

	// ReminderBills returns every reminder-enabled bill across all owners
	// together with the owner's email.
	ReminderBills(ctx context.Context) ([]core.ReminderBill, error)
}
