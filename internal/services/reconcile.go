package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"scadenze/internal/core"
)

// Reconciler resolves "fetch or establish profile" requests against the
// record store. It repairs the anomaly where a profile row exists under an
// older identity key but shares the email of the currently authenticated
// identity: the row is rewritten under the new key and every dependent bill
// is moved over.
type Reconciler struct {
	profiles ProfileStore
	bills    BillStore
}

func NewReconciler(profiles ProfileStore, bills BillStore) *Reconciler {
	return &Reconciler{
		profiles: profiles,
		bills:    bills,
	}
}

// Resolve returns the profile for the identity authID with known email.
//
// Three outcomes:
//   - found by id: returned as-is, zero writes (idempotent under retry);
//   - not found by id but found by email: the first matching row is merged
//     into a row keyed by authID and its bills are reassigned;
//   - not found at all: a fresh profile is created with defaults.
//
// A failure inside the merge wraps core.ErrReconcileFailed so callers can
// tell "merge started and broke" apart from plain not-found.
func (r *Reconciler) Resolve(ctx context.Context, authID, email string) (*core.Profile, error) {
	profile, err := r.profiles.ProfileByID(ctx, authID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, core.ErrProfileNotFound) {
		return nil, fmt.Errorf("profile lookup by id %s: %w", authID, err)
	}

	byEmail, err := r.profiles.ProfilesByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("profile lookup by email: %w", err)
	}

	if len(byEmail) == 0 {
		created, err := r.profiles.CreateProfile(ctx, core.Profile{
			ID:             authID,
			Email:          email,
			IsPremium:      false,
			AvailableMoney: decimal.Zero,
		})
		if err != nil {
			return nil, fmt.Errorf("create missing profile: %w", err)
		}
		slog.InfoContext(ctx, "Created missing profile", "id", authID)
		return created, nil
	}

	// Duplicate emails should never happen; take the first row but make
	// the anomaly visible.
	if len(byEmail) > 1 {
		slog.WarnContext(ctx, "Multiple profiles share one email, merging the first",
			"rows", len(byEmail),
			"merge_source", byEmail[0].ID)
	}
	source := byEmail[0]

	merged, err := r.profiles.UpsertProfileByEmail(ctx, core.Profile{
		ID:             authID,
		Email:          email,
		IsPremium:      source.IsPremium,
		AvailableMoney: source.AvailableMoney,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upsert profile for id %s: %v", core.ErrReconcileFailed, authID, err)
	}

	if source.ID != authID {
		moved, err := r.bills.ReassignBills(ctx, source.ID, authID)
		if err != nil {
			return nil, fmt.Errorf("%w: transfer bills from %s: %v", core.ErrReconcileFailed, source.ID, err)
		}
		slog.InfoContext(ctx, "Reconciled profile and transferred bills",
			"old_id", source.ID,
			"new_id", authID,
			"bills_moved", moved)
	}

	return merged, nil
}
