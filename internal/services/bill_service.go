package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scadenze/internal/core"
)

// BillService orchestrates bill CRUD for an owner against the record
// store. Validation happens here, at the boundary; the store assumes
// validated rows.
type BillService struct {
	store BillStore
}

func NewBillService(store BillStore) *BillService {
	return &BillService{store: store}
}

// List returns the owner's bills sorted by due date ascending.
func (s *BillService) List(ctx context.Context, ownerID string) ([]core.Bill, error) {
	bills, err := s.store.BillsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

// Add validates and stores a new bill, assigning id and timestamps.
func (s *BillService) Add(ctx context.Context, ownerID string, b core.Bill) (*core.Bill, error) {
	b.ID = uuid.NewString()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Frequency == "" {
		b.Frequency = core.FreqNone
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.CreateBill(ctx, ownerID, b)
	if err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	return created, nil
}

// Update applies a partial patch to one of the owner's bills and
// refreshes its UpdatedAt. A missing bill surfaces as
// core.ErrBillNotFound naming the id.
func (s *BillService) Update(ctx context.Context, ownerID, id string, patch core.BillPatch) (*core.Bill, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, core.ErrEmptyName
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return nil, core.ErrInvalidAmount
	}
	if patch.Frequency != nil {
		if err := patch.Frequency.Validate(); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateBill(ctx, ownerID, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update bill %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes one of the owner's bills. A missing bill surfaces as
// core.ErrBillNotFound naming the id.
func (s *BillService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteBill(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	return nil
}

// ClearAll removes every bill the owner has.
func (s *BillService) ClearAll(ctx context.Context, ownerID string) error {
	if err := s.store.DeleteAllBills(ctx, ownerID); err != nil {
		return fmt.Errorf("clear bills: %w", err)
	}
	return nil
}
