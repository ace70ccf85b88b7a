// Package memory provides an ephemeral in-process record store with the
// same row-level contract as the SQLite repository. It backs development
// mode and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"scadenze/internal/core"
)

type Store struct {
	mu       sync.Mutex
	profiles []core.Profile
	bills    map[string][]core.Bill // keyed by owner id
}

func New() *Store {
	return &Store{bills: make(map[string][]core.Bill)}
}

// ProfileByID looks a profile up by its auth-provider identity.
func (s *Store) ProfileByID(_ context.Context, id string) (*core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("profile %s: %w", id, core.ErrProfileNotFound)
}

// ProfilesByEmail returns matching rows in insertion order.
func (s *Store) ProfilesByEmail(_ context.Context, email string) ([]core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Profile
	for _, p := range s.profiles {
		if p.Email == email {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) CreateProfile(_ context.Context, p core.Profile) (*core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.profiles {
		if existing.ID == p.ID {
			return nil, fmt.Errorf("profile %s already exists", p.ID)
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.profiles = append(s.profiles, p)
	cp := p
	return &cp, nil
}

// UpsertProfileByEmail overwrites the row sharing p.Email in place, or
// inserts fresh. Afterwards exactly one row carries p.Email and it is
// keyed by p.ID.
func (s *Store) UpsertProfileByEmail(_ context.Context, p core.Profile) (*core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.profiles {
		if existing.Email == p.Email {
			p.CreatedAt = existing.CreatedAt
			s.profiles[i] = p
			cp := p
			return &cp, nil
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.profiles = append(s.profiles, p)
	cp := p
	return &cp, nil
}

func (s *Store) UpdateAvailableMoney(_ context.Context, id string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.profiles {
		if p.ID == id {
			s.profiles[i].AvailableMoney = amount
			return nil
		}
	}
	return fmt.Errorf("profile %s: %w", id, core.ErrProfileNotFound)
}

// BillsByOwner returns the owner's bills sorted by due date ascending.
func (s *Store) BillsByOwner(_ context.Context, ownerID string) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills := append([]core.Bill(nil), s.bills[ownerID]...)
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].DueDate.Before(bills[j].DueDate.Time)
	})
	return bills, nil
}

func (s *Store) CreateBill(_ context.Context, ownerID string, b core.Bill) (*core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bills[ownerID] = append(s.bills[ownerID], b)
	cp := b
	return &cp, nil
}

func (s *Store) UpdateBill(_ context.Context, ownerID, id string, patch core.BillPatch) (*core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills := s.bills[ownerID]
	for i, b := range bills {
		if b.ID != id {
			continue
		}
		if patch.Name != nil {
			b.Name = *patch.Name
		}
		if patch.Amount != nil {
			b.Amount = *patch.Amount
		}
		if patch.DueDate != nil {
			b.DueDate = *patch.DueDate
		}
		if patch.Frequency != nil {
			b.Frequency = *patch.Frequency
		}
		if patch.ReminderEnabled != nil {
			b.ReminderEnabled = *patch.ReminderEnabled
		}
		b.UpdatedAt = time.Now().UTC()
		bills[i] = b
		cp := b
		return &cp, nil
	}
	return nil, fmt.Errorf("bill %s: %w", id, core.ErrBillNotFound)
}

func (s *Store) DeleteBill(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills := s.bills[ownerID]
	for i, b := range bills {
		if b.ID == id {
			s.bills[ownerID] = append(bills[:i], bills[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("bill %s: %w", id, core.ErrBillNotFound)
}

func (s *Store) DeleteAllBills(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bills, ownerID)
	return nil
}

// ReassignBills moves every bill from oldOwner to newOwner.
func (s *Store) ReassignBills(_ context.Context, oldOwner, newOwner string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := s.bills[oldOwner]
	if len(moved) == 0 {
		return 0, nil
	}
	s.bills[newOwner] = append(s.bills[newOwner], moved...)
	delete(s.bills, oldOwner)
	return int64(len(moved)), nil
}

// ReminderBills returns every reminder-enabled bill paired with its
// owner's email. Bills whose owner has no profile row are skipped.
func (s *Store) ReminderBills(_ context.Context) ([]core.ReminderBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emailByID := make(map[string]string, len(s.profiles))
	for _, p := range s.profiles {
		emailByID[p.ID] = p.Email
	}

	var out []core.ReminderBill
	for owner, bills := range s.bills {
		email, ok := emailByID[owner]
		if !ok {
			continue
		}
		for _, b := range bills {
			if b.ReminderEnabled {
				out = append(out, core.ReminderBill{Bill: b, OwnerEmail: email})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Bill.ID < out[j].Bill.ID
	})
	return out, nil
}
