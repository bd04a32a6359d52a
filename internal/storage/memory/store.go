package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	interfaces "github.com/sheikh-saqib/transaction-replay-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// LedgerStore is an in-memory implementation of interfaces.LedgerStore.
// Accounts are stored by value and callers only ever receive copies, so
// the stage-validate-commit discipline inside Mutate is the single write
// path into the map.
type LedgerStore struct {
	mu       sync.Mutex // protects accounts
	accounts map[models.ClientID]models.Account
}

// NewLedgerStore creates an empty in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts: make(map[models.ClientID]models.Account),
	}
}

// GetOrCreate returns the account for id, inserting a zero-balance,
// unlocked one if this is the first time the id is seen.
func (s *LedgerStore) GetOrCreate(ctx context.Context, id models.ClientID) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account, ok := s.accounts[id]; ok {
		return account, nil
	}

	account := models.NewAccount(id)
	s.accounts[id] = account
	return account, nil
}

// Has reports whether an account exists for id without creating one.
func (s *LedgerStore) Has(ctx context.Context, id models.ClientID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.accounts[id]
	return ok, nil
}

// Mutate applies f to a staged copy of the account and commits the copy
// only if the ledger invariant still holds. A failed validation leaves
// the stored account exactly as it was.
func (s *LedgerStore) Mutate(ctx context.Context, id models.ClientID, f func(*models.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %d does not exist", id)
	}

	staged := account
	f(&staged)
	staged.ID = account.ID // the key is not mutable

	if !staged.Valid() {
		return fmt.Errorf("account %d: %w", id, models.ErrInvariantViolation)
	}

	s.accounts[id] = staged
	return nil
}

// IsLocked reports whether the account for id is frozen.
func (s *LedgerStore) IsLocked(ctx context.Context, id models.ClientID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	return account.Locked, nil
}

// Snapshot returns a copy of every account in ascending client id order.
func (s *LedgerStore) Snapshot(ctx context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

// Compile-time check: ensure LedgerStore implements the interface.
var _ interfaces.LedgerStore = (*LedgerStore)(nil)
