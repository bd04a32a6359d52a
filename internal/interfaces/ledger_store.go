package interfaces

import (
	"context"

	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// LedgerStore owns the mapping from client id to account state.
// For the duration of a replay run the processing engine is the only
// writer; implementations still guard their internals so a future
// concurrent wrapper only needs to add coordination, not rewrite logic.
type LedgerStore interface {
	// GetOrCreate returns the existing account for id, or inserts and
	// returns a zero-balance, unlocked one.
	GetOrCreate(ctx context.Context, id models.ClientID) (models.Account, error)

	// Has reports whether an account exists for id without creating one.
	Has(ctx context.Context, id models.ClientID) (bool, error)

	// Mutate stages a copy of the account, applies f to the copy, then
	// validates the ledger invariant. The copy is committed only when
	// the invariant holds; otherwise it is discarded and an error
	// wrapping models.ErrInvariantViolation is returned. No partially
	// mutated account is ever observable.
	Mutate(ctx context.Context, id models.ClientID, f func(*models.Account)) error

	// IsLocked reports whether the account for id is frozen. Unknown
	// ids are not locked.
	IsLocked(ctx context.Context, id models.ClientID) (bool, error)

	// Snapshot returns every account in ascending client id order.
	Snapshot(ctx context.Context) ([]models.Account, error)
}
