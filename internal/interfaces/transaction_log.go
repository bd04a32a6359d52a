package interfaces

import (
	"context"

	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// TransactionLog is the append-only record of accepted deposit and
// withdrawal transactions, keyed by transaction id. Dispute-family
// records are never stored; they only reference entries already here.
type TransactionLog interface {
	// Record stores tx keyed by its TxID. An id already present is
	// overwritten; callers own the duplicate check.
	Record(ctx context.Context, tx models.Transaction) error

	// Contains reports whether a record with id has been stored.
	Contains(ctx context.Context, id models.TransactionID) (bool, error)

	// Get returns the stored record for id, and whether one exists.
	Get(ctx context.Context, id models.TransactionID) (models.Transaction, bool, error)

	// SetInDispute toggles the dispute flag on the stored record for id.
	SetInDispute(ctx context.Context, id models.TransactionID, inDispute bool) error
}
