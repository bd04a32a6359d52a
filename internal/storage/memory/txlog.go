package memory

import (
	"context"
	"fmt"
	"sync"

	interfaces "github.com/sheikh-saqib/transaction-replay-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// TransactionLog is an in-memory implementation of
// interfaces.TransactionLog backed by a map keyed on transaction id.
type TransactionLog struct {
	mu           sync.Mutex // protects transactions
	transactions map[models.TransactionID]models.Transaction
}

// NewTransactionLog creates an empty in-memory transaction log.
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{
		transactions: make(map[models.TransactionID]models.Transaction),
	}
}

// Record stores tx keyed by its TxID, overwriting any existing record.
func (l *TransactionLog) Record(ctx context.Context, tx models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions[tx.TxID] = tx
	return nil
}

// Contains reports whether a record with id has been stored.
func (l *TransactionLog) Contains(ctx context.Context, id models.TransactionID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.transactions[id]
	return ok, nil
}

// Get returns a copy of the stored record for id.
func (l *TransactionLog) Get(ctx context.Context, id models.TransactionID) (models.Transaction, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.transactions[id]
	return tx, ok, nil
}

// SetInDispute toggles the dispute flag on the stored record for id.
func (l *TransactionLog) SetInDispute(ctx context.Context, id models.TransactionID, inDispute bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.transactions[id]
	if !ok {
		return fmt.Errorf("transaction %d has not been recorded", id)
	}

	tx.InDispute = inDispute
	l.transactions[id] = tx
	return nil
}

// Compile-time check: ensure TransactionLog implements the interface.
var _ interfaces.TransactionLog = (*TransactionLog)(nil)
