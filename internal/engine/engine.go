// Package engine replays an ordered sequence of transaction records
// against per-client ledger accounts, enforcing the ledger invariant
// after every mutation and recovering from invalid records without
// aborting the run.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/transaction-replay-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// Engine applies transaction records to the ledger store and transaction
// log it was constructed with. It owns both for the duration of a run;
// nothing else may read or write them while Process is executing.
type Engine struct {
	store     interfaces.LedgerStore
	txlog     interfaces.TransactionLog
	publisher interfaces.EventPublisher
	logger    *zap.Logger
}

// NewEngine wires the engine to its collaborators. A nil publisher
// discards events; a nil logger discards diagnostics.
func NewEngine(store interfaces.LedgerStore, txlog interfaces.TransactionLog, publisher interfaces.EventPublisher, logger *zap.Logger) *Engine {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		store:     store,
		txlog:     txlog,
		publisher: publisher,
		logger:    logger,
	}
}

// Stats summarizes a replay run.
type Stats struct {
	Processed int
	Skipped   int
}

// Process consumes the transaction sequence once, in order. A record
// that violates a business rule is logged on the diagnostics channel and
// skipped; the remainder of the sequence is still processed. Only
// infrastructure failures (storage, driver) abort the run.
func (e *Engine) Process(ctx context.Context, transactions []models.Transaction) (Stats, error) {
	var stats Stats

	for _, tx := range transactions {
		if err := e.processOne(ctx, tx); err != nil {
			if !isBusinessError(err) {
				return stats, fmt.Errorf("processing transaction %d: %w", tx.TxID, err)
			}

			stats.Skipped++
			e.logger.Warn("skipping transaction",
				zap.String("type", string(tx.Type)),
				zap.Uint16("client", uint16(tx.ClientID)),
				zap.Uint32("tx", uint32(tx.TxID)),
				zap.Error(err),
			)
			continue
		}
		stats.Processed++
	}

	return stats, nil
}

func (e *Engine) processOne(ctx context.Context, tx models.Transaction) error {
	// Dispute-family records legitimately reuse an existing transaction
	// id, so only deposits and withdrawals face the duplicate check.
	if tx.Type == models.TypeDeposit || tx.Type == models.TypeWithdrawal {
		seen, err := e.txlog.Contains(ctx, tx.TxID)
		if err != nil {
			return err
		}
		if seen {
			return ErrDuplicateTransaction
		}
	}

	switch tx.Type {
	case models.TypeDeposit:
		return e.deposit(ctx, tx)
	case models.TypeWithdrawal:
		return e.withdrawal(ctx, tx)
	case models.TypeDispute:
		return e.dispute(ctx, tx)
	case models.TypeResolve:
		return e.resolve(ctx, tx)
	case models.TypeChargeback:
		return e.chargeback(ctx, tx)
	default:
		return fmt.Errorf("%w: %q", errUnknownType, tx.Type)
	}
}

// nopPublisher discards events; used when no broker is configured.
type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}
