package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sheikh-saqib/transaction-replay-engine/internal/engine"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/storage/memory"
)

func amount(value string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(value), Valid: true}
}

func deposit(client models.ClientID, tx models.TransactionID, value string) models.Transaction {
	return models.Transaction{Type: models.TypeDeposit, ClientID: client, TxID: tx, Amount: amount(value)}
}

func withdrawal(client models.ClientID, tx models.TransactionID, value string) models.Transaction {
	return models.Transaction{Type: models.TypeWithdrawal, ClientID: client, TxID: tx, Amount: amount(value)}
}

func dispute(client models.ClientID, tx models.TransactionID) models.Transaction {
	return models.Transaction{Type: models.TypeDispute, ClientID: client, TxID: tx}
}

func resolve(client models.ClientID, tx models.TransactionID) models.Transaction {
	return models.Transaction{Type: models.TypeResolve, ClientID: client, TxID: tx}
}

func chargeback(client models.ClientID, tx models.TransactionID) models.Transaction {
	return models.Transaction{Type: models.TypeChargeback, ClientID: client, TxID: tx}
}

func newTestEngine(t *testing.T) (*engine.Engine, *memory.LedgerStore, *memory.TransactionLog) {
	t.Helper()
	store := memory.NewLedgerStore()
	txlog := memory.NewTransactionLog()
	return engine.NewEngine(store, txlog, nil, zaptest.NewLogger(t)), store, txlog
}

func account(t *testing.T, store *memory.LedgerStore, id models.ClientID) models.Account {
	t.Helper()
	accounts, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	for _, a := range accounts {
		if a.ID == id {
			require.True(t, a.Valid(), "ledger invariant broken for client %d", id)
			return a
		}
	}
	t.Fatalf("account %d not found", id)
	return models.Account{}
}

func assertBalances(t *testing.T, a models.Account, available, held, total string) {
	t.Helper()
	assert.True(t, a.Available.Equal(decimal.RequireFromString(available)), "available: want %s, got %s", available, a.Available)
	assert.True(t, a.Held.Equal(decimal.RequireFromString(held)), "held: want %s, got %s", held, a.Held)
	assert.True(t, a.Total.Equal(decimal.RequireFromString(total)), "total: want %s, got %s", total, a.Total)
}

func TestDepositWithdrawalScenario(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	stats, err := eng.Process(context.Background(), []models.Transaction{
		deposit(1, 1, "10.0000"),
		withdrawal(1, 2, "5.0000"),
		withdrawal(1, 3, "100.0000"), // exceeds available, skipped
		dispute(1, 2),                // references a withdrawal, no-op
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)

	a := account(t, store, 1)
	assertBalances(t, a, "5", "0", "5")
	assert.False(t, a.Locked)
}

func TestChargebackScenario(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	stats, err := eng.Process(context.Background(), []models.Transaction{
		deposit(2, 4, "20.0000"),
		dispute(2, 4),
		chargeback(2, 4),
		deposit(2, 5, "5.0000"), // account now locked, rejected
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)

	a := account(t, store, 2)
	assertBalances(t, a, "0", "0", "0")
	assert.True(t, a.Locked)
}

func TestDuplicateTransactionIgnored(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	stats, err := eng.Process(context.Background(), []models.Transaction{
		deposit(1, 1, "10"),
		deposit(1, 1, "10"),   // same id, skipped
		withdrawal(1, 1, "3"), // withdrawals reusing a seen id too
		deposit(2, 1, "10"),   // even from another client
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 3, stats.Skipped)

	assertBalances(t, account(t, store, 1), "10", "0", "10")
}

func TestWithdrawalAgainstUnseenClient(t *testing.T) {
	eng, store, txlog := newTestEngine(t)

	stats, err := eng.Process(context.Background(), []models.Transaction{
		withdrawal(7, 1, "50"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)

	// The account is created anyway, with zero balances, and the
	// rejected withdrawal never enters the log.
	assertBalances(t, account(t, store, 7), "0", "0", "0")
	seen, err := txlog.Contains(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDisputeResolveRoundTrip(t *testing.T) {
	eng, store, txlog := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Process(ctx, []models.Transaction{
		deposit(1, 1, "10.5"),
		dispute(1, 1),
	})
	require.NoError(t, err)

	assertBalances(t, account(t, store, 1), "0", "10.5", "10.5")
	ref, ok, err := txlog.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ref.InDispute)

	stats, err := eng.Process(ctx, []models.Transaction{
		resolve(1, 1),
		resolve(1, 1), // no longer in dispute, skipped
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)

	assertBalances(t, account(t, store, 1), "10.5", "0", "10.5")
	ref, _, err = txlog.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ref.InDispute)
}

func TestChargebackRequiresDispute(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	stats, err := eng.Process(context.Background(), []models.Transaction{
		deposit(1, 1, "10"),
		chargeback(1, 1), // never disputed, skipped
		resolve(1, 1),    // likewise
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 2, stats.Skipped)

	a := account(t, store, 1)
	assertBalances(t, a, "10", "0", "10")
	assert.False(t, a.Locked)
}

func TestLockedAccountRejectsEverything(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Process(ctx, []models.Transaction{
		deposit(1, 1, "10"),
		deposit(1, 2, "5"),
		dispute(1, 1),
		chargeback(1, 1),
	})
	require.NoError(t, err)

	locked := account(t, store, 1)
	require.True(t, locked.Locked)
	assertBalances(t, locked, "5", "0", "5")

	stats, err := eng.Process(ctx, []models.Transaction{
		deposit(1, 3, "1"),
		withdrawal(1, 4, "1"),
		dispute(1, 2),
		resolve(1, 2),
		chargeback(1, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 5, stats.Skipped)

	after := account(t, store, 1)
	assertBalances(t, after, "5", "0", "5")
	assert.True(t, after.Locked)
}

func TestNonDepositDisputeIsNoOp(t *testing.T) {
	eng, store, txlog := newTestEngine(t)
	ctx := context.Background()

	stats, err := eng.Process(ctx, []models.Transaction{
		deposit(1, 1, "10"),
		withdrawal(1, 2, "3"),
		dispute(1, 2),    // withdrawal reference: succeeds, mutates nothing
		resolve(1, 2),    // same
		chargeback(1, 2), // same
	})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Processed)
	assert.Equal(t, 0, stats.Skipped)

	a := account(t, store, 1)
	assertBalances(t, a, "7", "0", "7")
	assert.False(t, a.Locked)

	ref, ok, err := txlog.Get(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, ref.InDispute)
}

func TestDisputeFamilyReferenceChecks(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	stats, err := eng.Process(context.Background(), []models.Transaction{
		dispute(9, 1), // client never seen
		deposit(1, 1, "10"),
		dispute(1, 99), // transaction never recorded
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 2, stats.Skipped)

	assertBalances(t, account(t, store, 1), "10", "0", "10")
}

func TestMissingAndNegativeAmounts(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	stats, err := eng.Process(context.Background(), []models.Transaction{
		{Type: models.TypeDeposit, ClientID: 1, TxID: 1}, // no amount
		deposit(1, 2, "-5"),
		withdrawal(1, 3, "-5"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 3, stats.Skipped)

	// The account is still created on first reference.
	assertBalances(t, account(t, store, 1), "0", "0", "0")
}

func TestDisputeInsufficientAvailable(t *testing.T) {
	eng, store, txlog := newTestEngine(t)
	ctx := context.Background()

	stats, err := eng.Process(ctx, []models.Transaction{
		deposit(1, 1, "10"),
		withdrawal(1, 2, "8"),
		dispute(1, 1), // deposit amount 10 exceeds available 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)

	assertBalances(t, account(t, store, 1), "2", "0", "2")
	ref, _, err := txlog.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ref.InDispute)
}

func TestExactDecimalArithmetic(t *testing.T) {
	eng, store, _ := newTestEngine(t)

	// Repeated small additions must reproduce exact equality in the
	// invariant; binary floats would drift here.
	var transactions []models.Transaction
	for i := 1; i <= 1000; i++ {
		transactions = append(transactions, deposit(1, models.TransactionID(i), "0.0001"))
	}

	stats, err := eng.Process(context.Background(), transactions)
	require.NoError(t, err)
	assert.Equal(t, 1000, stats.Processed)

	a := account(t, store, 1)
	assertBalances(t, a, "0.1", "0", "0.1")
	assert.Equal(t, "0.1000", a.Total.StringFixed(4))
}

// capturePublisher records every published event for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func TestEventsPublished(t *testing.T) {
	store := memory.NewLedgerStore()
	txlog := memory.NewTransactionLog()
	publisher := &capturePublisher{}
	eng := engine.NewEngine(store, txlog, publisher, zaptest.NewLogger(t))

	_, err := eng.Process(context.Background(), []models.Transaction{
		deposit(1, 1, "10"),
		withdrawal(1, 2, "3"),
		dispute(1, 1), // available 7 < 10, skipped: no event
		deposit(1, 3, "5"),
		dispute(1, 1), // available 12 now covers it
		chargeback(1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		engine.TopicTransactionAccepted,
		engine.TopicTransactionAccepted,
		engine.TopicTransactionAccepted,
		engine.TopicAccountLocked,
	}, publisher.topics)
}
