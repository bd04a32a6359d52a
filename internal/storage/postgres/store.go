package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
	interfaces "github.com/sheikh-saqib/transaction-replay-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// Store is a postgres-backed implementation of both
// interfaces.LedgerStore and interfaces.TransactionLog, so one database
// connection serves a whole replay run.
type Store struct {
	db *sql.DB
}

// Open connects to postgres using the given DSN and verifies the
// connection before returning it.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

// EnsureSchema creates the accounts and transactions tables if they do
// not exist yet. Amount columns use NUMERIC so the 4-digit decimal
// precision survives the round trip.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		client_id  INTEGER PRIMARY KEY,
		available  NUMERIC NOT NULL,
		held       NUMERIC NOT NULL,
		total      NUMERIC NOT NULL,
		locked     BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE TABLE IF NOT EXISTS transactions (
		tx_id      BIGINT PRIMARY KEY,
		client_id  INTEGER NOT NULL,
		type       TEXT NOT NULL,
		amount     NUMERIC,
		in_dispute BOOLEAN NOT NULL DEFAULT FALSE
	);`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) GetOrCreate(ctx context.Context, id models.ClientID) (models.Account, error) {
	const insert = `INSERT INTO accounts (client_id, available, held, total, locked)
	VALUES ($1, 0, 0, 0, FALSE)
	ON CONFLICT (client_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, insert, id); err != nil {
		return models.Account{}, err
	}

	const query = `SELECT client_id, available, held, total, locked
	FROM accounts WHERE client_id = $1`

	var account models.Account
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Available,
		&account.Held,
		&account.Total,
		&account.Locked,
	)
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *Store) Has(ctx context.Context, id models.ClientID) (bool, error) {
	const query = `SELECT 1 FROM accounts WHERE client_id = $1 LIMIT 1`

	var exists int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Mutate reads the account under a row lock, applies f to the staged
// copy, validates the ledger invariant and commits. A failed validation
// rolls the database transaction back, leaving the stored row untouched.
func (s *Store) Mutate(ctx context.Context, id models.ClientID, f func(*models.Account)) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const query = `SELECT client_id, available, held, total, locked
	FROM accounts WHERE client_id = $1 FOR UPDATE`

	var staged models.Account
	err = dbTx.QueryRowContext(ctx, query, id).Scan(
		&staged.ID,
		&staged.Available,
		&staged.Held,
		&staged.Total,
		&staged.Locked,
	)
	if err == sql.ErrNoRows {
		err = fmt.Errorf("account %d does not exist", id)
		return err
	}
	if err != nil {
		return err
	}

	f(&staged)

	if !staged.Valid() {
		err = fmt.Errorf("account %d: %w", id, models.ErrInvariantViolation)
		return err
	}

	const update = `UPDATE accounts SET available = $2, held = $3, total = $4, locked = $5
	WHERE client_id = $1`

	if _, err = dbTx.ExecContext(ctx, update, id, staged.Available, staged.Held, staged.Total, staged.Locked); err != nil {
		return err
	}
	return dbTx.Commit()
}

func (s *Store) IsLocked(ctx context.Context, id models.ClientID) (bool, error) {
	const query = `SELECT locked FROM accounts WHERE client_id = $1`

	var locked bool
	err := s.db.QueryRowContext(ctx, query, id).Scan(&locked)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return locked, nil
}

func (s *Store) Snapshot(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT client_id, available, held, total, locked
	FROM accounts ORDER BY client_id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.ID,
			&account.Available,
			&account.Held,
			&account.Total,
			&account.Locked,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Store) Record(ctx context.Context, tx models.Transaction) error {
	const query = `INSERT INTO transactions (tx_id, client_id, type, amount, in_dispute)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (tx_id) DO UPDATE
	SET client_id = EXCLUDED.client_id, type = EXCLUDED.type,
	    amount = EXCLUDED.amount, in_dispute = EXCLUDED.in_dispute`

	_, err := s.db.ExecContext(ctx, query, tx.TxID, tx.ClientID, tx.Type, tx.Amount, tx.InDispute)
	return err
}

func (s *Store) Contains(ctx context.Context, id models.TransactionID) (bool, error) {
	const query = `SELECT 1 FROM transactions WHERE tx_id = $1 LIMIT 1`

	var exists int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Get(ctx context.Context, id models.TransactionID) (models.Transaction, bool, error) {
	const query = `SELECT tx_id, client_id, type, amount, in_dispute
	FROM transactions WHERE tx_id = $1`

	var tx models.Transaction
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&tx.TxID,
		&tx.ClientID,
		&tx.Type,
		&tx.Amount,
		&tx.InDispute,
	)
	if err == sql.ErrNoRows {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, err
	}
	return tx, true, nil
}

func (s *Store) SetInDispute(ctx context.Context, id models.TransactionID, inDispute bool) error {
	const query = `UPDATE transactions SET in_dispute = $2 WHERE tx_id = $1`

	result, err := s.db.ExecContext(ctx, query, id, inDispute)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d has not been recorded", id)
	}
	return nil
}

// Compile-time checks: ensure Store implements both storage interfaces.
var (
	_ interfaces.LedgerStore    = (*Store)(nil)
	_ interfaces.TransactionLog = (*Store)(nil)
)
