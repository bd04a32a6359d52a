package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/models/events"
)

// Topics the engine publishes to.
const (
	TopicTransactionAccepted = "transaction_accepted"
	TopicAccountLocked       = "account_locked"
)

func (e *Engine) deposit(ctx context.Context, tx models.Transaction) error {
	account, err := e.store.GetOrCreate(ctx, tx.ClientID)
	if err != nil {
		return err
	}

	// Locked accounts reject everything, deposits included.
	if account.Locked {
		return ErrClientLocked
	}

	if !tx.Amount.Valid {
		return ErrMissingAmount
	}
	amount := tx.Amount.Decimal
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	err = e.store.Mutate(ctx, tx.ClientID, func(a *models.Account) {
		a.Available = a.Available.Add(amount)
		a.Total = a.Total.Add(amount)
	})
	if err != nil {
		return err
	}

	// Only accepted deposits enter the log.
	if err := e.txlog.Record(ctx, tx); err != nil {
		return err
	}

	e.publishAccepted(ctx, tx, amount)
	return nil
}

func (e *Engine) withdrawal(ctx context.Context, tx models.Transaction) error {
	// A withdrawal against an unseen client still creates the account;
	// the available-balance check below then rejects the withdrawal
	// itself, leaving a zero-balance account behind.
	account, err := e.store.GetOrCreate(ctx, tx.ClientID)
	if err != nil {
		return err
	}

	if account.Locked {
		return ErrClientLocked
	}

	if !tx.Amount.Valid {
		return ErrMissingAmount
	}
	amount := tx.Amount.Decimal
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if account.Available.LessThan(amount) {
		return ErrInsufficientAvailable
	}

	err = e.store.Mutate(ctx, tx.ClientID, func(a *models.Account) {
		a.Available = a.Available.Sub(amount)
		a.Total = a.Total.Sub(amount)
	})
	if err != nil {
		return err
	}

	if err := e.txlog.Record(ctx, tx); err != nil {
		return err
	}

	e.publishAccepted(ctx, tx, amount)
	return nil
}

func (e *Engine) dispute(ctx context.Context, tx models.Transaction) error {
	ref, account, err := e.reference(ctx, tx)
	if err != nil {
		return err
	}

	// Only deposits are disputable. Referencing any other kind succeeds
	// without mutating anything; whether that is a business rule or an
	// inherited gap is deliberately left as observed.
	if ref.Type != models.TypeDeposit {
		return nil
	}

	amount := ref.Amount.Decimal
	if account.Available.LessThan(amount) {
		return ErrInsufficientAvailable
	}

	err = e.store.Mutate(ctx, tx.ClientID, func(a *models.Account) {
		a.Available = a.Available.Sub(amount)
		a.Held = a.Held.Add(amount)
	})
	if err != nil {
		return err
	}

	return e.txlog.SetInDispute(ctx, ref.TxID, true)
}

func (e *Engine) resolve(ctx context.Context, tx models.Transaction) error {
	ref, account, err := e.reference(ctx, tx)
	if err != nil {
		return err
	}

	if ref.Type != models.TypeDeposit {
		return nil
	}

	amount := ref.Amount.Decimal
	if account.Held.LessThan(amount) {
		return ErrInsufficientHeld
	}
	if !ref.InDispute {
		return ErrNotInDispute
	}

	err = e.store.Mutate(ctx, tx.ClientID, func(a *models.Account) {
		a.Available = a.Available.Add(amount)
		a.Held = a.Held.Sub(amount)
	})
	if err != nil {
		return err
	}

	return e.txlog.SetInDispute(ctx, ref.TxID, false)
}

func (e *Engine) chargeback(ctx context.Context, tx models.Transaction) error {
	ref, account, err := e.reference(ctx, tx)
	if err != nil {
		return err
	}

	if ref.Type != models.TypeDeposit {
		return nil
	}

	amount := ref.Amount.Decimal
	if account.Held.LessThan(amount) {
		return ErrInsufficientHeld
	}
	if !ref.InDispute {
		return ErrNotInDispute
	}

	// The only transition that ever locks an account. Irreversible for
	// the rest of the run.
	err = e.store.Mutate(ctx, tx.ClientID, func(a *models.Account) {
		a.Held = a.Held.Sub(amount)
		a.Total = a.Total.Sub(amount)
		a.Locked = true
	})
	if err != nil {
		return err
	}

	if err := e.txlog.SetInDispute(ctx, ref.TxID, false); err != nil {
		return err
	}

	e.publishLocked(ctx, tx, amount)
	return nil
}

// reference performs the dispute-family preamble shared by dispute,
// resolve and chargeback: the client must already exist (these kinds
// never create accounts), the referenced transaction must be in the log,
// the account must not be locked, and the stored record must carry an
// amount. Check order matches the handlers' observable semantics.
func (e *Engine) reference(ctx context.Context, tx models.Transaction) (models.Transaction, models.Account, error) {
	has, err := e.store.Has(ctx, tx.ClientID)
	if err != nil {
		return models.Transaction{}, models.Account{}, err
	}
	if !has {
		return models.Transaction{}, models.Account{}, ErrUnknownClient
	}

	ref, ok, err := e.txlog.Get(ctx, tx.TxID)
	if err != nil {
		return models.Transaction{}, models.Account{}, err
	}
	if !ok {
		return models.Transaction{}, models.Account{}, ErrTransactionNotFound
	}

	// The client exists, so this is a plain read.
	account, err := e.store.GetOrCreate(ctx, tx.ClientID)
	if err != nil {
		return models.Transaction{}, models.Account{}, err
	}
	if account.Locked {
		return models.Transaction{}, models.Account{}, ErrClientLocked
	}

	if !ref.Amount.Valid {
		return models.Transaction{}, models.Account{}, ErrMissingAmount
	}

	return ref, account, nil
}

func (e *Engine) publishAccepted(ctx context.Context, tx models.Transaction, amount decimal.Decimal) {
	event := events.TransactionAccepted{
		EventID:    uuid.New().String(),
		Type:       string(tx.Type),
		ClientID:   uint16(tx.ClientID),
		TxID:       uint32(tx.TxID),
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}

	if err := e.publisher.Publish(ctx, TopicTransactionAccepted, event); err != nil {
		e.logger.Warn("publishing transaction event",
			zap.Uint32("tx", uint32(tx.TxID)),
			zap.Error(err),
		)
	}
}

func (e *Engine) publishLocked(ctx context.Context, tx models.Transaction, amount decimal.Decimal) {
	event := events.AccountLocked{
		EventID:    uuid.New().String(),
		ClientID:   uint16(tx.ClientID),
		TxID:       uint32(tx.TxID),
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}

	if err := e.publisher.Publish(ctx, TopicAccountLocked, event); err != nil {
		e.logger.Warn("publishing account locked event",
			zap.Uint16("client", uint16(tx.ClientID)),
			zap.Error(err),
		)
	}
}
