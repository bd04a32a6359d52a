package engine

import (
	"errors"

	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// Business-rule violations. Each one skips a single record; none of them
// abort the run.
var (
	ErrDuplicateTransaction  = errors.New("duplicate transaction id")
	ErrUnknownClient         = errors.New("client not found")
	ErrClientLocked          = errors.New("client account is locked")
	ErrMissingAmount         = errors.New("transaction amount was not provided")
	ErrNegativeAmount        = errors.New("transaction amount is negative")
	ErrInsufficientAvailable = errors.New("insufficient available funds")
	ErrInsufficientHeld      = errors.New("insufficient held funds")
	ErrTransactionNotFound   = errors.New("referenced transaction has not been processed")
	ErrNotInDispute          = errors.New("referenced transaction is not in dispute")

	errUnknownType = errors.New("unknown transaction type")
)

// isBusinessError distinguishes per-record rule violations, which are
// logged and skipped, from infrastructure failures, which abort the run.
func isBusinessError(err error) bool {
	for _, kind := range []error{
		ErrDuplicateTransaction,
		ErrUnknownClient,
		ErrClientLocked,
		ErrMissingAmount,
		ErrNegativeAmount,
		ErrInsufficientAvailable,
		ErrInsufficientHeld,
		ErrTransactionNotFound,
		ErrNotInDispute,
		errUnknownType,
		models.ErrInvariantViolation,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
