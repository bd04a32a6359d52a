package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvariantViolation is returned when a proposed mutation would leave
// an account violating the ledger invariant. The triggering mutation is
// never committed.
var ErrInvariantViolation = errors.New("account violates ledger invariant")

// Account is a per-client ledger account.
// Total is always Available plus Held; Held is the portion frozen by
// open disputes. Once Locked is set (by a successful chargeback) the
// account is permanently frozen and rejects every further transaction.
type Account struct {
	ID        ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// NewAccount returns a zero-balance, unlocked account for id.
func NewAccount(id ClientID) Account {
	return Account{
		ID:        id,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// Valid reports whether the account satisfies the ledger invariant:
// Total == Available + Held, with all three non-negative.
func (a Account) Valid() bool {
	if a.Available.IsNegative() || a.Held.IsNegative() || a.Total.IsNegative() {
		return false
	}

	return a.Total.Equal(a.Available.Add(a.Held))
}
