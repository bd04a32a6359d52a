package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionAccepted is published after a deposit or withdrawal has been
// committed to the ledger and recorded in the transaction log.
type TransactionAccepted struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	ClientID   uint16          `json:"client_id"`
	TxID       uint32          `json:"tx_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// AccountLocked is published after a successful chargeback has frozen a
// client account. TxID is the charged-back deposit.
type AccountLocked struct {
	EventID    string          `json:"event_id"`
	ClientID   uint16          `json:"client_id"`
	TxID       uint32          `json:"tx_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
