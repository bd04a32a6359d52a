package models

import "github.com/shopspring/decimal"

// ClientID identifies a ledger account. Ids are minted by the upstream
// payment system; the engine only ever looks them up or creates accounts
// for them on first sight.
type ClientID uint16

// TransactionID identifies a deposit or withdrawal record. Dispute,
// resolve and chargeback records carry the id of an existing record and
// never mint a new one.
type TransactionID uint32

// TransactionType is the kind of an incoming record, using the wire
// names from the input format.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDispute    TransactionType = "dispute"
	TypeResolve    TransactionType = "resolve"
	TypeChargeback TransactionType = "chargeback"
)

// Transaction represents a single record of the input sequence.
// Amount is present for deposits and withdrawals and absent for the
// dispute family, which reference a stored record instead.
// InDispute is only meaningful once a deposit or withdrawal has been
// accepted into the transaction log.
type Transaction struct {
	Type      TransactionType
	ClientID  ClientID
	TxID      TransactionID
	Amount    decimal.NullDecimal
	InDispute bool
}
