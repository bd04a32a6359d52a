// Package csvio reads transaction sequences from CSV and renders the
// final account report. Failures here are fatal to the run; the engine
// itself never touches I/O.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// ReadTransactions parses the transaction sequence from r. The expected
// header is "type,client,tx,amount"; every field is whitespace-trimmed
// and the amount column may be empty, or missing entirely, on
// dispute-family rows. A malformed row aborts the read.
func ReadTransactions(r io.Reader) ([]models.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // dispute rows may omit the amount column
	reader.TrimLeadingSpace = true

	// Skip the header row.
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var transactions []models.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv record: %w", err)
		}
		line++

		tx, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func parseRecord(record []string) (models.Transaction, error) {
	if len(record) < 3 {
		return models.Transaction{}, fmt.Errorf("expected at least 3 fields, got %d", len(record))
	}

	kind := models.TransactionType(strings.TrimSpace(record[0]))
	switch kind {
	case models.TypeDeposit, models.TypeWithdrawal, models.TypeDispute, models.TypeResolve, models.TypeChargeback:
	default:
		return models.Transaction{}, fmt.Errorf("unknown transaction type %q", strings.TrimSpace(record[0]))
	}

	client, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 16)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parsing client id: %w", err)
	}

	txID, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 32)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("parsing transaction id: %w", err)
	}

	var amount decimal.NullDecimal
	if len(record) > 3 {
		if raw := strings.TrimSpace(record[3]); raw != "" {
			value, err := decimal.NewFromString(raw)
			if err != nil {
				return models.Transaction{}, fmt.Errorf("parsing amount: %w", err)
			}
			amount = decimal.NullDecimal{Decimal: value, Valid: true}
		}
	}

	return models.Transaction{
		Type:     kind,
		ClientID: models.ClientID(client),
		TxID:     models.TransactionID(txID),
		Amount:   amount,
	}, nil
}
