package csvio

import (
	"fmt"
	"io"

	"github.com/sheikh-saqib/transaction-replay-engine/internal/models"
)

// WriteReport renders one row per account in the order given (callers
// pass a Snapshot, which is already ascending by client id). Amounts
// carry exactly four fractional digits; booleans render as true/false.
func WriteReport(w io.Writer, accounts []models.Account) error {
	if _, err := fmt.Fprintln(w, "client, available, held, total, locked"); err != nil {
		return err
	}

	for _, account := range accounts {
		_, err := fmt.Fprintf(w, "%d, %s, %s, %s, %t\n",
			account.ID,
			account.Available.StringFixed(4),
			account.Held.StringFixed(4),
			account.Total.StringFixed(4),
			account.Locked,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
