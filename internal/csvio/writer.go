package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/punchamoorthee/payengine/internal/domain"
)

// outputPrecision is the fixed number of decimal places in the report.
const outputPrecision = 4

var reportHeader = []string{"client", "available", "held", "total", "locked"}

// WriteAccounts renders the final account snapshot as CSV, one row per
// account. Amounts are exact decimals rendered at fixed 4-decimal precision.
func WriteAccounts(w io.Writer, accounts []domain.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, acct := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acct.Client), 10),
			acct.Available.StringFixed(outputPrecision),
			acct.Held.StringFixed(outputPrecision),
			acct.Total().StringFixed(outputPrecision),
			strconv.FormatBool(acct.Locked),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write account %d: %w", acct.Client, err)
		}
	}

	cw.Flush()

	return cw.Error()
}
