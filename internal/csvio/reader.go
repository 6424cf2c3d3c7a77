package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/payengine/internal/domain"
)

// Reader is the record source: it streams validated transaction records from
// CSV input into the engine's hand-off channel. Only syntactically valid
// records cross this boundary, so the engine never sees an unknown kind, a
// missing amount, or a negative amount.
type Reader struct {
	csv *csv.Reader
}

// NewReader wraps r in a record source. The input format is
// `type, client, tx, amount` with a header row; fields may carry surrounding
// whitespace and dispute-family rows may omit the amount column.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	return &Reader{csv: cr}
}

// Stream sends every record to records in input order and closes the channel
// once the input is exhausted, signalling end-of-stream to the consumer. The
// first malformed row or read failure stops the stream and is returned; rows
// already sent stay sent.
func (r *Reader) Stream(records chan<- domain.Record) error {
	defer close(records)

	for row := 0; ; row++ {
		fields, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		// Header row.
		if row == 0 {
			continue
		}

		rec, err := parseRow(fields)
		if err != nil {
			return fmt.Errorf("row %d: %w", row+1, err)
		}

		records <- rec
	}
}

func parseRow(fields []string) (domain.Record, error) {
	if len(fields) < 3 {
		return domain.Record{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	kind, err := domain.ParseKind(strings.TrimSpace(fields[0]))
	if err != nil {
		return domain.Record{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
	if err != nil {
		return domain.Record{}, fmt.Errorf("client id %q: %w", strings.TrimSpace(fields[1]), err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return domain.Record{}, fmt.Errorf("tx id %q: %w", strings.TrimSpace(fields[2]), err)
	}

	rec := domain.Record{
		Kind:   kind,
		Client: uint16(client),
		Tx:     uint32(tx),
	}

	// A trailing amount on a dispute-family row is discarded: the effective
	// amount always comes from history.
	if !kind.RequiresAmount() {
		return rec, nil
	}

	if len(fields) < 4 || strings.TrimSpace(fields[3]) == "" {
		return domain.Record{}, fmt.Errorf("%s requires an amount", kind)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(fields[3]))
	if err != nil {
		return domain.Record{}, fmt.Errorf("amount %q: %w", strings.TrimSpace(fields[3]), err)
	}

	if amount.IsNegative() {
		return domain.Record{}, fmt.Errorf("%s amount must not be negative, got %s", kind, amount)
	}

	rec.Amount = &amount

	return rec, nil
}
