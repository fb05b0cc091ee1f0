package expenses

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ledgerColumns is the canonical column order of the ledger file.
var ledgerColumns = []string{"Date", "Merchant", "Amount", "Source", "Deleted", "Type"}

// DecodeRecords decodes the ledger CSV from 'r' and returns the records in
// file order.
//
// The header row drives the decoding: columns may appear in any order, and
// files written before the Source, Deleted or Type columns existed are
// upgraded on read by backfilling defaults. Date, Merchant and Amount are
// required; anything that prevents a full parse of the file is returned as an
// error so the caller can treat the file as corrupted.
func DecodeRecords(r io.Reader) (Records, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("ledger file is empty, missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("could not read ledger header: %w", err)
	}

	// Map canonical column names to their position in this file.
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Date", "Merchant", "Amount"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("ledger header is missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records Records
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read ledger row: %w", err)
		}

		var rec Record

		day, err := ParseDate(field(row, "Date"))
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", line, err)
		}
		rec.Date = day

		rec.Merchant = field(row, "Merchant")

		amount, err := decimal.NewFromString(field(row, "Amount"))
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: invalid amount %q: %w", line, field(row, "Amount"), err)
		}
		rec.Amount = amount

		rec.Source = field(row, "Source")

		if v := field(row, "Deleted"); v != "" {
			deleted, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("ledger line %d: invalid deleted flag %q: %w", line, v, err)
			}
			rec.Deleted = deleted
		}

		if v := field(row, "Type"); v != "" {
			txType, err := ParseTxType(v)
			if err != nil {
				return nil, fmt.Errorf("ledger line %d: %w", line, err)
			}
			rec.Type = txType
		}

		records = append(records, rec.normalize())
	}

	return records, nil
}

// EncodeRecords reorders records by date and persists them to 'w' as CSV with
// the canonical header. The sort is stable, records on the same day keep
// their original relative order.
func EncodeRecords(w io.Writer, records Records) error {
	records.stableSort()

	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerColumns); err != nil {
		return fmt.Errorf("could not write ledger header: %w", err)
	}

	for _, r := range records {
		r = r.normalize()
		row := []string{
			r.Date.String(),
			r.Merchant,
			r.Amount.StringFixed(2),
			r.Source,
			strconv.FormatBool(r.Deleted),
			string(r.Type),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("could not write ledger row for %s: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
