package expenses

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// this file contains the adapters between foreign bank-export CSV files and
// candidate batches, plus the canonical export.

// csvHeaderAliases maps lowercased foreign headers to canonical columns. Bank
// exports never agree on naming, these cover the usual suspects.
var csvHeaderAliases = map[string]string{
	"date":             "Date",
	"transaction date": "Date",
	"posted date":      "Date",
	"merchant":         "Merchant",
	"description":      "Merchant",
	"payee":            "Merchant",
	"name":             "Merchant",
	"amount":           "Amount",
	"value":            "Amount",
	"type":             "Type",
	"transaction type": "Type",
}

// balanceImpactHeader is PayPal's way of flagging the rows that actually
// moved money. When the column is present, only Debit rows are transactions,
// the rest are memos and currency conversions.
const balanceImpactHeader = "balance impact"

var (
	parenAmount   = regexp.MustCompile(`^\((.*)\)$`)
	amountSymbols = regexp.MustCompile(`[€$£,\s]`)
)

// cleanAmount normalizes one raw amount cell: accounting parentheses become a
// leading minus, currency symbols, thousands separators and spaces are
// stripped. Cells that still do not parse come back as "0", bank exports use
// dashes and blanks for rows without an amount.
func cleanAmount(raw string) string {
	s := strings.TrimSpace(raw)
	if m := parenAmount.FindStringSubmatch(s); m != nil {
		s = "-" + m[1]
	}
	s = amountSymbols.ReplaceAllString(s, "")
	if _, err := decimal.NewFromString(s); err != nil {
		return "0"
	}
	return s
}

// parseBankDate reads the date formats seen in bank exports. Slash and dash
// forms are day-first, the feeds this deals with are European.
func parseBankDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if day, err := ParseDate(raw); err == nil {
		return day, nil
	}
	for _, layout := range []string{"2/1/2006", "2-1-2006", "2 Jan 2006", "2 January 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewDate(t.Date()), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", raw)
}

// ImportCSV reads a foreign bank-export CSV into a candidate batch.
//
// Headers are mapped case-insensitively through csvHeaderAliases, and Date,
// Merchant and Amount must all be found. Rows that cannot become a
// transaction are skipped with a log line, not failed: a bank export is not
// under the user's control and one broken row must not block the other
// thousand.
//
// The transaction type comes from the Type column when there is one,
// otherwise from the amount sign: money out is an expense, money in is
// income. Amounts are stored as magnitudes. Rows with neither a type nor a
// usable amount are dropped.
func ImportCSV(r io.Reader) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file has no header row")
	}

	columns := make(map[string]int)
	balanceImpact := -1
	for i, header := range rows[0] {
		h := strings.ToLower(strings.TrimSpace(header))
		if h == balanceImpactHeader {
			balanceImpact = i
			continue
		}
		canonical, ok := csvHeaderAliases[h]
		if !ok {
			continue
		}
		if _, taken := columns[canonical]; !taken {
			columns[canonical] = i
		}
	}

	var missing []string
	for _, required := range []string{"Date", "Merchant", "Amount"} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("cannot map required column(s): %s", strings.Join(missing, ", "))
	}

	cell := func(row []string, column string) string {
		idx, ok := columns[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	batch := NewBatch("Date", "Merchant", "Amount", "Type")
	var badDates, noMerchant, noAmount, notDebit int

	for n, row := range rows[1:] {
		day, err := parseBankDate(cell(row, "Date"))
		if err != nil {
			badDates++
			logger.Debug().Int("row", n+2).Str("date", cell(row, "Date")).Msg("skipping row with unreadable date")
			continue
		}

		merchant := strings.TrimSpace(cell(row, "Merchant"))
		if merchant == "" {
			noMerchant++
			logger.Debug().Int("row", n+2).Msg("skipping row without a merchant")
			continue
		}

		if balanceImpact >= 0 && balanceImpact < len(row) && strings.TrimSpace(row[balanceImpact]) != "Debit" {
			notDebit++
			logger.Debug().Int("row", n+2).Str("impact", row[balanceImpact]).Msg("skipping non-debit row")
			continue
		}

		amount := cleanAmount(cell(row, "Amount"))
		txType, explicit := mapTxType(cell(row, "Type"))
		if !explicit {
			switch {
			case strings.HasPrefix(amount, "-"):
				txType = Expense
			case amount == "0":
				noAmount++
				logger.Debug().Int("row", n+2).Str("amount", cell(row, "Amount")).Msg("skipping row without a usable amount")
				continue
			default:
				txType = Income
			}
		}

		batch.Add(Candidate{
			Date:     day.String(),
			Merchant: merchant,
			Amount:   strings.TrimPrefix(amount, "-"),
			Type:     string(txType),
		})
	}

	logger.Info().
		Int("rows", len(rows)-1).
		Int("candidates", batch.Len()).
		Int("bad_dates", badDates).
		Int("no_merchant", noMerchant).
		Int("no_amount", noAmount).
		Int("not_debit", notDebit).
		Msg("csv import mapped")
	return batch, nil
}

// mapTxType reads a foreign type cell. Bank exports write debit/credit where
// the ledger says expense/income.
func mapTxType(raw string) (TxType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "expense", "debit":
		return Expense, true
	case "income", "credit":
		return Income, true
	}
	return "", false
}

// ExportCSV writes the active records in the canonical ledger column order.
// The output is accepted back by both the ledger decoder and ImportCSV.
func ExportCSV(w io.Writer, records Records) error {
	return EncodeRecords(w, records.Active())
}
