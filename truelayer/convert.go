package truelayer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etnz/expenses"
)

// Convert turns raw feed transactions into an ingestion batch for the
// ledger. Malformed transactions are skipped and logged rather than failing
// the batch: one odd row from a bank must not block a whole sync.
func Convert(transactions []Transaction) *expenses.Batch {
	batch := expenses.NewBatch("Date", "Merchant", "Amount", "Type")
	var badDates, badAmounts, noMerchant int

	for _, tx := range transactions {
		day, err := parseTimestamp(tx.Timestamp)
		if err != nil {
			badDates++
			logger.Debug().Str("timestamp", tx.Timestamp).Msg("skipping transaction with unreadable timestamp")
			continue
		}
		merchant := strings.TrimSpace(tx.Description)
		if merchant == "" {
			noMerchant++
			continue
		}
		amount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			badAmounts++
			logger.Debug().Str("amount", tx.Amount).Msg("skipping transaction with unreadable amount")
			continue
		}

		batch.Add(expenses.Candidate{
			Date:     day.String(),
			Merchant: merchant,
			Amount:   amount.Abs().String(),
			Type:     string(txType(tx.Type, amount)),
		})
	}

	if skipped := badDates + badAmounts + noMerchant; skipped > 0 {
		logger.Warn().
			Int("bad_dates", badDates).
			Int("bad_amounts", badAmounts).
			Int("no_merchant", noMerchant).
			Msg("skipped transactions from the bank feed")
	}
	return batch
}

// txType maps the bank's transaction type onto the ledger's. Unknown labels
// count as expenses, and when the bank says nothing the sign decides: feeds
// report money out as negative amounts.
func txType(kind string, amount decimal.Decimal) expenses.TxType {
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "DEBIT":
		return expenses.Expense
	case "CREDIT":
		return expenses.Income
	case "":
		if amount.IsNegative() {
			return expenses.Expense
		}
		return expenses.Income
	}
	return expenses.Expense
}

// parseTimestamp reads a feed timestamp, a full ISO 8601 instant or a bare
// date, into a ledger date.
func parseTimestamp(s string) (expenses.Date, error) {
	if day, err := expenses.ParseDate(s); err == nil {
		return day, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return expenses.Date{}, err
	}
	return expenses.NewDate(t.Date()), nil
}
