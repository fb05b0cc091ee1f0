package expenses

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount magnitude in the given display currency,
// e.g. FormatAmount(d, "USD") -> "$1,234.50". Amounts in the ledger carry no
// currency of their own, the display currency is a report-level setting.
func FormatAmount(value decimal.Decimal, currency string) string {
	// to get a never nil currency we need to call the Money constructor
	cur := *money.New(0, currency).Currency()
	shifted := value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(shifted.IntPart())
}
