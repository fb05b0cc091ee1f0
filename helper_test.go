package expenses

import (
	"testing"

	"github.com/shopspring/decimal"
)

// d is a helper for tests to create a decimal from a string const.
func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// rec is a helper for tests to create an active expense record.
func rec(day string, merchant string, amount string) Record {
	return Record{
		Date:     MustParse(day),
		Merchant: merchant,
		Amount:   d(amount),
		Source:   "Test",
		Type:     Expense,
	}
}

// testConfig returns a default configuration rooted in a fresh temp directory.
func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	return cfg
}
