package truelayer

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/etnz/expenses"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestConvert(t *testing.T) {
	transactions := []Transaction{
		{Timestamp: "2025-03-02T10:00:00Z", Description: "Coffee Corner", Amount: "-3.5", Type: "DEBIT"},
		{Timestamp: "2025-03-03T09:00:00Z", Description: "Salary", Amount: "1200", Type: "CREDIT"},
		{Timestamp: "2025-03-04", Description: "Mystery Fee", Amount: "-1.00", Type: "ATM"},
		{Timestamp: "2025-03-05T08:00:00Z", Description: "Refund", Amount: "7.20", Type: ""},
		{Timestamp: "2025-03-05T09:00:00Z", Description: "Grocers", Amount: "-42.07", Type: ""},
		{Timestamp: "not a time", Description: "Broken", Amount: "1", Type: "DEBIT"},
		{Timestamp: "2025-03-06T10:00:00Z", Description: "   ", Amount: "1", Type: "DEBIT"},
		{Timestamp: "2025-03-07T10:00:00Z", Description: "Bad Amount", Amount: "n/a", Type: "DEBIT"},
	}

	batch := Convert(transactions)

	want := []expenses.Candidate{
		{Date: "2025-03-02", Merchant: "Coffee Corner", Amount: "3.5", Type: "expense"},
		{Date: "2025-03-03", Merchant: "Salary", Amount: "1200", Type: "income"},
		{Date: "2025-03-04", Merchant: "Mystery Fee", Amount: "1", Type: "expense"},
		{Date: "2025-03-05", Merchant: "Refund", Amount: "7.2", Type: "income"},
		{Date: "2025-03-05", Merchant: "Grocers", Amount: "42.07", Type: "expense"},
	}
	if !reflect.DeepEqual(batch.Rows, want) {
		t.Errorf("Convert() rows = %+v, want %+v", batch.Rows, want)
	}
	for _, column := range []string{"Date", "Merchant", "Amount", "Type"} {
		if !batch.Has(column) {
			t.Errorf("Convert() batch missing column %q", column)
		}
	}
}

func TestTxType(t *testing.T) {
	tests := []struct {
		kind   string
		amount string
		want   expenses.TxType
	}{
		{"DEBIT", "10", expenses.Expense},
		{"debit", "10", expenses.Expense},
		{"CREDIT", "10", expenses.Income},
		{"STANDING_ORDER", "10", expenses.Expense},
		{"", "-10", expenses.Expense},
		{"", "10", expenses.Income},
		{"", "0", expenses.Income},
	}
	for _, tt := range tests {
		if got := txType(tt.kind, d(t, tt.amount)); got != tt.want {
			t.Errorf("txType(%q, %s) = %v, want %v", tt.kind, tt.amount, got, tt.want)
		}
	}
}
