package cmd

import (
	"reflect"
	"testing"

	"github.com/etnz/expenses"
)

func TestUncategorizedMerchants(t *testing.T) {
	records := expenses.Records{
		{Merchant: "Shell", Type: expenses.Expense},
		{Merchant: "Starbucks", Type: expenses.Expense},
		{Merchant: "Shell", Type: expenses.Expense}, // repeats collapse
		{Merchant: "ACME Corp", Type: expenses.Income},
		{Merchant: "Netflix", Type: expenses.Expense},
	}
	assignments := map[string]string{"Netflix": "Subscriptions"}

	got := uncategorizedMerchants(records, expenses.Expense, assignments)
	want := []string{"Shell", "Starbucks"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("uncategorizedMerchants() = %v, want %v", got, want)
	}

	got = uncategorizedMerchants(records, expenses.Income, assignments)
	want = []string{"ACME Corp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("uncategorizedMerchants(income) = %v, want %v", got, want)
	}

	if got := uncategorizedMerchants(nil, expenses.Expense, nil); len(got) != 0 {
		t.Errorf("uncategorizedMerchants(nil) = %v, want none", got)
	}
}
