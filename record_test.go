package expenses

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecordKey(t *testing.T) {
	day := NewDate(2025, 1, 15)

	a := Record{Date: day, Merchant: "Store", Amount: decimal.New(10, 0)}
	b := Record{Date: day, Merchant: "Store", Amount: decimal.RequireFromString("10.00")}
	if a.Key() != b.Key() {
		t.Errorf("keys differ for the same transaction: %v vs %v", a.Key(), b.Key())
	}

	c := Record{Date: day, Merchant: "Store", Amount: decimal.RequireFromString("10.004")}
	if a.Key() != c.Key() {
		t.Errorf("amount should be keyed at 2 decimals: %v vs %v", a.Key(), c.Key())
	}

	d := Record{Date: day.Add(1), Merchant: "Store", Amount: decimal.New(10, 0)}
	if a.Key() == d.Key() {
		t.Errorf("different days must not share a key")
	}
}

func TestRecordNormalize(t *testing.T) {
	r := Record{
		Date:     NewDate(2025, 1, 15),
		Merchant: "Store",
		Amount:   decimal.RequireFromString("12.349"),
	}
	n := r.normalize()

	if got := n.Amount.StringFixed(2); got != "12.35" {
		t.Errorf("normalize amount = %s, want 12.35", got)
	}
	if n.Source != SourceUnknown {
		t.Errorf("normalize source = %q, want %q", n.Source, SourceUnknown)
	}
	if n.Type != Expense {
		t.Errorf("normalize type = %q, want %q", n.Type, Expense)
	}
}

func TestParseTxType(t *testing.T) {
	tests := []struct {
		input   string
		want    TxType
		wantErr bool
	}{
		{"expense", Expense, false},
		{"income", Income, false},
		{"", "", true},
		{"Income", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTxType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTxType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTxType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecordsDedupe(t *testing.T) {
	day := NewDate(2025, 1, 15)
	existing := Record{Date: day, Merchant: "Store", Amount: decimal.New(10, 0), Source: "Manual"}
	incoming := Record{Date: day, Merchant: "Store", Amount: decimal.New(10, 0), Source: "CSV Import"}
	other := Record{Date: day, Merchant: "Cafe", Amount: decimal.New(3, 0)}

	got := Records{existing, other, incoming}.dedupe()
	if len(got) != 2 {
		t.Fatalf("dedupe kept %d records, want 2", len(got))
	}
	// The first occurrence wins: the surviving Store record is the existing one.
	if got[0].Source != "Manual" {
		t.Errorf("dedupe kept the wrong duplicate: source = %q, want Manual", got[0].Source)
	}
}

func TestRecordsSorted(t *testing.T) {
	rs := Records{
		{Date: NewDate(2025, 3, 1), Merchant: "Later", Amount: decimal.New(1, 0)},
		{Date: NewDate(2025, 1, 15), Merchant: "First", Amount: decimal.New(2, 0)},
		{Date: NewDate(2025, 1, 15), Merchant: "Second", Amount: decimal.New(3, 0)},
	}
	got := rs.Sorted()

	want := []string{"First", "Second", "Later"}
	for i, merchant := range want {
		if got[i].Merchant != merchant {
			t.Fatalf("Sorted()[%d] = %q, want %q", i, got[i].Merchant, merchant)
		}
	}
	// Sorted returns a copy, the receiver keeps its order.
	if rs[0].Merchant != "Later" {
		t.Errorf("Sorted() reordered the receiver")
	}
}

func TestRecordsActive(t *testing.T) {
	day := NewDate(2025, 1, 15)
	rs := Records{
		{Date: day, Merchant: "Keep", Amount: decimal.New(1, 0)},
		{Date: day, Merchant: "Gone", Amount: decimal.New(2, 0), Deleted: true},
	}
	active := rs.Active()
	if len(active) != 1 || active[0].Merchant != "Keep" {
		t.Errorf("Active() = %v, want only the Keep record", active)
	}
}
