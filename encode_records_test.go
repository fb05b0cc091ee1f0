package expenses

import (
	"strings"
	"testing"
)

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, rs Records)
	}{
		{
			name:  "full header",
			input: "Date,Merchant,Amount,Source,Deleted,Type\n2025-01-15,Store,10.00,Manual,false,expense\n",
			check: func(t *testing.T, rs Records) {
				if len(rs) != 1 {
					t.Fatalf("got %d records, want 1", len(rs))
				}
				r := rs[0]
				if r.Date != NewDate(2025, 1, 15) || r.Merchant != "Store" || r.Amount.StringFixed(2) != "10.00" {
					t.Errorf("decoded record = %v", r)
				}
				if r.Deleted || r.Type != Expense || r.Source != "Manual" {
					t.Errorf("decoded flags = %+v", r)
				}
			},
		},
		{
			name:  "legacy header is upgraded",
			input: "Date,Merchant,Amount\n2024-03-01,Cafe,3.50\n",
			check: func(t *testing.T, rs Records) {
				if len(rs) != 1 {
					t.Fatalf("got %d records, want 1", len(rs))
				}
				r := rs[0]
				if r.Source != SourceUnknown {
					t.Errorf("source = %q, want %q", r.Source, SourceUnknown)
				}
				if r.Deleted {
					t.Errorf("deleted = true, want false")
				}
				if r.Type != Expense {
					t.Errorf("type = %q, want expense", r.Type)
				}
			},
		},
		{
			name:  "columns in any order",
			input: "Amount,Date,Merchant\n5.25,2024-03-01,Cafe\n",
			check: func(t *testing.T, rs Records) {
				if len(rs) != 1 || rs[0].Merchant != "Cafe" || rs[0].Amount.StringFixed(2) != "5.25" {
					t.Errorf("decoded = %v", rs)
				}
			},
		},
		{
			name:  "python style booleans",
			input: "Date,Merchant,Amount,Source,Deleted,Type\n2024-03-01,Cafe,3.50,Manual,True,expense\n",
			check: func(t *testing.T, rs Records) {
				if len(rs) != 1 || !rs[0].Deleted {
					t.Errorf("True flag not decoded, got %v", rs)
				}
			},
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: true,
		},
		{
			name:    "missing required column",
			input:   "Date,Amount\n2024-03-01,3.50\n",
			wantErr: true,
		},
		{
			name:    "garbage amount",
			input:   "Date,Merchant,Amount\n2024-03-01,Cafe,abc\n",
			wantErr: true,
		},
		{
			name:    "garbage date",
			input:   "Date,Merchant,Amount\nnot-a-date,Cafe,3.50\n",
			wantErr: true,
		},
		{
			name:    "not a csv at all",
			input:   "\x00\x01\x02 binary garbage \"unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := DecodeRecords(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeRecords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, rs)
			}
		})
	}
}

func TestEncodeRecordsRoundTrip(t *testing.T) {
	records := Records{
		{Date: NewDate(2025, 2, 1), Merchant: "Later", Amount: d("20"), Type: Income, Source: "Manual"},
		{Date: NewDate(2025, 1, 15), Merchant: "Store", Amount: d("10.5"), Type: Expense, Source: "CSV Import"},
		{Date: NewDate(2025, 1, 15), Merchant: "Cafe", Amount: d("3.499"), Deleted: true},
	}

	var b strings.Builder
	if err := EncodeRecords(&b, records); err != nil {
		t.Fatalf("EncodeRecords() error = %v", err)
	}

	out := b.String()
	if !strings.HasPrefix(out, "Date,Merchant,Amount,Source,Deleted,Type\n") {
		t.Fatalf("missing canonical header, got:\n%s", out)
	}

	decoded, err := DecodeRecords(strings.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeRecords() error = %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("round trip lost records: got %d, want 3", len(decoded))
	}

	// Encode sorts chronologically, stable within a day.
	if decoded[0].Merchant != "Store" || decoded[1].Merchant != "Cafe" || decoded[2].Merchant != "Later" {
		t.Errorf("unexpected order: %v, %v, %v", decoded[0].Merchant, decoded[1].Merchant, decoded[2].Merchant)
	}
	if got := decoded[1].Amount.StringFixed(2); got != "3.50" {
		t.Errorf("amount not rounded on write: %s, want 3.50", got)
	}
	if !decoded[1].Deleted {
		t.Errorf("deleted flag lost in round trip")
	}
}
