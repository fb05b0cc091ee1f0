package expenses

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Candidate is one raw row of an ingestion batch. Fields stay strings until
// the batch has been validated, parsing happens once in records.
type Candidate struct {
	Date     string
	Merchant string
	Amount   string
	Source   string // optional, overrides the batch-level source
	Type     string // optional, "expense" or "income"
}

// Batch is a set of candidate records produced by an ingestion adapter: a
// manual entry form, a CSV import or a bank feed. The adapter declares which
// of the canonical columns it filled, so the validator can tell a missing
// column from an empty value.
type Batch struct {
	columns map[string]bool
	Rows    []Candidate
}

// NewBatch creates a batch declaring the given canonical columns.
func NewBatch(columns ...string) *Batch {
	b := &Batch{columns: make(map[string]bool, len(columns))}
	for _, c := range columns {
		b.columns[c] = true
	}
	return b
}

// Has reports whether the batch declares the given column.
func (b *Batch) Has(column string) bool { return b.columns[column] }

// Add appends candidate rows to the batch.
func (b *Batch) Add(rows ...Candidate) { b.Rows = append(b.Rows, rows...) }

// Len returns the number of candidate rows.
func (b *Batch) Len() int { return len(b.Rows) }

// records converts the batch into normalized ledger records. The batch must
// have been validated first: parse failures here are returned as errors, not
// accumulated.
//
// Rows without their own source get 'source'; rows without a type default to
// expense. New records are never born deleted.
func (b *Batch) records(source string) (Records, error) {
	records := make(Records, 0, len(b.Rows))
	for i, row := range b.Rows {
		day, err := ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("candidate row %d: %w", i+1, err)
		}
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("candidate row %d: invalid amount %q: %w", i+1, row.Amount, err)
		}

		rec := Record{
			Date:     day,
			Merchant: row.Merchant,
			Amount:   amount,
			Source:   row.Source,
		}
		if rec.Source == "" {
			rec.Source = source
		}
		if row.Type != "" {
			txType, err := ParseTxType(row.Type)
			if err != nil {
				return nil, fmt.Errorf("candidate row %d: %w", i+1, err)
			}
			rec.Type = txType
		}
		records = append(records, rec.normalize())
	}
	return records, nil
}
