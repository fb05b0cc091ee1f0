package expenses

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// TxType is a typed string for the direction of a transaction.
type TxType string

// Transaction directions. The amount itself is always a magnitude, the
// direction is carried here.
const (
	Expense TxType = "expense"
	Income  TxType = "income"
)

// SourceUnknown is the sentinel provenance tag for records that carry no source.
const SourceUnknown = "Unknown"

// ParseTxType parses a string into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch s {
	case "expense":
		return Expense, nil
	case "income":
		return Income, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Record is the atomic unit of the ledger: one transaction.
type Record struct {
	Date     Date            // calendar day of the transaction
	Merchant string          // display name, never empty for a valid record
	Amount   decimal.Decimal // non-negative magnitude, 2 fractional digits
	Source   string          // provenance tag, e.g. "CSV Import", "TrueLayer - Monzo"
	Deleted  bool            // soft-delete marker, records are never physically removed
	Type     TxType          // expense or income
}

// Key identifies "the same transaction" across repeated imports.
//
// It is a deliberate simplification: two genuinely distinct transactions with
// the same merchant, amount and date collide. The tie-break is unspecified in
// the ledger semantics, so the collision is kept, not fixed.
type Key struct {
	Date     Date
	Merchant string
	Amount   string // fixed 2-decimal form, so 10 and 10.00 collide as intended
}

// Key returns the identity key of the record.
func (r Record) Key() Key {
	return Key{Date: r.Date, Merchant: r.Merchant, Amount: r.Amount.Round(2).StringFixed(2)}
}

// normalize returns a copy of r with the amount rounded to 2 decimals and
// missing source/type backfilled with their defaults.
func (r Record) normalize() Record {
	r.Amount = r.Amount.Round(2)
	if r.Source == "" {
		r.Source = SourceUnknown
	}
	if r.Type == "" {
		r.Type = Expense
	}
	return r
}

// Equal reports whether two records are identical field for field.
func (r Record) Equal(o Record) bool {
	return r.Date == o.Date &&
		r.Merchant == o.Merchant &&
		r.Amount.Equal(o.Amount) &&
		r.Source == o.Source &&
		r.Deleted == o.Deleted &&
		r.Type == o.Type
}

func (r Record) String() string {
	return fmt.Sprintf("%s %s %s (%s)", r.Date, r.Merchant, r.Amount.StringFixed(2), r.Type)
}

// Records is a set of ledger records.
type Records []Record

// Keys returns the set of identity keys present in the records.
func (rs Records) Keys() map[Key]struct{} {
	keys := make(map[Key]struct{}, len(rs))
	for _, r := range rs {
		keys[r.Key()] = struct{}{}
	}
	return keys
}

// Active returns the records that are not soft-deleted.
func (rs Records) Active() Records {
	active := make(Records, 0, len(rs))
	for _, r := range rs {
		if !r.Deleted {
			active = append(active, r)
		}
	}
	return active
}

// Filter returns the records matching all the given predicates.
func (rs Records) Filter(predicates ...func(Record) bool) Records {
	kept := make(Records, 0, len(rs))
	for _, r := range rs {
		ok := true
		for _, p := range predicates {
			if !p(r) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, r)
		}
	}
	return kept
}

// stableSort sorts the records by date. The sort is stable, records on the
// same day keep their original relative order.
func (rs Records) stableSort() {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Date.Before(rs[j].Date)
	})
}

// Sorted returns a copy of the records sorted by date, oldest first. Records
// on the same day keep their relative order.
func (rs Records) Sorted() Records {
	out := make(Records, len(rs))
	copy(out, rs)
	out.stableSort()
	return out
}

// dedupe returns the records with identity-key duplicates removed, keeping the
// first occurrence. Appending existing records before new ones therefore makes
// existing rows win, which is what makes repeated imports idempotent.
func (rs Records) dedupe() Records {
	seen := make(map[Key]struct{}, len(rs))
	out := make(Records, 0, len(rs))
	for _, r := range rs {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
