package expenses

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Predicate constructors for Records.Filter. Commands build the list from
// their flags, an unset flag simply contributes no predicate.

// ByType keeps records of the given transaction type.
func ByType(t TxType) func(Record) bool {
	return func(r Record) bool { return r.Type == t }
}

// ByMerchant keeps records whose merchant name contains the fragment,
// case-insensitively.
func ByMerchant(fragment string) func(Record) bool {
	fragment = strings.ToLower(fragment)
	return func(r Record) bool {
		return strings.Contains(strings.ToLower(r.Merchant), fragment)
	}
}

// ByRange keeps records dated within [from, to]. A zero date leaves that side
// of the range open.
func ByRange(from, to Date) func(Record) bool {
	return func(r Record) bool {
		if !from.IsZero() && r.Date.Before(from) {
			return false
		}
		if !to.IsZero() && r.Date.After(to) {
			return false
		}
		return true
	}
}

// MinAmount keeps records with an amount of at least min.
func MinAmount(min decimal.Decimal) func(Record) bool {
	return func(r Record) bool { return r.Amount.GreaterThanOrEqual(min) }
}

// MaxAmount keeps records with an amount of at most max.
func MaxAmount(max decimal.Decimal) func(Record) bool {
	return func(r Record) bool { return r.Amount.LessThanOrEqual(max) }
}
