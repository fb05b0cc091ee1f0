package expenses

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError carries every problem found in a candidate batch. Checks
// accumulate instead of stopping at the first failure, so the user can fix
// the whole input in one pass.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid candidate batch: %s", strings.Join(e.Errors, "; "))
}

// ValidateOptions bounds the sane-range checks. Zero fields fall back to the
// defaults: dates in [1900-01-01, today+1y], amounts up to 1,000,000.
type ValidateOptions struct {
	MinDate   Date
	MaxDate   Date
	MaxAmount decimal.Decimal
	Currency  string // used to format the amount bound in messages
}

func (o ValidateOptions) withDefaults() ValidateOptions {
	if o.MinDate.IsZero() {
		o.MinDate = NewDate(1900, 1, 1)
	}
	if o.MaxDate.IsZero() {
		o.MaxDate = Today().AddYear(1)
	}
	if o.MaxAmount.IsZero() {
		o.MaxAmount = decimal.New(1_000_000, 0)
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	return o
}

// Validate checks a candidate batch before it is allowed anywhere near the
// ledger file. It returns nil or a *ValidationError listing every failure.
//
// The schema check runs first and alone: without the Date, Merchant and
// Amount columns no row-level check makes sense. Row checks then accumulate
// counts of offending rows rather than indices, matching what a user can act
// on when importing a file with thousands of rows.
func Validate(b *Batch, opts ValidateOptions) error {
	opts = opts.withDefaults()

	var missing []string
	for _, required := range []string{"Date", "Merchant", "Amount"} {
		if !b.Has(required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Errors: []string{
			fmt.Sprintf("missing required column(s): %s", strings.Join(missing, ", ")),
		}}
	}

	if len(b.Rows) == 0 {
		logger.Info().Msg("validating an empty candidate batch, unusual but valid")
		return nil
	}

	var (
		badDates     int
		outOfRange   int
		noMerchant   int
		badAmounts   int
		hugeAmounts  int
		zeroAmounts  int
		unknownTypes int
	)

	for _, row := range b.Rows {
		day, err := ParseDate(row.Date)
		switch {
		case err != nil:
			badDates++
		case day.Before(opts.MinDate) || day.After(opts.MaxDate):
			outOfRange++
		}

		if strings.TrimSpace(row.Merchant) == "" {
			noMerchant++
		}

		amount, err := decimal.NewFromString(row.Amount)
		switch {
		case err != nil:
			badAmounts++
		case amount.Abs().GreaterThan(opts.MaxAmount):
			hugeAmounts++
		case amount.IsZero():
			zeroAmounts++
		}

		if row.Type != "" {
			if _, err := ParseTxType(row.Type); err != nil {
				unknownTypes++
			}
		}
	}

	var errs []string
	if badDates > 0 {
		errs = append(errs, fmt.Sprintf("found %d row(s) with invalid dates that cannot be parsed", badDates))
	}
	if outOfRange > 0 {
		errs = append(errs, fmt.Sprintf("found %d row(s) with dates outside the range [%s, %s]", outOfRange, opts.MinDate, opts.MaxDate))
	}
	if noMerchant > 0 {
		errs = append(errs, fmt.Sprintf("found %d row(s) with empty or missing merchant names", noMerchant))
	}
	if badAmounts > 0 {
		errs = append(errs, fmt.Sprintf("found %d row(s) with non-numeric amounts", badAmounts))
	}
	if hugeAmounts > 0 {
		errs = append(errs, fmt.Sprintf("found %d row(s) with amounts (absolute value) exceeding %s", hugeAmounts, FormatAmount(opts.MaxAmount, opts.Currency)))
	}
	if unknownTypes > 0 {
		errs = append(errs, fmt.Sprintf("found %d row(s) with unknown transaction types", unknownTypes))
	}

	if zeroAmounts > 0 {
		logger.Info().Int("rows", zeroAmounts).Msg("zero amounts found, allowed but unusual")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
