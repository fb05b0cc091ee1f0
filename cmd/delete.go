package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/etnz/expenses"
)

type deleteCmd struct {
	date     string
	merchant string
	amount   string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "mark a transaction as deleted" }
func (*deleteCmd) Usage() string {
	return `exps delete -d <date> -m <merchant> -a <amount>

  Marks the matching transaction as deleted. The record stays in the ledger
  file, hidden from lists and reports, and re-importing the same transaction
  will not bring it back. Use 'exps undelete' to reverse.

Usage Examples:
$ exps delete -d 2025-03-02 -m "Coffee Corner" -a 3.50
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "date of the transaction (YYYY-MM-DD)")
	f.StringVar(&c.merchant, "m", "", "exact merchant name of the transaction")
	f.StringVar(&c.amount, "a", "", "amount of the transaction")
}

func (c *deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	target, err := targetRecord(c.date, c.merchant, c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	changed, err := store.SoftDelete(expenses.Records{target})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if changed == 0 {
		fmt.Fprintln(os.Stderr, "No matching active transaction found.")
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted %s at %s on %s.\n", c.amount, c.merchant, c.date)
	return subcommands.ExitSuccess
}

// targetRecord builds the identity a delete or undelete points at. All three
// parts of the identity key are required.
func targetRecord(date, merchant, amount string) (expenses.Record, error) {
	if date == "" || merchant == "" || amount == "" {
		return expenses.Record{}, fmt.Errorf("-d, -m and -a are all required to identify a transaction")
	}
	day, err := expenses.ParseDate(date)
	if err != nil {
		return expenses.Record{}, err
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return expenses.Record{}, fmt.Errorf("invalid amount %q", amount)
	}
	return expenses.Record{Date: day, Merchant: merchant, Amount: value}, nil
}
