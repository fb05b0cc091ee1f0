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

type addCmd struct {
	date   string
	txType string
	source string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a single transaction by hand" }
func (*addCmd) Usage() string {
	return `exps add [-d <date>] [-t <type>] [-s <source>] <merchant> <amount>

  Appends one transaction to the ledger. The amount is a plain decimal
  magnitude, the type tells whether money went out or came in.

Usage Examples:
$ exps add "Coffee Corner" 3.50
$ exps add -t income -d 2025-03-28 "ACME Corp" 1200
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", expenses.Today().String(), "transaction date (YYYY-MM-DD)")
	f.StringVar(&c.txType, "t", string(expenses.Expense), "transaction type: expense or income")
	f.StringVar(&c.source, "s", "Manual", "source tag stored with the record")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly <merchant> <amount>.")
		return subcommands.ExitUsageError
	}
	merchant, amount := f.Arg(0), f.Arg(1)

	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	batch := expenses.NewBatch("Date", "Merchant", "Amount", "Type")
	batch.Add(expenses.Candidate{
		Date:     c.date,
		Merchant: merchant,
		Amount:   amount,
		Type:     c.txType,
	})

	added, err := store.Append(batch, c.source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if added == 0 {
		fmt.Println("Already in the ledger, nothing added.")
		return subcommands.ExitSuccess
	}

	value, _ := decimal.NewFromString(amount) // validated by Append
	fmt.Printf("Added %s of %s at %s on %s.\n",
		c.txType, expenses.FormatAmount(value, store.Config().Currency), merchant, c.date)
	return subcommands.ExitSuccess
}
