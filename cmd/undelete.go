package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/expenses"
)

type undeleteCmd struct {
	date     string
	merchant string
	amount   string
}

func (*undeleteCmd) Name() string     { return "undelete" }
func (*undeleteCmd) Synopsis() string { return "restore a deleted transaction" }
func (*undeleteCmd) Usage() string {
	return `exps undelete -d <date> -m <merchant> -a <amount>

  Clears the deleted marker from the matching transaction, the exact inverse
  of 'exps delete'. Find deleted transactions with 'exps list -deleted'.
`
}

func (c *undeleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "date of the transaction (YYYY-MM-DD)")
	f.StringVar(&c.merchant, "m", "", "exact merchant name of the transaction")
	f.StringVar(&c.amount, "a", "", "amount of the transaction")
}

func (c *undeleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	changed, err := store.Restore(expenses.Records{target})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if changed == 0 {
		fmt.Fprintln(os.Stderr, "No matching deleted transaction found.")
		return subcommands.ExitFailure
	}
	fmt.Printf("Restored %s at %s on %s.\n", c.amount, c.merchant, c.date)
	return subcommands.ExitSuccess
}
