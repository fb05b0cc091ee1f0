package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/expenses"
)

type importCmd struct {
	source string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a bank CSV export" }
func (*importCmd) Usage() string {
	return `exps import [-s <source>] <file.csv>

  Reads a bank CSV export and appends its transactions to the ledger.
  Column names are matched flexibly (Date/Transaction Date, Merchant/
  Description/Payee, Amount/Value) and malformed rows are skipped.
  Importing the same file twice adds nothing.

Usage Examples:
$ exps import statements/march.csv
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "s", "CSV Import", "source tag stored with the imported records")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one CSV file.")
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	batch, err := expenses.ImportCSV(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	added, err := store.Append(batch, c.source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Imported %d new transactions from %s (%d candidates, %d already known).\n",
		added, f.Arg(0), batch.Len(), batch.Len()-added)
	return subcommands.ExitSuccess
}
