package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "rewrite the ledger file in canonical form"
}
func (*fmtCmd) Usage() string {
	return `exps fmt

  Reads the whole ledger, drops identity-key duplicates keeping the first
  occurrence, sorts records by date and writes the file back. Useful after
  editing the CSV by hand.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	kept, dropped, err := store.Fmt()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if kept == 0 && dropped == 0 {
		fmt.Println("Ledger is empty, nothing to format.")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Ledger formatted: %d records kept, %d duplicates dropped.\n", kept, dropped)
	return subcommands.ExitSuccess
}
