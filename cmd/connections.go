package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/expenses/renderer"
	"github.com/etnz/expenses/truelayer"
	"github.com/google/subcommands"
)

// connectionsCmd holds the flags for the 'connections' subcommand.
type connectionsCmd struct {
	rm string
}

func (*connectionsCmd) Name() string     { return "connections" }
func (*connectionsCmd) Synopsis() string { return "list or remove bank connections" }
func (*connectionsCmd) Usage() string {
	return `exps connections [-rm <id>]

  Lists the stored bank connections. With -rm, forgets the connection with
  the given id; the transactions it imported stay in the ledger.
`
}

func (c *connectionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rm, "rm", "", "Remove the connection with this id.")
}

func (c *connectionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := openConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	store := truelayer.NewConnectionStore(cfg.ConnectionsFile())

	if c.rm != "" {
		if err := store.Remove(c.rm); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Removed connection %s.\n", c.rm)
		return subcommands.ExitSuccess
	}

	connections, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.ConnectionsMarkdown(connections))
	return subcommands.ExitSuccess
}
