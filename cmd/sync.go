package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/expenses"
	"github.com/etnz/expenses/truelayer"
	"github.com/google/subcommands"
)

// syncCmd holds the flags for the 'sync' subcommand.
type syncCmd struct {
	days int
	id   string
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "import recent bank transactions" }
func (*syncCmd) Usage() string {
	return `exps sync [-days <n>] [-id <connection>]

  Fetches recent transactions from every bank connection and appends the
  new ones to the ledger. Transactions already in the ledger are skipped,
  so syncing twice is harmless.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 90, "How many days of history to fetch.")
	f.StringVar(&c.id, "id", "", "Only sync the connection with this id.")
}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	connections := truelayer.NewConnectionStore(store.Config().ConnectionsFile())
	conns, err := connections.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(conns) == 0 {
		fmt.Fprintln(os.Stderr, "No bank connections. Run 'exps connect' first.")
		return subcommands.ExitFailure
	}

	client, err := truelayer.NewClient(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	to := expenses.Today()
	from := to.Add(-c.days)

	total, failures, matched := 0, 0, false
	for i := range conns {
		conn := &conns[i]
		if c.id != "" && conn.ID != c.id {
			continue
		}
		matched = true

		added, err := c.syncConnection(ctx, client, store, connections, conn, from, to)
		total += added
		if err != nil {
			if errors.Is(err, truelayer.ErrReauthRequired) {
				fmt.Fprintf(os.Stderr, "Connection %s (%s) needs re-authorization: remove it with 'exps connections -rm %s' and run 'exps connect' again.\n", conn.ID, conn.Provider, conn.ID)
			} else {
				fmt.Fprintf(os.Stderr, "Connection %s (%s): %v\n", conn.ID, conn.Provider, err)
			}
			failures++
		}
	}
	if c.id != "" && !matched {
		fmt.Fprintf(os.Stderr, "Error: no connection with id %q.\n", c.id)
		return subcommands.ExitFailure
	}

	fmt.Printf("Sync complete: %d new transactions.\n", total)
	if failures > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// syncConnection imports one connection's accounts and returns how many
// transactions were new. Token refreshes and the sync time are persisted as
// they happen, so a failure halfway keeps the progress made.
func (c *syncCmd) syncConnection(ctx context.Context, client *truelayer.Client, store *expenses.Store, connections *truelayer.ConnectionStore, conn *truelayer.Connection, from, to expenses.Date) (int, error) {
	refreshed, err := client.EnsureFresh(ctx, conn)
	if err != nil {
		return 0, err
	}
	if refreshed {
		if err := connections.Update(*conn); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot save the refreshed tokens: %v\n", err)
		}
	}

	accounts, err := client.Accounts(ctx, conn.AccessToken)
	if err != nil {
		return 0, err
	}
	provider := truelayer.ProviderName(accounts)

	total := 0
	for _, account := range accounts {
		txs, err := client.Transactions(ctx, conn.AccessToken, account, from, to)
		if err != nil {
			return total, err
		}
		batch := truelayer.Convert(txs)
		source := fmt.Sprintf("%s - %s", provider, account.Name)
		added, err := store.Append(batch, source)
		if err != nil {
			return total, err
		}
		total += added
		fmt.Printf("%s: %d new transactions (%d fetched).\n", source, added, len(txs))
	}

	conn.LastSync = time.Now()
	if err := connections.Update(*conn); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot save the sync time: %v\n", err)
	}
	return total, nil
}
