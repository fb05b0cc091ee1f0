package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type backupCmd struct {
	force bool
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "snapshot the data files into a backup archive" }
func (*backupCmd) Usage() string {
	return `exps backup [-force]

  Packs the ledger and its side files into a timestamped tar.gz archive under
  the data directory. Backups also happen automatically before every change,
  at most one per throttle interval; -force bypasses the throttle.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "take the snapshot even if a recent backup exists")
}

func (c *backupCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	path, err := store.Backups().Create(c.force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if path == "" {
		fmt.Println("Backup skipped: nothing to back up yet, or a recent backup exists (use -force).")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Backup written to %s.\n", path)
	return subcommands.ExitSuccess
}
