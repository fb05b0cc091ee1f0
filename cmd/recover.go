package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type recoverCmd struct {
	from string
}

func (*recoverCmd) Name() string     { return "recover" }
func (*recoverCmd) Synopsis() string { return "restore the data files from a backup archive" }
func (*recoverCmd) Usage() string {
	return `exps recover [-from <archive>]

  Replaces the current data files with the content of a backup archive, the
  newest one by default. The state being replaced is archived first with an
  emergency_ prefix, so a recovery is itself recoverable.

Usage Examples:
$ exps recover
$ exps recover -from ~/expenses/auto_backups/backup_20250601_120000.tar.gz
`
}

func (c *recoverCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "archive to restore (default: the newest backup)")
}

func (c *recoverCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	bm := store.Backups()
	var ok bool
	if c.from != "" {
		ok = bm.RestoreFrom(c.from)
	} else {
		ok = bm.AttemptAutoRecovery()
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: recovery failed, the data files were left untouched.")
		return subcommands.ExitFailure
	}
	fmt.Println("Data files restored. The replaced state was archived with an emergency_ prefix.")
	return subcommands.ExitSuccess
}
