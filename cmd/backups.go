package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/expenses/renderer"
)

type backupsCmd struct{}

func (*backupsCmd) Name() string     { return "backups" }
func (*backupsCmd) Synopsis() string { return "list the available backup archives" }
func (*backupsCmd) Usage() string {
	return `exps backups

  Lists the backup archives, newest first, with their size and an aggregate
  line. Emergency archives taken before a restore are not part of the
  rotation and are not listed.
`
}

func (*backupsCmd) SetFlags(f *flag.FlagSet) {}

func (c *backupsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	bm := store.Backups()
	printMarkdown(renderer.BackupsMarkdown(bm.List(), bm.Stats()))
	return subcommands.ExitSuccess
}
