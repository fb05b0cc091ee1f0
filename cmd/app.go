// Package cmd implements the CLI application to manage the expenses ledger.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/etnz/expenses"
	ilog "github.com/etnz/expenses/internal/logger"
	"github.com/google/subcommands"
)

// logger is the package logger.
var logger = ilog.Get()

// Register wires every subcommand into the commander. A main package calls
// Register, then Execute runs the one the user picked.
func Register(c *subcommands.Commander) {
	register(c, &addCmd{}, "ledger")
	register(c, &importCmd{}, "ledger")
	register(c, &listCmd{}, "ledger")
	register(c, &deleteCmd{}, "ledger")
	register(c, &undeleteCmd{}, "ledger")
	register(c, &fmtCmd{}, "ledger")

	register(c, &backupCmd{}, "backups")
	register(c, &backupsCmd{}, "backups")
	register(c, &recoverCmd{}, "backups")

	register(c, &summaryCmd{}, "insight")
	register(c, &categoriesCmd{}, "insight")
	register(c, &aliasCmd{}, "insight")
	register(c, &suggestCmd{}, "insight")

	register(c, &connectCmd{}, "bank")
	register(c, &connectionsCmd{}, "bank")
	register(c, &syncCmd{}, "bank")

	register(c, &topicCmd{}, "docs")
}

// known collects the built-in command names so main can tell a typo from a
// call to an external exps-<name> extension.
var known = map[string]bool{}

func register(c *subcommands.Commander, cmd subcommands.Command, group string) {
	known[cmd.Name()] = true
	c.Register(cmd, group)
}

// Known reports whether name is a built-in subcommand.
func Known(name string) bool { return known[name] }

// As a CLI application the process is short-lived, so a package-level flag
// for the shared data directory is fine.
var dataDir = flag.String("dir", "", "data directory (default: $EXPENSES_DIR, else the user config dir)")

// openConfig loads the configuration for the selected data directory.
func openConfig() (*expenses.Config, error) {
	dir := *dataDir
	if dir == "" {
		dir = expenses.DefaultDir()
	}
	return expenses.LoadConfig(dir)
}

// openStore opens the ledger store on the configured directory.
func openStore() (*expenses.Store, error) {
	cfg, err := openConfig()
	if err != nil {
		return nil, err
	}
	return expenses.NewStore(cfg), nil
}

// loadRecords reads the ledger through the store and deals with a corrupted
// file: the notice is printed once, recovery from the newest backup is
// attempted, and the load is retried when the recovery succeeds.
func loadRecords(store *expenses.Store, includeDeleted bool) (expenses.Records, error) {
	records, notice, err := store.Load(includeDeleted)
	if err != nil || notice == nil {
		return records, err
	}
	store.CheckAndClearCorruption()
	fmt.Fprintf(os.Stderr, "Warning: %s\n", notice)

	if !store.Backups().AttemptAutoRecovery() {
		fmt.Fprintln(os.Stderr, "No backup could be restored, continuing with an empty ledger. See 'exps recover'.")
		return records, nil
	}
	fmt.Fprintln(os.Stderr, "Ledger restored from the most recent backup.")

	records, notice, err = store.Load(includeDeleted)
	if err != nil {
		return nil, err
	}
	if notice != nil {
		store.CheckAndClearCorruption()
		return nil, fmt.Errorf("the restored ledger is corrupted too: %s", notice.Reason)
	}
	return records, nil
}
