package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/etnz/expenses"
	"github.com/etnz/expenses/renderer"
	"github.com/google/subcommands"
)

// aliasCmd holds the flags for the 'alias' subcommand.
type aliasCmd struct {
	rm string
}

func (*aliasCmd) Name() string     { return "alias" }
func (*aliasCmd) Synopsis() string { return "manage merchant display aliases" }
func (*aliasCmd) Usage() string {
	return `exps alias [<pattern> <display name>] [-rm <pattern>]

  Without arguments, lists the alias rules. With a pattern and a display
  name, adds a rule: the pattern is a case-insensitive regular expression
  matched against raw merchant names, and matching transactions show the
  display name instead. The ledger keeps the raw name.
`
}

func (c *aliasCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rm, "rm", "", "Remove the alias with this pattern.")
}

func (c *aliasCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := openConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.rm != "" {
		aliases := expenses.LoadAliases(cfg)
		if _, ok := aliases[c.rm]; !ok {
			fmt.Fprintf(os.Stderr, "Error: no alias with pattern %q.\n", c.rm)
			return subcommands.ExitFailure
		}
		delete(aliases, c.rm)
		if err := expenses.SaveAliases(cfg, aliases); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Removed alias %q.\n", c.rm)
		return subcommands.ExitSuccess
	}

	switch f.NArg() {
	case 0:
		printMarkdown(renderer.AliasesMarkdown(expenses.LoadAliases(cfg)))
		return subcommands.ExitSuccess
	case 2:
		pattern, display := f.Arg(0), f.Arg(1)
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid pattern %q: %v\n", pattern, err)
			return subcommands.ExitUsageError
		}
		aliases := expenses.LoadAliases(cfg)
		aliases[pattern] = display
		if err := expenses.SaveAliases(cfg, aliases); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Merchants matching %q now display as %q.\n", pattern, display)
		return subcommands.ExitSuccess
	default:
		fmt.Fprintln(os.Stderr, "Error: expected no arguments, or exactly <pattern> <display name>.")
		return subcommands.ExitUsageError
	}
}
