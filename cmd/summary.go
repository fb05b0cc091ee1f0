package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/expenses"
	"github.com/etnz/expenses/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	start string
	end   string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a month-by-month spending summary" }
func (*summaryCmd) Usage() string {
	return `exps summary [-s <date>] [-d <date>]

  Displays per-month totals: expenses, income, net and a trend arrow
  comparing each month's spending to the previous one.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Only summarize transactions on or after this date.")
	f.StringVar(&c.end, "d", "", "Only summarize transactions on or before this date.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var from, to expenses.Date
	var err error
	if c.start != "" {
		if from, err = expenses.ParseDate(c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -s date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.end != "" {
		if to, err = expenses.ParseDate(c.end); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -d date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	records, err := loadRecords(store, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.start != "" || c.end != "" {
		records = records.Filter(expenses.ByRange(from, to))
	}

	summaries := expenses.MonthlySummary(records)
	printMarkdown(renderer.MonthlyMarkdown(summaries, store.Config().Currency))
	return subcommands.ExitSuccess
}
