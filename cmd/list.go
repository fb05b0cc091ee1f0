package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/etnz/expenses"
	"github.com/etnz/expenses/renderer"
)

type listCmd struct {
	start    string
	end      string
	merchant string
	txType   string
	min      string
	max      string
	deleted  bool
	head     int
	tail     int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list ledger transactions" }
func (*listCmd) Usage() string {
	return `exps list [-s <start>] [-d <end>] [-m <merchant>] [-t <type>] [-min <amount>] [-max <amount>] [-deleted] [-head <n> | -tail <n>]

  Lists transactions, oldest first, with options for filtering and limiting
  the output. Merchant aliases and category assignments are applied to the
  display.

Usage Examples:
$ exps list -s 2025-03-01 -d 2025-03-31
$ exps list -m coffee -max 10
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "start date of the range (YYYY-MM-DD)")
	f.StringVar(&c.end, "d", "", "end date of the range (YYYY-MM-DD)")
	f.StringVar(&c.merchant, "m", "", "keep merchants containing this text")
	f.StringVar(&c.txType, "t", "", "keep only this transaction type (expense, income)")
	f.StringVar(&c.min, "min", "", "keep amounts of at least this value")
	f.StringVar(&c.max, "max", "", "keep amounts of at most this value")
	f.BoolVar(&c.deleted, "deleted", false, "include soft-deleted transactions, struck through")
	f.IntVar(&c.head, "head", 0, "show only the first N transactions")
	f.IntVar(&c.tail, "tail", 0, "show only the last N transactions")
}

// predicates turns the filter flags into Records predicates.
func (c *listCmd) predicates() ([]func(expenses.Record) bool, error) {
	var preds []func(expenses.Record) bool

	if c.merchant != "" {
		preds = append(preds, expenses.ByMerchant(c.merchant))
	}
	if c.txType != "" {
		t, err := expenses.ParseTxType(c.txType)
		if err != nil {
			return nil, err
		}
		preds = append(preds, expenses.ByType(t))
	}
	if c.min != "" {
		min, err := decimal.NewFromString(c.min)
		if err != nil {
			return nil, fmt.Errorf("invalid -min amount %q", c.min)
		}
		preds = append(preds, expenses.MinAmount(min))
	}
	if c.max != "" {
		max, err := decimal.NewFromString(c.max)
		if err != nil {
			return nil, fmt.Errorf("invalid -max amount %q", c.max)
		}
		preds = append(preds, expenses.MaxAmount(max))
	}
	if c.start != "" || c.end != "" {
		var from, to expenses.Date
		var err error
		if c.start != "" {
			if from, err = expenses.ParseDate(c.start); err != nil {
				return nil, fmt.Errorf("invalid start date: %w", err)
			}
		}
		if c.end != "" {
			if to, err = expenses.ParseDate(c.end); err != nil {
				return nil, fmt.Errorf("invalid end date: %w", err)
			}
		}
		preds = append(preds, expenses.ByRange(from, to))
	}
	return preds, nil
}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail cannot be used together.")
		return subcommands.ExitUsageError
	}
	preds, err := c.predicates()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	records, err := loadRecords(store, c.deleted)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	records = records.Filter(preds...).Sorted()
	if c.head > 0 && len(records) > c.head {
		records = records[:c.head]
	}
	if c.tail > 0 && len(records) > c.tail {
		records = records[len(records)-c.tail:]
	}

	cfg := store.Config()
	aliaser := expenses.NewAliaser(expenses.LoadAliases(cfg))
	printMarkdown(renderer.TransactionsMarkdown(records, renderer.TransactionsOptions{
		Currency:    cfg.Currency,
		Alias:       aliaser.Display,
		Categories:  expenses.LoadAssignments(cfg),
		ShowDeleted: c.deleted,
	}))
	return subcommands.ExitSuccess
}
