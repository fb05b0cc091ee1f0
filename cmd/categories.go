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

// categoriesCmd holds the flags for the 'categories' subcommand.
type categoriesCmd struct {
	add      string
	txType   string
	merchant string
	category string
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list category names and assign them to merchants" }
func (*categoriesCmd) Usage() string {
	return `exps categories [-add <name> [-t <type>]] [-merchant <name> -category <name>]

  Without flags, lists the known category names per transaction type.
  With -add, adds a new category name to pick from.
  With -merchant and -category, assigns a category to a merchant; an empty
  -category removes the assignment.
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.add, "add", "", "Add a category name.")
	f.StringVar(&c.txType, "t", string(expenses.Expense), "Transaction type for -add: 'expense' or 'income'.")
	f.StringVar(&c.merchant, "merchant", "", "Merchant to assign a category to.")
	f.StringVar(&c.category, "category", "", "Category to assign, empty to remove the assignment.")
}

func (c *categoriesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := openConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	switch {
	case c.add != "":
		t, err := expenses.ParseTxType(c.txType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		set := expenses.LoadCategorySet(cfg)
		if !set.Add(t, c.add) {
			fmt.Printf("Category %q already exists.\n", c.add)
			return subcommands.ExitSuccess
		}
		if err := expenses.SaveCategorySet(cfg, set); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Added %s category %q.\n", t, c.add)
		return subcommands.ExitSuccess

	case c.merchant != "":
		assignments := expenses.LoadAssignments(cfg)
		if c.category == "" {
			if _, ok := assignments[c.merchant]; !ok {
				fmt.Fprintf(os.Stderr, "Error: no category assigned to %q.\n", c.merchant)
				return subcommands.ExitFailure
			}
			delete(assignments, c.merchant)
		} else {
			assignments[c.merchant] = c.category
		}
		if err := expenses.SaveAssignments(cfg, assignments); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if c.category == "" {
			fmt.Printf("Removed the category assigned to %s.\n", c.merchant)
		} else {
			fmt.Printf("Assigned category %s to %s.\n", c.category, c.merchant)
		}
		return subcommands.ExitSuccess

	case c.category != "":
		fmt.Fprintln(os.Stderr, "Error: -category requires -merchant.")
		return subcommands.ExitUsageError
	}

	printMarkdown(renderer.CategoriesMarkdown(expenses.LoadCategorySet(cfg)))
	return subcommands.ExitSuccess
}
