package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/etnz/expenses"
	"github.com/etnz/expenses/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// suggestCmd holds the flags for the 'suggest' subcommand.
type suggestCmd struct {
	txType string
	apply  bool
}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "suggest categories for uncategorized merchants" }
func (*suggestCmd) Usage() string {
	return `exps suggest [-t <type>] [-apply]

  Collects the merchants that have no category yet and asks Gemini to
  propose one for each. Requires the GEMINI_API_KEY environment variable.
  With -apply, the proposals are saved as assignments.
`
}

func (c *suggestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.txType, "t", string(expenses.Expense), "Transaction type to suggest for: 'expense' or 'income'.")
	f.BoolVar(&c.apply, "apply", false, "Save the suggested assignments instead of only printing them.")
}

func (c *suggestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Warning: GEMINI_API_KEY is not set, skipping suggestions.")
		return subcommands.ExitSuccess
	}

	t, err := expenses.ParseTxType(c.txType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
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

	cfg := store.Config()
	assignments := expenses.LoadAssignments(cfg)
	merchants := uncategorizedMerchants(records, t, assignments)
	if len(merchants) == 0 {
		fmt.Printf("Every %s merchant already has a category.\n", t)
		return subcommands.ExitSuccess
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating Gemini client: %v\n", err)
		return subcommands.ExitFailure
	}

	set := expenses.LoadCategorySet(cfg)
	suggestions, err := expenses.SuggestCategories(ctx, client, merchants, t, set.Names(t))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.SuggestionsMarkdown(suggestions))

	if !c.apply || len(suggestions) == 0 {
		return subcommands.ExitSuccess
	}

	newCategories := 0
	for merchant, category := range suggestions {
		assignments[merchant] = category
		if set.Add(t, category) {
			newCategories++
		}
	}
	if err := expenses.SaveAssignments(cfg, assignments); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if newCategories > 0 {
		if err := expenses.SaveCategorySet(cfg, set); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("Saved %d assignments (%d new categories).\n", len(suggestions), newCategories)
	return subcommands.ExitSuccess
}

// uncategorizedMerchants returns the distinct merchants of the given type that
// have no category assignment yet, sorted for a stable prompt.
func uncategorizedMerchants(records expenses.Records, t expenses.TxType, assignments map[string]string) []string {
	seen := map[string]bool{}
	var merchants []string
	for _, r := range records {
		if r.Type != t || seen[r.Merchant] {
			continue
		}
		seen[r.Merchant] = true
		if _, ok := assignments[r.Merchant]; ok {
			continue
		}
		merchants = append(merchants, r.Merchant)
	}
	sort.Strings(merchants)
	return merchants
}
