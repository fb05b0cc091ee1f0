// Package renderer formats ledger data as markdown, ready for a terminal
// renderer or a plain pager.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	"github.com/etnz/expenses"
)

// TransactionsOptions shapes the transactions report.
type TransactionsOptions struct {
	Currency    string              // display currency for amounts
	Alias       func(string) string // merchant display names, nil keeps raw names
	Categories  map[string]string   // merchant to category assignments
	ShowDeleted bool                // struck-through deleted rows are part of the list
	Title       string              // defaults to "Transactions"
}

// TransactionsMarkdown renders a transactions table with per-type totals.
// Deleted rows, when shown, are struck through and excluded from the totals.
func TransactionsMarkdown(records expenses.Records, opts TransactionsOptions) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := opts.Title
	if title == "" {
		title = "Transactions"
	}
	doc.H1(title)

	if len(records) == 0 {
		doc.PlainText("No transactions.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Date", "Merchant", "Category", "Type", "Amount", "Source"},
		Rows:   [][]string{},
	}

	var expensesTotal, incomeTotal decimal.Decimal
	var active int
	for _, r := range records {
		merchant := r.Merchant
		if opts.Alias != nil {
			merchant = opts.Alias(merchant)
		}
		row := []string{
			r.Date.String(),
			merchant,
			orDash(opts.Categories[r.Merchant]),
			string(r.Type),
			expenses.FormatAmount(r.Amount, opts.Currency),
			orDash(r.Source),
		}
		if r.Deleted {
			if !opts.ShowDeleted {
				continue
			}
			for i, cell := range row {
				if cell != "" {
					row[i] = "~~" + cell + "~~"
				}
			}
		} else {
			active++
			switch r.Type {
			case expenses.Income:
				incomeTotal = incomeTotal.Add(r.Amount)
			default:
				expensesTotal = expensesTotal.Add(r.Amount)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)

	net := incomeTotal.Sub(expensesTotal)
	doc.PlainText(fmt.Sprintf("%d transactions: %s expenses, %s income, net %s.",
		active,
		expenses.FormatAmount(expensesTotal, opts.Currency),
		expenses.FormatAmount(incomeTotal, opts.Currency),
		expenses.FormatAmount(net, opts.Currency)))

	return doc.String()
}
