package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	"github.com/etnz/expenses"
)

// MonthlyMarkdown renders the month-by-month summary, oldest month first,
// with a trend arrow comparing each month's spending to the previous one.
func MonthlyMarkdown(summaries []expenses.MonthSummary, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Monthly Summary")

	if len(summaries) == 0 {
		doc.PlainText("No transactions to summarize.")
		return doc.String()
	}

	spending := make([]decimal.Decimal, len(summaries))
	for i, m := range summaries {
		spending[i] = m.Expenses
	}
	trends := expenses.Trends(spending)

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignCenter,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Month", "Expenses", "Trend", "Income", "Net", "Transactions"},
		Rows:   [][]string{},
	}
	for i, m := range summaries {
		table.Rows = append(table.Rows, []string{
			m.Month.String(),
			expenses.FormatAmount(m.Expenses, currency),
			trends[i].Arrow,
			expenses.FormatAmount(m.Income, currency),
			expenses.FormatAmount(m.Net(), currency),
			fmt.Sprintf("%d", m.Count),
		})
	}
	doc.Table(table)

	return doc.String()
}
