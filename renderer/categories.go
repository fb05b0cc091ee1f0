package renderer

import (
	"bytes"
	"sort"

	md "github.com/nao1215/markdown"

	"github.com/etnz/expenses"
)

// CategoriesMarkdown renders the known category names, one section per
// transaction type.
func CategoriesMarkdown(set expenses.CategorySet) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Categories")
	for _, t := range []expenses.TxType{expenses.Expense, expenses.Income} {
		doc.H2(sectionTitle(t))
		names := set.Names(t)
		if len(names) == 0 {
			doc.PlainText("none")
			continue
		}
		doc.BulletList(names...)
	}

	return doc.String()
}

func sectionTitle(t expenses.TxType) string {
	switch t {
	case expenses.Income:
		return "Income"
	default:
		return "Expense"
	}
}

// SuggestionsMarkdown renders proposed merchant to category assignments,
// sorted by merchant so the output is stable.
func SuggestionsMarkdown(suggestions map[string]string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Suggested Categories")

	if len(suggestions) == 0 {
		doc.PlainText("Nothing to suggest: every merchant already has a category.")
		return doc.String()
	}

	merchants := make([]string, 0, len(suggestions))
	for m := range suggestions {
		merchants = append(merchants, m)
	}
	sort.Strings(merchants)

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Merchant", "Category"},
		Rows:      [][]string{},
	}
	for _, m := range merchants {
		table.Rows = append(table.Rows, []string{m, suggestions[m]})
	}
	doc.Table(table)

	return doc.String()
}
