package renderer

import (
	"bytes"
	"sort"

	md "github.com/nao1215/markdown"
)

// AliasesMarkdown renders the merchant alias rules, sorted by pattern.
func AliasesMarkdown(aliases map[string]string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Merchant Aliases")

	if len(aliases) == 0 {
		doc.PlainText("No aliases yet. Add one with 'exps alias <pattern> <display name>'.")
		return doc.String()
	}

	patterns := make([]string, 0, len(aliases))
	for p := range aliases {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Pattern", "Display Name"},
		Rows:      [][]string{},
	}
	for _, p := range patterns {
		table.Rows = append(table.Rows, []string{p, aliases[p]})
	}
	doc.Table(table)

	return doc.String()
}
