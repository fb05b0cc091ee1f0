package renderer

import (
	"bytes"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/etnz/expenses/truelayer"
)

// ConnectionsMarkdown renders the stored bank connections.
func ConnectionsMarkdown(connections []truelayer.Connection) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Bank Connections")

	if len(connections) == 0 {
		doc.PlainText("No bank connections. Run 'exps connect' to add one.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft,
		},
		Header: []string{"ID", "Provider", "Created", "Last Sync", "Token Expires"},
		Rows:   [][]string{},
	}
	for _, c := range connections {
		table.Rows = append(table.Rows, []string{
			c.ID,
			orDash(c.Provider),
			c.CreatedAt.Format("2006-01-02"),
			orNever(c.LastSync),
			orNever(c.ExpiresAt),
		})
	}
	doc.Table(table)

	return doc.String()
}

func orNever(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04")
}
