package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/etnz/expenses"
)

const backupTimeFormat = "2006-01-02 15:04:05"

// BackupsMarkdown renders the list of backup archives, newest first, with a
// one-line aggregate below the table.
func BackupsMarkdown(backups []expenses.BackupInfo, stats expenses.BackupStats) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Backups")

	if len(backups) == 0 {
		doc.PlainText("No backups yet. One is created before every change to the ledger.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"#", "Created", "Size"},
		Rows:   [][]string{},
	}
	for i, b := range backups {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", i+1),
			b.Time.Format(backupTimeFormat),
			humanSize(b.Size),
		})
	}
	doc.Table(table)

	doc.PlainText(fmt.Sprintf("%d archives, %s total, from %s to %s.",
		stats.Count,
		humanSize(stats.TotalSize),
		stats.Oldest.Format(backupTimeFormat),
		stats.Newest.Format(backupTimeFormat)))

	return doc.String()
}
