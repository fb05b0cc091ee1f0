package renderer

import "fmt"

// orDash fills empty table cells with a dash, empty cells render badly.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// humanSize formats a byte count for humans, e.g. "1.4 KiB".
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
