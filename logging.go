package expenses

import (
	"io"

	ilog "github.com/etnz/expenses/internal/logger"
)

// logger is the package logger.
var logger = ilog.Get()

// SetLogOutput redirects the diagnostics of this package to 'w'. Tests use it
// to keep their output quiet or to capture messages.
func SetLogOutput(w io.Writer) {
	ilog.SetOutput(w)
	logger = ilog.Get()
}
