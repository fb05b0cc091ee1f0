// Package logger configures the process-wide structured logger shared by the
// ledger packages. Diagnostics go to stderr so command output on stdout stays
// clean and pipeable.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	current = New(os.Stderr)
)

// New builds a console logger writing to w.
func New(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger().Level(Level())
}

// Level reads the EXPENSES_LOG environment variable. Default is info.
func Level() zerolog.Level {
	switch os.Getenv("EXPENSES_LOG") {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the current process logger.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// SetOutput redirects diagnostics to w. Tests use it to keep their output
// quiet or to capture messages.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	current = New(w)
}
