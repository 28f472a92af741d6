// ABOUTME: Structured logger construction for every subcommand
// ABOUTME: Wraps charmbracelet/log with level parsing and secret masking helpers
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the given level name.
// Unknown level names fall back to info.
func New(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "leadbook",
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	const visible = 4
	if len(secret) <= visible {
		return strings.Repeat("#", 8)
	}
	return strings.Repeat("#", 8) + secret[len(secret)-visible:]
}
