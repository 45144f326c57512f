// Package output renders catalog data for the terminal and for export.
package output

import (
	"os"
	"strings"
	"sync/atomic"
)

// Output formats.
const (
	FormatTable = "table"
	FormatText  = "text"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
)

// FormatEnv overrides the default output format of every command.
const FormatEnv = "GRYADKA_OUTPUT"

var jsonMode atomic.Bool

// DefaultFormat returns the preferred output format unless GRYADKA_OUTPUT is set to a supported value.
func DefaultFormat(preferred string, allowed []string) string {
	env := strings.TrimSpace(os.Getenv(FormatEnv))
	if env == "" {
		return preferred
	}

	env = strings.ToLower(env)
	for _, option := range allowed {
		if env == option {
			return env
		}
	}

	return preferred
}

// SetFormat records the format chosen for this run so progress output can stay quiet for JSON.
func SetFormat(format string) {
	jsonMode.Store(strings.EqualFold(strings.TrimSpace(format), FormatJSON))
}

// IsJSONMode reports whether the current command writes JSON to stdout.
func IsJSONMode() bool {
	return jsonMode.Load()
}
