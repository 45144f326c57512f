package output

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
)

const ellipsis = "…"

func detectTerminalWidth() (int, bool) {
	if raw, ok := os.LookupEnv("COLUMNS"); ok {
		if width, err := strconv.Atoi(raw); err == nil && width > 0 {
			return width, true
		}
	}

	if width, ok := systemTerminalWidth(); ok {
		return width, true
	}

	return 0, false
}

func visibleWidth(s string) int {
	return runewidth.StringWidth(pterm.RemoveColorFromString(s))
}

func padRight(s string, width int) string {
	current := visibleWidth(s)
	if current >= width {
		return s
	}

	return s + strings.Repeat(" ", width-current)
}

// Truncate shortens s to at most width terminal cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	return runewidth.Truncate(s, width, ellipsis)
}

// oneLine collapses whitespace so free text fits in a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
