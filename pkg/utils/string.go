package utils

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Truncate flattens s onto one line and cuts it to at most width terminal
// cells, ending with "..." when anything was dropped.
func Truncate(s string, width int) string {
	return ansi.Truncate(strings.Join(strings.Fields(s), " "), width, "...")
}
