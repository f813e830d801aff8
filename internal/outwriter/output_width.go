package outwriter

import (
	"os"

	"github.com/huangsam/annofabcli/internal/contract"
	"golang.org/x/term"
)

// Width limits for truncated table columns.
const (
	minColumnWidth = 15
	maxColumnWidth = 70
)

// GetTerminalWidth returns the width override, the detected terminal width, or 80.
func GetTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// GetMaxColumnWidth calculates the maximum width for wide columns in table output
// based on terminal width and the number of columns in the table.
func GetMaxColumnWidth(cfg *contract.Config, columns int) int {
	// Reserve space for the other columns plus borders and padding
	baseWidth := 12*max(columns-1, 0) + 20

	available := GetTerminalWidth(cfg) - baseWidth
	if available < minColumnWidth {
		return minColumnWidth
	}
	if available > maxColumnWidth {
		return maxColumnWidth
	}
	return available
}
