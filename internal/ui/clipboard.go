package ui

import (
	"log/slog"

	"github.com/atotto/clipboard"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// copyToClipboard places text on the system clipboard. Failure is logged
// and otherwise ignored: the pick itself already succeeded.
func copyToClipboard(text string) {
	if clipboard.Unsupported {
		slog.Debug("clipboard unsupported on this system")
		return
	}
	if err := writeClipboard(text); err != nil {
		slog.Warn("failed to copy to clipboard", slog.String("error", err.Error()))
	}
}
