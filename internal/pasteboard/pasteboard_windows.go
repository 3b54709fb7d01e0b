//go:build windows

package pasteboard

import (
	"log/slog"

	"golang.design/x/clipboard"
	"golang.org/x/sys/windows"
)

var procGetClipboardSequenceNumber = windows.NewLazySystemDLL("user32.dll").NewProc("GetClipboardSequenceNumber")

// New returns the Windows clipboard backend. The generation counter comes
// straight from GetClipboardSequenceNumber.
func New() Pasteboard {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard init failed", "err", err)
		return NewMemory()
	}
	return &systemBackend{
		name: "Windows Clipboard",
		seq: func() int {
			n, _, _ := procGetClipboardSequenceNumber.Call()
			return int(n)
		},
	}
}
