//go:build linux

package pasteboard

import (
	"log/slog"

	"golang.design/x/clipboard"
)

// New returns the Linux clipboard backend, or an in-memory backend if the
// display environment is unavailable (e.g. a headless server without X11 or
// Wayland). clipboard.Init is called here rather than in init() so that CLI
// sub-commands that never construct a Pasteboard don't trigger the warning.
func New() Pasteboard {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return NewMemory()
	}
	return &systemBackend{name: "Linux clipboard (poll)"}
}
