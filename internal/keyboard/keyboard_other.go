//go:build !darwin && !linux

package keyboard

import "log/slog"

type unsupported struct{}

// NewSystem returns a backend that never has permission, so Paste is a
// no-op on this platform.
func NewSystem() Backend { return unsupported{} }

func (unsupported) KeyCode(rune) (KeyCode, bool)           { return 0, false }
func (unsupported) PostKey(KeyCode, Modifiers, bool) error { return nil }
func (unsupported) CommandSwitchesToQWERTY() bool          { return false }
func (unsupported) HasPermission() bool                    { return false }
func (unsupported) SuppressLocalInput()                    {}

func (unsupported) RequestPermission() {
	slog.Warn("paste is not supported on this platform")
}
