// Package keyboard synthesizes the paste shortcut in the focused
// application.
package keyboard

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

// KeyCode is a platform virtual key code.
type KeyCode uint16

// Modifiers is a set of modifier keys held during a key event.
type Modifiers uint8

const (
	Command Modifiers = 1 << iota
	Control
	Option
	Shift
)

// Has reports whether all of o are set in m.
func (m Modifiers) Has(o Modifiers) bool { return m&o == o }

func (m Modifiers) String() string {
	var parts []string
	for _, mod := range []struct {
		flag Modifiers
		name string
	}{{Command, "cmd"}, {Control, "ctrl"}, {Option, "opt"}, {Shift, "shift"}} {
		if m.Has(mod.flag) {
			parts = append(parts, mod.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseModifiers reads modifier names such as "cmd", "ctrl", "alt" or
// "shift".
func ParseModifiers(names []string) (Modifiers, error) {
	var m Modifiers
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "cmd", "command", "super", "meta":
			m |= Command
		case "ctrl", "control":
			m |= Control
		case "opt", "option", "alt":
			m |= Option
		case "shift":
			m |= Shift
		case "":
		default:
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
	}
	return m, nil
}

// Backend posts key events on one platform.
type Backend interface {
	// KeyCode returns the key code producing key on the active layout.
	KeyCode(key rune) (KeyCode, bool)
	// PostKey sends one key-down or key-up event with mods held.
	PostKey(code KeyCode, mods Modifiers, down bool) error
	// CommandSwitchesToQWERTY reports whether the active layout types
	// QWERTY while Command is held.
	CommandSwitchesToQWERTY() bool
	HasPermission() bool
	// RequestPermission asks the user to allow event injection.
	RequestPermission()
	// SuppressLocalInput briefly holds back the user's own keyboard input
	// so it does not mix with the synthesized events.
	SuppressLocalInput()
}

// Injector presses the configured paste shortcut.
type Injector struct {
	backend Backend
	key     rune
	mods    Modifiers
}

// New returns an Injector that presses mods+key.
func New(b Backend, key rune, mods Modifiers) *Injector {
	return &Injector{backend: b, key: unicode.ToLower(key), mods: mods}
}

// Paste sends the shortcut. It never fails: without permission it asks for
// it and returns, and posting errors are only logged.
func (i *Injector) Paste() {
	if !i.backend.HasPermission() {
		slog.Warn("paste needs permission to post keyboard events")
		i.backend.RequestPermission()
		return
	}

	code, ok := i.resolve()
	if !ok {
		slog.Error("paste key is not on the keyboard layout", "key", string(i.key))
		return
	}

	i.backend.SuppressLocalInput()
	if err := i.backend.PostKey(code, i.mods, true); err != nil {
		slog.Error("post key down failed", "err", err)
		return
	}
	if err := i.backend.PostKey(code, i.mods, false); err != nil {
		slog.Error("post key up failed", "err", err)
		return
	}
	slog.Debug("paste shortcut sent", "key", string(i.key), "code", code, "modifiers", i.mods)
}

func (i *Injector) resolve() (KeyCode, bool) {
	if i.mods.Has(Command) && i.backend.CommandSwitchesToQWERTY() {
		if code, ok := QWERTYKeyCode(i.key); ok {
			return code, true
		}
	}
	if code, ok := i.backend.KeyCode(i.key); ok {
		return code, true
	}
	return QWERTYKeyCode(i.key)
}
