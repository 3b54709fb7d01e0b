// Package pasteboard provides a unified interface to the system clipboard
// across platforms. Build constraints select the appropriate implementation:
//
//	pasteboard_darwin.go   macOS via cgo NSPasteboard (items, types, changeCount)
//	pasteboard_linux.go    Linux via golang.design/x/clipboard, synthesized changeCount
//	pasteboard_windows.go  Windows via golang.design/x/clipboard, synthesized changeCount
//	pasteboard_other.go    headless / container fallback on top of Memory
package pasteboard

import (
	"errors"
	"unicode/utf8"
)

// ErrUnsupportedType is returned by Write when a backend cannot store the
// given representation.
var ErrUnsupportedType = errors.New("unsupported pasteboard type")

// Entry is one type/bytes representation read from the clipboard.
type Entry struct {
	Type TypeID
	Data []byte
}

// Item is one bundle of representations on the clipboard. A single copy can
// put more than one item on the clipboard.
type Item interface {
	// Types returns the item's declared types in clipboard order.
	Types() []TypeID
	// Data returns the raw bytes for t, or nil if the item does not carry it.
	Data(t TypeID) []byte
	// String returns the text for t when the item carries it as valid text.
	String(t TypeID) (string, bool)
}

// Pasteboard is the interface that all platform clipboard implementations
// satisfy. Implementations are not required to be safe for concurrent use;
// the monitor serializes all access.
type Pasteboard interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ChangeCount returns the clipboard generation. It changes whenever the
	// clipboard contents are replaced.
	ChangeCount() int

	// Types returns the union of declared types across all items.
	Types() []TypeID

	// Items returns the clipboard items in declared order.
	Items() []Item

	// Clear empties the clipboard and starts a new generation.
	Clear()

	// Write adds one representation to the clipboard.
	Write(t TypeID, data []byte) error

	// WriteFiles writes several file references in a single operation.
	// Each element is a file URL (file:///...).
	WriteFiles(urls [][]byte) error

	// Close releases any resources held by the backend.
	Close()
}

// SingleRepresentation is implemented by backends whose every Write replaces
// the whole clipboard, so only one representation survives a copy.
type SingleRepresentation interface {
	SingleRepresentation() bool
}

// HoldsOne reports whether p keeps a single representation at a time.
func HoldsOne(p Pasteboard) bool {
	s, ok := p.(SingleRepresentation)
	return ok && s.SingleRepresentation()
}

// TypesOf returns the union of the items' types, keeping first-seen order.
func TypesOf(items []Item) []TypeID {
	seen := make(map[TypeID]struct{})
	var out []TypeID
	for _, it := range items {
		for _, t := range it.Types() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func textOf(data []byte) (string, bool) {
	if data == nil || !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}
