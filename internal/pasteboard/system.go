//go:build linux || windows

package pasteboard

import (
	"bytes"
	"slices"
	"sync"

	"golang.design/x/clipboard"
)

// systemBackend wraps golang.design/x/clipboard, which only exposes the
// current text and PNG image. Where the OS has no generation counter the
// backend synthesizes one by comparing content on each ChangeCount call.
//
// Every clipboard.Write replaces the whole clipboard, so after a Clear only
// the first accepted Write lands and later ones report ErrUnsupportedType.
type systemBackend struct {
	name string
	seq  func() int

	mu       sync.Mutex
	change   int
	lastText []byte
	lastImg  []byte
	written  bool
}

func (b *systemBackend) Name() string { return b.name }

func (b *systemBackend) ChangeCount() int {
	if b.seq != nil {
		return b.seq()
	}
	text := clipboard.Read(clipboard.FmtText)
	img := clipboard.Read(clipboard.FmtImage)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !bytes.Equal(text, b.lastText) || !bytes.Equal(img, b.lastImg) {
		b.lastText = text
		b.lastImg = img
		b.change++
	}
	return b.change
}

func (b *systemBackend) Types() []TypeID { return TypesOf(b.Items()) }

func (b *systemBackend) Items() []Item {
	it := &MemoryItem{}
	if text := clipboard.Read(clipboard.FmtText); text != nil {
		it.Entries = append(it.Entries, Entry{Type: TypePlainText, Data: text})
	}
	if img := clipboard.Read(clipboard.FmtImage); img != nil {
		it.Entries = append(it.Entries, Entry{Type: TypePNG, Data: img})
	}
	if len(it.Entries) == 0 {
		return nil
	}
	return []Item{it}
}

// Clear leaves the selection alone, since the next Write replaces it anyway,
// and starts accepting a new representation.
func (b *systemBackend) Clear() {
	b.mu.Lock()
	b.written = false
	b.mu.Unlock()
}

func (b *systemBackend) SingleRepresentation() bool { return true }

func (b *systemBackend) Write(t TypeID, data []byte) error {
	var f clipboard.Format
	switch t {
	case TypePlainText:
		f = clipboard.FmtText
	case TypePNG:
		f = clipboard.FmtImage
	default:
		return ErrUnsupportedType
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.written {
		return ErrUnsupportedType
	}
	clipboard.Write(f, slices.Clone(data))
	b.written = true
	return nil
}

func (b *systemBackend) WriteFiles(_ [][]byte) error { return ErrUnsupportedType }

func (b *systemBackend) Close() {}
