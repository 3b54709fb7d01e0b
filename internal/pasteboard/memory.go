package pasteboard

import (
	"slices"
	"sync"
)

// MemoryItem is an Item held in memory. Entries keep their insertion order.
type MemoryItem struct {
	Entries []Entry
}

// NewItem builds a MemoryItem holding entries in order.
func NewItem(entries ...Entry) *MemoryItem {
	return &MemoryItem{Entries: slices.Clone(entries)}
}

// Text is shorthand for an Entry carrying a string.
func Text(t TypeID, s string) Entry { return Entry{Type: t, Data: []byte(s)} }

func (it *MemoryItem) Types() []TypeID {
	out := make([]TypeID, len(it.Entries))
	for i, e := range it.Entries {
		out[i] = e.Type
	}
	return out
}

func (it *MemoryItem) Data(t TypeID) []byte {
	for _, e := range it.Entries {
		if e.Type == t {
			return e.Data
		}
	}
	return nil
}

func (it *MemoryItem) String(t TypeID) (string, bool) {
	return textOf(it.Data(t))
}

// Memory is an in-process pasteboard. It backs headless environments and
// stands in for the system clipboard in tests.
type Memory struct {
	mu     sync.Mutex
	change int
	items  []*MemoryItem
	writes int
}

// NewMemory returns an empty in-memory pasteboard.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Name() string { return "in-memory" }

// Copy replaces the clipboard with items, the way another application would.
func (m *Memory) Copy(items ...*MemoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.change++
	m.items = items
}

func (m *Memory) ChangeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.change
}

func (m *Memory) Types() []TypeID {
	return TypesOf(m.Items())
}

func (m *Memory) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, len(m.items))
	for i, it := range m.items {
		out[i] = it
	}
	return out
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.change++
	m.items = nil
}

// Write adds the representation to the first item, creating it if needed.
func (m *Memory) Write(t TypeID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if len(m.items) == 0 {
		m.items = []*MemoryItem{{}}
	}
	first := m.items[0]
	first.Entries = append(first.Entries, Entry{Type: t, Data: slices.Clone(data)})
	return nil
}

// WriteFiles adds one item per file URL.
func (m *Memory) WriteFiles(urls [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, u := range urls {
		m.items = append(m.items, &MemoryItem{
			Entries: []Entry{{Type: TypeFileURL, Data: slices.Clone(u)}},
		})
	}
	return nil
}

// Writes returns how many Write/WriteFiles calls the pasteboard received.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *Memory) Close() {}
