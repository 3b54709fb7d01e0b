// Package history holds the recorded clipboard item model and the builder
// that turns merged clipboard contents into persisted items.
package history

import (
	"context"
	"sync"
	"time"

	"go.klb.dev/clipkeep/internal/pasteboard"
)

// Content is one stored representation of an item.
type Content struct {
	Type  pasteboard.TypeID
	Value []byte
}

// Item is one recorded clipboard state. Contents is never empty.
type Item struct {
	ID          string
	Title       string
	Application string
	Contents    []Content
	Pin         string
	CreatedAt   time.Time
}

// Value returns the stored bytes for t and whether the item carries it.
func (it Item) Value(t pasteboard.TypeID) ([]byte, bool) {
	for _, c := range it.Contents {
		if c.Type == t {
			return c.Value, true
		}
	}
	return nil, false
}

// Types lists the item's content types in stored order.
func (it Item) Types() []pasteboard.TypeID {
	out := make([]pasteboard.TypeID, len(it.Contents))
	for i, c := range it.Contents {
		out[i] = c.Type
	}
	return out
}

// Summary describes an item without its content bytes.
type Summary struct {
	ID          string
	Title       string
	Application string
	Pin         string
	Types       []pasteboard.TypeID
	CreatedAt   time.Time
}

// Summary returns the listing view of it.
func (it Item) Summary() Summary {
	return Summary{
		ID:          it.ID,
		Title:       it.Title,
		Application: it.Application,
		Pin:         it.Pin,
		Types:       it.Types(),
		CreatedAt:   it.CreatedAt,
	}
}

// Store persists new items.
type Store interface {
	Insert(ctx context.Context, it Item) error
}

// Observer is told about every item after it has been stored.
type Observer interface {
	OnNewItem(ctx context.Context, it Item)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, it Item)

func (f ObserverFunc) OnNewItem(ctx context.Context, it Item) { f(ctx, it) }

// Observers is an ordered observer list. Observers run synchronously in
// registration order; an observer that needs to do slow work must hand it
// off itself.
type Observers struct {
	mu   sync.RWMutex
	list []Observer
}

// Subscribe appends o. The same observer may be registered more than once.
func (o *Observers) Subscribe(obs Observer) {
	o.mu.Lock()
	o.list = append(o.list, obs)
	o.mu.Unlock()
}

// Clear removes every observer.
func (o *Observers) Clear() {
	o.mu.Lock()
	o.list = nil
	o.mu.Unlock()
}

// Len returns the number of registered observers.
func (o *Observers) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.list)
}

func (o *Observers) notify(ctx context.Context, it Item) {
	o.mu.RLock()
	list := append([]Observer(nil), o.list...)
	o.mu.RUnlock()

	for _, obs := range list {
		obs.OnNewItem(ctx, it)
	}
}
