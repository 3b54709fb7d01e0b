package history

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"go.klb.dev/clipkeep/internal/content"
	"go.klb.dev/clipkeep/internal/pasteboard"
)

// MaxTitleRunes bounds generated titles.
const MaxTitleRunes = 1000

// Builder creates items from merged clipboard contents, persists them and
// notifies observers.
type Builder struct {
	Store     Store
	Observers *Observers

	// Title derives an item's title from its contents. Defaults to Title.
	Title func([]Content) string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewBuilder returns a Builder writing to store.
func NewBuilder(store Store) *Builder {
	return &Builder{Store: store, Observers: &Observers{}}
}

// Build records entries as a new item. entries must not be empty. A store
// failure is returned and observers are not called.
func (b *Builder) Build(ctx context.Context, entries []pasteboard.Entry, app string) (Item, error) {
	if len(entries) == 0 {
		return Item{}, fmt.Errorf("build item: no contents")
	}

	it := Item{
		ID:          uuid.NewString(),
		Application: app,
		Contents:    make([]Content, len(entries)),
		CreatedAt:   b.now(),
	}
	for i, e := range entries {
		it.Contents[i] = Content{Type: e.Type, Value: e.Data}
	}
	title := b.Title
	if title == nil {
		title = Title
	}
	it.Title = title(it.Contents)

	if err := b.Store.Insert(ctx, it); err != nil {
		return Item{}, fmt.Errorf("insert item %s: %w", it.ID, err)
	}
	slog.Debug("history item stored", "id", it.ID, "app", app, "contents", len(it.Contents))

	if b.Observers != nil {
		b.Observers.notify(ctx, it)
	}
	return it, nil
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Title picks the most readable text among contents: plain text first, then
// the text of rich representations, then file paths.
func Title(contents []Content) string {
	byType := make(map[pasteboard.TypeID][]byte, len(contents))
	var files []string
	for _, c := range contents {
		if c.Type == pasteboard.TypeFileURL {
			files = append(files, filePath(c.Value))
			continue
		}
		if _, ok := byType[c.Type]; !ok {
			byType[c.Type] = c.Value
		}
	}

	if v, ok := byType[pasteboard.TypePlainText]; ok && utf8.Valid(v) {
		if s := strings.TrimSpace(string(v)); s != "" {
			return truncate(s)
		}
	}
	if s := strings.TrimSpace(content.RTFText(byType[pasteboard.TypeRTF])); s != "" {
		return truncate(s)
	}
	if s := strings.TrimSpace(content.HTMLText(byType[pasteboard.TypeHTML])); s != "" {
		return truncate(s)
	}
	if len(files) > 0 {
		return truncate(strings.Join(files, "\n"))
	}
	return ""
}

func filePath(raw []byte) string {
	u, err := url.Parse(string(raw))
	if err != nil || u.Scheme != "file" {
		return string(raw)
	}
	return u.Path
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxTitleRunes {
		return s
	}
	return string([]rune(s)[:MaxTitleRunes])
}
