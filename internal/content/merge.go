// Package content normalizes the clipboard's items into the single ordered
// list of representations a history item stores.
package content

import (
	"log/slog"
	"strings"

	"go.klb.dev/clipkeep/internal/ignore"
	"go.klb.dev/clipkeep/internal/pasteboard"
)

// Merge walks items in clipboard order and concatenates the representations
// worth keeping. An empty result means there is nothing to record.
func Merge(items []pasteboard.Item, cfg ignore.Config) []pasteboard.Entry {
	disabled := cfg.DisabledTypes()
	ignored := cfg.IgnoredTypes()

	var out []pasteboard.Entry
	for i, it := range items {
		if text, ok := it.String(pasteboard.TypePlainText); ok && cfg.IgnoresText(text) {
			slog.Debug("clipboard item matches ignore pattern, skipping", "item", i)
			continue
		}
		kept := keep(it.Types(), disabled, ignored)
		if isBlank(it, kept) {
			slog.Debug("clipboard item is blank text, skipping", "item", i)
			continue
		}
		for _, t := range kept {
			out = append(out, pasteboard.Entry{Type: t, Data: it.Data(t)})
		}
	}
	return out
}

func keep(types []pasteboard.TypeID, disabled, ignored map[pasteboard.TypeID]struct{}) []pasteboard.TypeID {
	kept := make([]pasteboard.TypeID, 0, len(types))
	present := make(map[pasteboard.TypeID]bool, len(types))
	for _, t := range types {
		if _, ok := disabled[t]; ok {
			continue
		}
		if _, ok := ignored[t]; ok {
			continue
		}
		if t.IsDynamic() || t.IsLinkedSource() {
			continue
		}
		kept = append(kept, t)
		present[t] = true
	}

	// Word bookmarks and cross-references carry a link pair plus a PDF
	// rendering of the target; none of it is the copied text.
	if present[pasteboard.TypeMicrosoftLinkSource] && present[pasteboard.TypeMicrosoftObjectLink] {
		out := kept[:0]
		for _, t := range kept {
			switch t {
			case pasteboard.TypeMicrosoftLinkSource, pasteboard.TypeMicrosoftObjectLink, pasteboard.TypePDF:
				continue
			}
			out = append(out, t)
		}
		kept = out
	}
	return kept
}

// isBlank reports whether the item's only content is empty or whitespace
// plain text. Some apps put such a string next to the real formatted item.
// Only the kept types count: rich text must have visible text, and any other
// kept representation (image, file, unknown type) makes the item worth
// recording.
func isBlank(it pasteboard.Item, kept []pasteboard.TypeID) bool {
	text, ok := it.String(pasteboard.TypePlainText)
	if !ok || strings.TrimSpace(text) != "" {
		return false
	}
	for _, t := range kept {
		switch t {
		case pasteboard.TypePlainText:
		case pasteboard.TypeRTF:
			if strings.TrimSpace(RTFText(it.Data(t))) != "" {
				return false
			}
		case pasteboard.TypeHTML:
			if strings.TrimSpace(HTMLText(it.Data(t))) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}
