package monitor

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"go.klb.dev/clipkeep/internal/pasteboard"
)

const previewRunes = 120

// LogContents logs a clipboard event at INFO (app, types) and DEBUG (text
// preview up to 120 runes, or byte size for everything else).
func LogContents(event, app string, entries []pasteboard.Entry) {
	types := make([]string, len(entries))
	for i, e := range entries {
		types[i] = string(e.Type)
	}
	slog.Info(event, "app", app, "types", types)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, e := range entries {
		if e.Type == pasteboard.TypePlainText && utf8.Valid(e.Data) {
			preview := []rune(string(e.Data))
			s := string(preview)
			if len(preview) > previewRunes {
				s = string(preview[:previewRunes]) + "…"
			}
			slog.Debug("clipboard content", "type", e.Type, "preview", s)
		} else {
			slog.Debug("clipboard content", "type", e.Type, "size_bytes", len(e.Data))
		}
	}
}
