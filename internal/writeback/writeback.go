// Package writeback puts recorded history items back on the clipboard.
package writeback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/pasteboard"
)

// Exclusive runs a clipboard mutation and re-synchronizes the change
// counter afterwards, optionally without recording the change.
// *monitor.Monitor satisfies it.
type Exclusive interface {
	Exclusive(ctx context.Context, suppress bool, fn func(pasteboard.Pasteboard) error) error
}

// Copier writes items to the clipboard through the monitor.
type Copier struct {
	ex Exclusive
}

// New returns a Copier serialized by ex.
func New(ex Exclusive) *Copier { return &Copier{ex: ex} }

// CopyItem replaces the clipboard with the item's contents. With
// stripFormatting only the plain text is written, when the item has any.
// Unless record is set the resulting clipboard change is not added to the
// history again. Representations the backend cannot hold are skipped.
func (c *Copier) CopyItem(ctx context.Context, it history.Item, stripFormatting, record bool) error {
	contents := it.Contents
	if stripFormatting {
		if v, ok := it.Value(pasteboard.TypePlainText); ok {
			contents = []history.Content{{Type: pasteboard.TypePlainText, Value: v}}
		}
	}

	return c.ex.Exclusive(ctx, !record, func(pb pasteboard.Pasteboard) error {
		pb.Clear()

		if pasteboard.HoldsOne(pb) {
			return writeOne(pb, it.ID, contents)
		}

		var files [][]byte
		for _, ct := range contents {
			if ct.Type == pasteboard.TypeFileURL {
				files = append(files, ct.Value)
				continue
			}
			if err := write(pb, ct.Type, ct.Value); err != nil {
				return err
			}
		}
		if len(files) > 0 {
			if err := pb.WriteFiles(files); err != nil {
				if !errors.Is(err, pasteboard.ErrUnsupportedType) {
					return fmt.Errorf("write %d files: %w", len(files), err)
				}
				slog.Warn("clipboard backend cannot hold file references", "backend", pb.Name(), "files", len(files))
			}
		}
		if err := write(pb, pasteboard.TypeProvenance, nil); err != nil {
			return err
		}

		slog.Debug("history item copied", "id", it.ID, "contents", len(contents), "strip", stripFormatting)
		return nil
	})
}

// CopyPlainText replaces the clipboard with s. The change is recorded like
// any other copy.
func (c *Copier) CopyPlainText(ctx context.Context, s string) error {
	return c.ex.Exclusive(ctx, false, func(pb pasteboard.Pasteboard) error {
		pb.Clear()
		if err := pb.Write(pasteboard.TypePlainText, []byte(s)); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
		return nil
	})
}

func write(pb pasteboard.Pasteboard, t pasteboard.TypeID, data []byte) error {
	err := pb.Write(t, data)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pasteboard.ErrUnsupportedType):
		slog.Debug("clipboard backend skipped type", "backend", pb.Name(), "type", t)
		return nil
	default:
		return fmt.Errorf("write %s: %w", t, err)
	}
}

// writeOne handles backends where each write replaces the previous one. Only
// the plain text is written when the item has it, otherwise the first
// representation the backend accepts. The provenance marker is left out
// because it would displace the content.
func writeOne(pb pasteboard.Pasteboard, id string, contents []history.Content) error {
	for _, ct := range contents {
		if ct.Type == pasteboard.TypePlainText {
			contents = []history.Content{ct}
			break
		}
	}
	for _, ct := range contents {
		if ct.Type == pasteboard.TypeFileURL {
			continue
		}
		err := pb.Write(ct.Type, ct.Value)
		switch {
		case err == nil:
			slog.Debug("history item copied", "id", id, "type", ct.Type)
			return nil
		case errors.Is(err, pasteboard.ErrUnsupportedType):
			continue
		default:
			return fmt.Errorf("write %s: %w", ct.Type, err)
		}
	}
	slog.Warn("clipboard backend cannot hold any of the item's contents", "backend", pb.Name(), "id", id)
	return nil
}
