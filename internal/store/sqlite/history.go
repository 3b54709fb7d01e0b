package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.klb.dev/clipkeep/internal/crypto"
	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/pasteboard"
)

var (
	// ErrNotFound is returned when no item has the requested id or pin.
	ErrNotFound = errors.New("history item not found")
	// ErrPinTaken is returned by SetPin when another item holds the pin.
	ErrPinTaken = errors.New("pin already in use")
	// ErrInvalidPin is returned by SetPin for anything but a single character.
	ErrInvalidPin = errors.New("pin must be a single character")
)

// Compile-time interface satisfaction check.
var _ history.Store = (*HistoryRepo)(nil)

// HistoryRepo stores history items and their contents. With a key set,
// content values are sealed before they are written.
type HistoryRepo struct {
	db  *DB
	key *crypto.Key
}

// NewHistoryRepo creates a HistoryRepo backed by db. key may be nil.
func NewHistoryRepo(db *DB, key *crypto.Key) *HistoryRepo {
	return &HistoryRepo{db: db, key: key}
}

// Insert stores it and its contents in one transaction.
func (r *HistoryRepo) Insert(ctx context.Context, it history.Item) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history_items (id, title, application, pin, created_at) VALUES (?, ?, ?, ?, ?)`,
		it.ID, it.Title, it.Application, nullPin(it.Pin), it.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert history item %s: %w", it.ID, err)
	}

	for i, c := range it.Contents {
		value, sealed := c.Value, 0
		if r.key != nil && c.Value != nil {
			if value, err = crypto.Seal(c.Value, r.key); err != nil {
				return fmt.Errorf("seal %s: %w", c.Type, err)
			}
			sealed = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO history_contents (item_id, position, type, value, sealed) VALUES (?, ?, ?, ?, ?)`,
			it.ID, i, string(c.Type), value, sealed,
		)
		if err != nil {
			return fmt.Errorf("insert content %s of %s: %w", c.Type, it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history item %s: %w", it.ID, err)
	}
	return nil
}

const selectItems = `SELECT id, title, application, pin, created_at FROM history_items`

// List returns items newest first, contents included. limit <= 0 returns
// every item.
func (r *HistoryRepo) List(ctx context.Context, limit int) ([]history.Item, error) {
	items, err := r.page(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Contents, err = r.contents(ctx, items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Summaries lists items newest first like List but reads only the content
// types, so neither blobs nor sealed values are loaded.
func (r *HistoryRepo) Summaries(ctx context.Context, limit int) ([]history.Summary, error) {
	items, err := r.page(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]history.Summary, len(items))
	for i, it := range items {
		out[i] = it.Summary()
		if out[i].Types, err = r.types(ctx, it.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// page loads item rows without contents.
func (r *HistoryRepo) page(ctx context.Context, limit int) ([]history.Item, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Reader.QueryContext(ctx, selectItems+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var items []history.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return items, nil
}

// Get returns the item with id.
func (r *HistoryRepo) Get(ctx context.Context, id string) (history.Item, error) {
	return r.getOne(ctx, selectItems+` WHERE id = ?`, id)
}

// GetByPin returns the item pinned to pin.
func (r *HistoryRepo) GetByPin(ctx context.Context, pin string) (history.Item, error) {
	return r.getOne(ctx, selectItems+` WHERE pin = ?`, pin)
}

func (r *HistoryRepo) getOne(ctx context.Context, query string, arg string) (history.Item, error) {
	it, err := scanItem(r.db.Reader.QueryRowContext(ctx, query, arg))
	if err != nil {
		return history.Item{}, err
	}
	if it.Contents, err = r.contents(ctx, it.ID); err != nil {
		return history.Item{}, err
	}
	return it, nil
}

// SetPin assigns a single-character pin to the item, or removes it when pin
// is "".
func (r *HistoryRepo) SetPin(ctx context.Context, id, pin string) error {
	pin = strings.TrimSpace(pin)
	if pin != "" && utf8.RuneCountInString(pin) != 1 {
		return ErrInvalidPin
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set pin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if pin != "" {
		var holder string
		err := tx.QueryRowContext(ctx, `SELECT id FROM history_items WHERE pin = ?`, pin).Scan(&holder)
		switch {
		case err == nil && holder != id:
			return fmt.Errorf("pin %q: %w", pin, ErrPinTaken)
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("look up pin %q: %w", pin, err)
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE history_items SET pin = ? WHERE id = ?`, nullPin(pin), id)
	if err != nil {
		return fmt.Errorf("set pin of %s: %w", id, err)
	}
	if err := mustAffect(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the item and its contents.
func (r *HistoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.Writer.ExecContext(ctx, `DELETE FROM history_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history item %s: %w", id, err)
	}
	return mustAffect(res, id)
}

// ClearUnpinned removes every unpinned item and reports how many went.
func (r *HistoryRepo) ClearUnpinned(ctx context.Context) (int64, error) {
	res, err := r.db.Writer.ExecContext(ctx, `DELETE FROM history_items WHERE pin IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Trim keeps the newest keep unpinned items and removes the rest. Pinned
// items are never trimmed.
func (r *HistoryRepo) Trim(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.Writer.ExecContext(ctx, `
		DELETE FROM history_items
		WHERE pin IS NULL AND id NOT IN (
			SELECT id FROM history_items
			WHERE pin IS NULL
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("trim history to %d: %w", keep, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *HistoryRepo) contents(ctx context.Context, id string) ([]history.Content, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT type, value, sealed FROM history_contents WHERE item_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load contents of %s: %w", id, err)
	}
	defer rows.Close()

	var out []history.Content
	for rows.Next() {
		var (
			typ    string
			value  []byte
			sealed bool
		)
		if err := rows.Scan(&typ, &value, &sealed); err != nil {
			return nil, fmt.Errorf("scan content of %s: %w", id, err)
		}
		if sealed {
			if r.key == nil {
				return nil, fmt.Errorf("content %s of %s is sealed and no history key is set", typ, id)
			}
			if value, err = crypto.Open(value, r.key); err != nil {
				return nil, fmt.Errorf("open content %s of %s: %w", typ, id, err)
			}
		}
		out = append(out, history.Content{Type: pasteboard.TypeID(typ), Value: value})
	}
	return out, rows.Err()
}

func (r *HistoryRepo) types(ctx context.Context, id string) ([]pasteboard.TypeID, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT type FROM history_contents WHERE item_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load types of %s: %w", id, err)
	}
	defer rows.Close()

	var out []pasteboard.TypeID
	for rows.Next() {
		var typ string
		if err := rows.Scan(&typ); err != nil {
			return nil, fmt.Errorf("scan type of %s: %w", id, err)
		}
		out = append(out, pasteboard.TypeID(typ))
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (history.Item, error) {
	var (
		it      history.Item
		pin     sql.NullString
		created int64
	)
	if err := s.Scan(&it.ID, &it.Title, &it.Application, &pin, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return history.Item{}, ErrNotFound
		}
		return history.Item{}, fmt.Errorf("scan history item: %w", err)
	}
	it.Pin = pin.String
	it.CreatedAt = time.Unix(0, created)
	return it, nil
}

func nullPin(pin string) sql.NullString {
	return sql.NullString{String: pin, Valid: pin != ""}
}

func mustAffect(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("history item %s: %w", id, ErrNotFound)
	}
	return nil
}
