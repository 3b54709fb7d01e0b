package history_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipkeep/internal/history"
	pb "go.klb.dev/clipkeep/internal/pasteboard"
)

type mockStore struct {
	inserted []history.Item
	err      error
}

func (m *mockStore) Insert(_ context.Context, it history.Item) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, it)
	return nil
}

func TestBuild_PersistsAndNotifiesInOrder(t *testing.T) {
	store := &mockStore{}
	b := history.NewBuilder(store)
	b.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	var calls []string
	b.Observers.Subscribe(history.ObserverFunc(func(_ context.Context, it history.Item) {
		calls = append(calls, "first:"+it.Title)
	}))
	b.Observers.Subscribe(history.ObserverFunc(func(_ context.Context, it history.Item) {
		require.Len(t, store.inserted, 1, "observers run after the insert")
		calls = append(calls, "second:"+it.Title)
	}))

	it, err := b.Build(context.Background(), []pb.Entry{
		pb.Text(pb.TypeRTF, `{\rtf1 hi}`),
		pb.Text(pb.TypePlainText, "hi"),
	}, "com.apple.TextEdit")
	require.NoError(t, err)

	assert.Equal(t, []string{"first:hi", "second:hi"}, calls)
	assert.Equal(t, "com.apple.TextEdit", it.Application)
	assert.Equal(t, []pb.TypeID{pb.TypeRTF, pb.TypePlainText}, it.Types())
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), it.CreatedAt)
	_, err = uuid.Parse(it.ID)
	assert.NoError(t, err)
	assert.Equal(t, it, store.inserted[0])
}

func TestBuild_SameObserverTwice(t *testing.T) {
	b := history.NewBuilder(&mockStore{})
	n := 0
	obs := history.ObserverFunc(func(context.Context, history.Item) { n++ })
	b.Observers.Subscribe(obs)
	b.Observers.Subscribe(obs)

	_, err := b.Build(context.Background(), []pb.Entry{pb.Text(pb.TypePlainText, "x")}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b.Observers.Clear()
	assert.Equal(t, 0, b.Observers.Len())
	_, err = b.Build(context.Background(), []pb.Entry{pb.Text(pb.TypePlainText, "y")}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBuild_StoreErrorSkipsObservers(t *testing.T) {
	b := history.NewBuilder(&mockStore{err: errors.New("disk full")})
	called := false
	b.Observers.Subscribe(history.ObserverFunc(func(context.Context, history.Item) { called = true }))

	_, err := b.Build(context.Background(), []pb.Entry{pb.Text(pb.TypePlainText, "x")}, "")
	require.Error(t, err)
	assert.False(t, called)
}

func TestBuild_RejectsEmpty(t *testing.T) {
	store := &mockStore{}
	_, err := history.NewBuilder(store).Build(context.Background(), nil, "")
	require.Error(t, err)
	assert.Empty(t, store.inserted)
}

func TestBuild_CustomTitle(t *testing.T) {
	b := history.NewBuilder(&mockStore{})
	b.Title = func(c []history.Content) string { return string(c[0].Type) }

	it, err := b.Build(context.Background(), []pb.Entry{pb.Text(pb.TypePNG, "\x89PNG")}, "")
	require.NoError(t, err)
	assert.Equal(t, string(pb.TypePNG), it.Title)
}

func TestTitle(t *testing.T) {
	c := func(typ pb.TypeID, v string) history.Content { return history.Content{Type: typ, Value: []byte(v)} }

	tests := []struct {
		name     string
		contents []history.Content
		want     string
	}{
		{"plain text trimmed", []history.Content{c(pb.TypePlainText, "  hello \n")}, "hello"},
		{"plain beats rich", []history.Content{c(pb.TypeHTML, "<b>rich</b>"), c(pb.TypePlainText, "plain")}, "plain"},
		{"rtf", []history.Content{c(pb.TypeRTF, `{\rtf1 from rtf}`)}, "from rtf"},
		{"html", []history.Content{c(pb.TypeHTML, "<p>from &amp; html</p>")}, "from & html"},
		{"files", []history.Content{c(pb.TypeFileURL, "file:///tmp/a%20b.txt"), c(pb.TypeFileURL, "file:///tmp/c")}, "/tmp/a b.txt\n/tmp/c"},
		{"image only", []history.Content{c(pb.TypePNG, "\x89PNG")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, history.Title(tt.contents))
		})
	}
}

func TestTitle_Truncates(t *testing.T) {
	long := strings.Repeat("é", history.MaxTitleRunes+10)
	got := history.Title([]history.Content{{Type: pb.TypePlainText, Value: []byte(long)}})
	assert.Equal(t, history.MaxTitleRunes, len([]rune(got)))
}

func TestItem_Value(t *testing.T) {
	it := history.Item{Contents: []history.Content{{Type: pb.TypePlainText, Value: []byte("x")}}}
	v, ok := it.Value(pb.TypePlainText)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), v)
	_, ok = it.Value(pb.TypeHTML)
	assert.False(t, ok)
}
