package control

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/ignore"
	"go.klb.dev/clipkeep/internal/monitor"
	pb "go.klb.dev/clipkeep/internal/pasteboard"
	"go.klb.dev/clipkeep/internal/store/sqlite"
	"go.klb.dev/clipkeep/internal/writeback"
)

// --- Mock implementations ---

type mockStore struct {
	mu    sync.Mutex
	items []history.Item
}

func (m *mockStore) Insert(_ context.Context, it history.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]history.Item{it}, m.items...)
	return nil
}

func (m *mockStore) Summaries(_ context.Context, limit int) ([]history.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.items) {
		limit = len(m.items)
	}
	out := make([]history.Summary, limit)
	for i, it := range m.items[:limit] {
		out[i] = it.Summary()
	}
	return out, nil
}

func (m *mockStore) find(match func(history.Item) bool) (int, error) {
	for i, it := range m.items {
		if match(it) {
			return i, nil
		}
	}
	return -1, sqlite.ErrNotFound
}

func (m *mockStore) Get(_ context.Context, id string) (history.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(func(it history.Item) bool { return it.ID == id })
	if err != nil {
		return history.Item{}, err
	}
	return m.items[i], nil
}

func (m *mockStore) GetByPin(_ context.Context, pin string) (history.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(func(it history.Item) bool { return it.Pin == pin })
	if err != nil {
		return history.Item{}, err
	}
	return m.items[i], nil
}

func (m *mockStore) SetPin(_ context.Context, id, pin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len([]rune(pin)) > 1 {
		return sqlite.ErrInvalidPin
	}
	if pin != "" {
		if j, err := m.find(func(it history.Item) bool { return it.Pin == pin }); err == nil && m.items[j].ID != id {
			return sqlite.ErrPinTaken
		}
	}
	i, err := m.find(func(it history.Item) bool { return it.ID == id })
	if err != nil {
		return err
	}
	m.items[i].Pin = pin
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(func(it history.Item) bool { return it.ID == id })
	if err != nil {
		return err
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

type copyCall struct {
	ID     string
	Strip  bool
	Record bool
}

type mockCopier struct {
	mu     sync.Mutex
	copies []copyCall
	texts  []string
}

func (m *mockCopier) CopyItem(_ context.Context, it history.Item, strip, record bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies = append(m.copies, copyCall{it.ID, strip, record})
	return nil
}

func (m *mockCopier) CopyPlainText(_ context.Context, s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, s)
	return nil
}

type mockPaster struct{ n int }

func (m *mockPaster) Paste() { m.n++ }

type mockRecorder struct {
	paused bool
}

func (m *mockRecorder) SetIgnoreEvents(on bool) { m.paused = on }
func (m *mockRecorder) Paused() bool            { return m.paused }

type fixture struct {
	store  *mockStore
	copier *mockCopier
	paster *mockPaster
	rec    *mockRecorder
	svc    *Service
}

func newFixture() *fixture {
	f := &fixture{
		store: &mockStore{items: []history.Item{
			{
				ID: "new", Title: "hello", Application: "com.apple.Safari",
				CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
				Contents: []history.Content{
					{Type: pb.TypeHTML, Value: []byte("<b>hello</b>")},
					{Type: pb.TypePlainText, Value: []byte("hello")},
				},
			},
			{
				ID: "old", Title: "pinned", Pin: "a",
				CreatedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
				Contents:  []history.Content{{Type: pb.TypePNG, Value: []byte("\x89PNG")}},
			},
		}},
		copier: &mockCopier{},
		paster: &mockPaster{},
		rec:    &mockRecorder{},
	}
	f.svc = NewService(f.store, f.copier, f.paster, f.rec)
	return f
}

func dialBufconn(t *testing.T, srv HistoryServer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary))
	RegisterHistoryServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

// --- gRPC ---

func TestGRPC_List(t *testing.T) {
	f := newFixture()
	c := dialBufconn(t, f.svc)

	got, err := c.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "hello", got[0].Title)
	assert.Equal(t, "com.apple.Safari", got[0].Application)
	assert.Equal(t, []string{string(pb.TypeHTML), string(pb.TypePlainText)}, got[0].Types)
	assert.True(t, got[0].CreatedAt.Equal(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "a", got[1].Pin)

	one, err := c.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestGRPC_CopySuppressesRecordingByDefault(t *testing.T) {
	f := newFixture()
	c := dialBufconn(t, f.svc)
	ctx := context.Background()

	require.NoError(t, c.Copy(ctx, CopyOptions{ID: "new"}))
	assert.Equal(t, []copyCall{{"new", false, false}}, f.copier.copies)
	assert.Zero(t, f.paster.n)

	strip := true
	require.NoError(t, c.Copy(ctx, CopyOptions{Pin: "a", StripFormatting: &strip, Record: true, Paste: true}))
	assert.Equal(t, copyCall{"old", true, true}, f.copier.copies[1])
	assert.Equal(t, 1, f.paster.n)
}

func TestGRPC_CopyDefaultStrip(t *testing.T) {
	f := newFixture()
	f.svc.SetStripFormatting(true)
	c := dialBufconn(t, f.svc)

	require.NoError(t, c.Copy(context.Background(), CopyOptions{ID: "new"}))
	assert.Equal(t, []copyCall{{"new", true, false}}, f.copier.copies)
}

func TestGRPC_Errors(t *testing.T) {
	f := newFixture()
	c := dialBufconn(t, f.svc)
	ctx := context.Background()

	err := c.Copy(ctx, CopyOptions{ID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = c.Copy(ctx, CopyOptions{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = c.Pin(ctx, "new", "a")
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	err = c.Pin(ctx, "new", "ab")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = c.Delete(ctx, "missing")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, _, err = c.Content(ctx, "new", string(pb.TypePNG))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPC_PinDeletePauseText(t *testing.T) {
	f := newFixture()
	c := dialBufconn(t, f.svc)
	ctx := context.Background()

	require.NoError(t, c.Pin(ctx, "new", "b"))
	it, err := f.store.GetByPin(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "new", it.ID)

	require.NoError(t, c.Delete(ctx, "old"))
	assert.Len(t, f.store.items, 1)

	paused, err := c.Pause(ctx, true)
	require.NoError(t, err)
	assert.True(t, paused)
	paused, err = c.Pause(ctx, false)
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, c.CopyText(ctx, "typed"))
	assert.Equal(t, []string{"typed"}, f.copier.texts)

	require.NoError(t, c.Paste(ctx))
	assert.Equal(t, 1, f.paster.n)
}

func TestGRPC_Content(t *testing.T) {
	c := dialBufconn(t, newFixture().svc)

	data, ct, err := c.Content(context.Background(), "new", "")
	require.NoError(t, err)
	assert.Equal(t, "<b>hello</b>", string(data))
	assert.Equal(t, "text/html; charset=utf-8", ct)

	data, ct, err = c.Content(context.Background(), "new", string(pb.TypePlainText))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "text/plain; charset=utf-8", ct)
}

// --- against the real monitor ---

// textClipboard behaves like the X11 backend: a single text slot, Clear
// leaves it alone and the counter only moves when the text differs.
type textClipboard struct {
	mu     sync.Mutex
	text   string
	change int
}

func (c *textClipboard) set(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s != c.text {
		c.text = s
		c.change++
	}
}

func (c *textClipboard) Name() string { return "text slot" }

func (c *textClipboard) ChangeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.change
}

func (c *textClipboard) Types() []pb.TypeID { return pb.TypesOf(c.Items()) }

func (c *textClipboard) Items() []pb.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.text == "" {
		return nil
	}
	return []pb.Item{pb.NewItem(pb.Text(pb.TypePlainText, c.text))}
}

func (c *textClipboard) Clear() {}

func (c *textClipboard) Write(t pb.TypeID, data []byte) error {
	if t != pb.TypePlainText {
		return pb.ErrUnsupportedType
	}
	c.set(string(data))
	return nil
}

func (c *textClipboard) WriteFiles([][]byte) error  { return pb.ErrUnsupportedType }
func (c *textClipboard) SingleRepresentation() bool { return true }
func (c *textClipboard) Close()                     {}

func copyRequest(t *testing.T, id string) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(map[string]any{"id": id})
	require.NoError(t, err)
	return req
}

func TestCopy_UnchangedClipboardKeepsRecording(t *testing.T) {
	tests := []struct {
		name string
		item history.Item
	}{
		{
			name: "same text as the clipboard",
			item: history.Item{ID: "same", Contents: []history.Content{{Type: pb.TypePlainText, Value: []byte("hello")}}},
		},
		{
			name: "nothing the backend can write",
			item: history.Item{ID: "html", Contents: []history.Content{{Type: pb.TypeHTML, Value: []byte("<b>x</b>")}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			clip := &textClipboard{}
			clip.set("hello")
			store := &mockStore{items: []history.Item{tt.item}}
			mon := monitor.New(clip, nil, history.NewBuilder(store), ignore.DefaultConfig())
			svc := NewService(store, writeback.New(mon), &mockPaster{}, mon)

			_, err := svc.Copy(ctx, copyRequest(t, tt.item.ID))
			require.NoError(t, err)
			assert.False(t, mon.Paused())

			clip.set("typed by the user")
			mon.Tick(ctx)
			require.Len(t, store.items, 2)
			assert.Equal(t, "typed by the user", store.items[0].Title)
		})
	}
}

func TestCopy_ChangedClipboardIsNotRecordedAgain(t *testing.T) {
	ctx := context.Background()
	clip := &textClipboard{}
	clip.set("hello")
	store := &mockStore{items: []history.Item{
		{ID: "old", Contents: []history.Content{{Type: pb.TypePlainText, Value: []byte("from history")}}},
	}}
	mon := monitor.New(clip, nil, history.NewBuilder(store), ignore.DefaultConfig())
	svc := NewService(store, writeback.New(mon), &mockPaster{}, mon)

	_, err := svc.Copy(ctx, copyRequest(t, "old"))
	require.NoError(t, err)
	mon.Tick(ctx)
	assert.Len(t, store.items, 1)
	assert.False(t, mon.Paused())

	mon.SetIgnoreEvents(true)
	clip.set("something else")
	mon.Tick(ctx)
	_, err = svc.Copy(ctx, copyRequest(t, "old"))
	require.NoError(t, err)
	assert.True(t, mon.Paused(), "copying while paused keeps the pause")
	assert.Len(t, store.items, 1)
}

// --- HTTP gateway ---

func newGatewayServer(t *testing.T, srv HistoryServer) *httptest.Server {
	t.Helper()
	mux, err := NewGateway(srv)
	require.NoError(t, err)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func decodeList(t *testing.T, body string) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestGateway_List(t *testing.T) {
	ts := newGatewayServer(t, newFixture().svc)

	resp, body := do(t, http.MethodGet, ts.URL+"/v1/items?limit=1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeList(t, body)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0]["id"])
	assert.Equal(t, []any{string(pb.TypeHTML), string(pb.TypePlainText)}, got[0]["types"])

	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/items?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGateway_Content(t *testing.T) {
	ts := newGatewayServer(t, newFixture().svc)

	resp, body := do(t, http.MethodGet, ts.URL+"/v1/items/old/content", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "\x89PNG", body)

	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/items/nope/content", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGateway_CopyPinDelete(t *testing.T) {
	f := newFixture()
	ts := newGatewayServer(t, f.svc)

	resp, _ := do(t, http.MethodPost, ts.URL+"/v1/items/new/copy", `{"strip_formatting":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, ts.URL+"/v1/items/old/copy", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []copyCall{{"new", true, false}, {"old", false, false}}, f.copier.copies)

	resp, _ = do(t, http.MethodPut, ts.URL+"/v1/items/new/pin", `{"pin":"a"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = do(t, http.MethodPut, ts.URL+"/v1/items/new/pin", `{"pin":"z"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, ts.URL+"/v1/items/old", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, ts.URL+"/v1/items/old", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGateway_TextPastePause(t *testing.T) {
	f := newFixture()
	ts := newGatewayServer(t, f.svc)

	resp, _ := do(t, http.MethodPost, ts.URL+"/v1/text", `"from curl"`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"from curl"}, f.copier.texts)

	resp, _ = do(t, http.MethodPost, ts.URL+"/v1/paste", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.paster.n)

	resp, body := do(t, http.MethodPut, ts.URL+"/v1/pause", "true")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", strings.TrimSpace(body))
	assert.True(t, f.rec.paused)

	resp, _ = do(t, http.MethodPut, ts.URL+"/v1/pause", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- cmux ---

func TestServe_MultiplexesGRPCAndHTTP(t *testing.T) {
	f := newFixture()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, lis, f.svc) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	items, err := NewClient(conn).List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	hc := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) { return lis.DialContext(ctx) },
	}}
	resp, err := hc.Get("http://clipkeep/v1/items")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeList(t, string(body))
	require.Len(t, got, 2)
	assert.Equal(t, "pinned", got[1]["title"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "application/rtf", MediaType(pb.TypeRTF))
	assert.Equal(t, "application/octet-stream", MediaType("com.example.custom"))
}
