package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recordedRequest

	dataStatus    int
	dataBody      string
	historyStatus int
	historyBody   string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	f.mu.Unlock()

	status, payload := http.StatusOK, `{"ok":true}`
	if r.Method == http.MethodGet {
		switch r.URL.Path {
		case PathData:
			status, payload = f.dataStatus, f.dataBody
		case PathHistory:
			status, payload = f.historyStatus, f.historyBody
		}
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func (f *fakeServer) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL + "/"}, logger.NewNop())
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

type captureTarget struct {
	items   domain.Collection
	history []domain.Snapshot
	calls   []string
}

func (c *captureTarget) ReplaceCollection(items domain.Collection) {
	c.items = items
	c.calls = append(c.calls, "collection")
}

func (c *captureTarget) ReplaceHistory(h []domain.Snapshot) {
	c.history = h
	c.calls = append(c.calls, "history")
}

func TestFetchCollection(t *testing.T) {
	f := &fakeServer{dataBody: `{"items":[{"id":"a","title":"Wiki","url":"https://wiki.example","createdAt":1,"updatedAt":2}]}`}
	c := newTestClient(t, f)

	items, err := c.FetchCollection(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Wiki", items[0].Title)
	assert.Equal(t, domain.Timestamp(2), items[0].UpdatedAt)
}

func TestFetchRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"items missing", `{}`},
		{"items null", `{"items":null}`},
		{"items object", `{"items":{"a":1}}`},
		{"not json", `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &fakeServer{dataBody: tt.body})
			_, err := c.FetchCollection(context.Background())
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFetchStatusError(t *testing.T) {
	c := newTestClient(t, &fakeServer{dataStatus: http.StatusInternalServerError, dataBody: `{"error":"x"}`})

	_, err := c.FetchCollection(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestRefreshReplacesBoth(t *testing.T) {
	f := &fakeServer{
		dataBody:    `{"items":[{"id":"a","title":"A","url":"https://a.example","createdAt":1,"updatedAt":1}]}`,
		historyBody: `{"history":[{"id":"s1","action":"upsert","time":5,"before":[],"after":[]}]}`,
	}
	c := newTestClient(t, f)

	var target captureTarget
	res := c.Refresh(context.Background(), &target)

	require.NoError(t, res.Err)
	assert.True(t, res.Collection)
	assert.True(t, res.History)
	assert.Equal(t, []string{"collection", "history"}, target.calls)
	assert.Len(t, target.items, 1)
	require.Len(t, target.history, 1)
	assert.Equal(t, domain.ActionUpsert, target.history[0].Action)
}

func TestRefreshStopsWhenCollectionFails(t *testing.T) {
	f := &fakeServer{
		dataStatus:  http.StatusBadGateway,
		historyBody: `{"history":[]}`,
	}
	c := newTestClient(t, f)

	var target captureTarget
	res := c.Refresh(context.Background(), &target)

	assert.Error(t, res.Err)
	assert.False(t, res.Collection)
	assert.False(t, res.History)
	assert.Empty(t, target.calls)
	for _, r := range f.Requests() {
		assert.NotEqual(t, PathHistory, r.Path, "history must not be fetched after a failed data fetch")
	}
}

func TestRefreshSkipsNonArrayCollection(t *testing.T) {
	f := &fakeServer{
		dataBody:    `{"items":null}`,
		historyBody: `{"history":[{"id":"s1","action":"create","time":5,"before":[],"after":[]}]}`,
	}
	c := newTestClient(t, f)

	var target captureTarget
	res := c.Refresh(context.Background(), &target)

	assert.ErrorIs(t, res.Err, ErrNotArray)
	assert.False(t, res.Collection)
	assert.True(t, res.History)
	assert.Equal(t, []string{"history"}, target.calls)
}

func TestRefreshStopsOnInvalidJSON(t *testing.T) {
	f := &fakeServer{dataBody: `not json`, historyBody: `{"history":[]}`}
	c := newTestClient(t, f)

	var target captureTarget
	res := c.Refresh(context.Background(), &target)

	assert.ErrorIs(t, res.Err, ErrMalformed)
	assert.NotErrorIs(t, res.Err, ErrNotArray)
	assert.Empty(t, target.calls)
}

func TestRefreshKeepsCollectionWhenHistoryMalformed(t *testing.T) {
	f := &fakeServer{
		dataBody:    `{"items":[]}`,
		historyBody: `{"history":"nope"}`,
	}
	c := newTestClient(t, f)

	var target captureTarget
	res := c.Refresh(context.Background(), &target)

	assert.ErrorIs(t, res.Err, ErrMalformed)
	assert.True(t, res.Collection)
	assert.False(t, res.History)
	assert.Equal(t, []string{"collection"}, target.calls)
}

func TestRefreshUnreachableServer(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1"}, logger.NewNop())
	defer c.Close(context.Background())

	var target captureTarget
	res := c.Refresh(context.Background(), &target)

	assert.Error(t, res.Err)
	assert.Empty(t, target.calls)
}

func TestPushesAreOrderedAndEncoded(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f)
	defer srv.Close()
	c := New(Options{BaseURL: srv.URL}, logger.NewNop())

	rec := domain.LinkRecord{ID: "a", Title: "Wiki", URL: "https://wiki.example", CreatedAt: 1, UpdatedAt: 1}
	snap := domain.Snapshot{ID: "s1", Action: domain.ActionCreate, Time: 1, Before: domain.Collection{}, After: domain.Collection{rec}}

	c.PushSnapshot(snap)
	c.PushCollection(domain.Collection{rec})
	require.NoError(t, c.Close(context.Background()))

	reqs := f.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, PathHistory, reqs[0].Path)
	assert.Equal(t, PathData, reqs[1].Path)

	var gotSnap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &gotSnap))
	assert.Equal(t, snap, gotSnap)

	var gotItems struct {
		Items domain.Collection `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(reqs[1].Body), &gotItems))
	assert.Equal(t, domain.Collection{rec}, gotItems.Items)
}

func TestPushFailuresAreSwallowed(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1"}, logger.NewNop())

	assert.NotPanics(t, func() {
		c.PushCollection(nil)
		c.PushSnapshot(domain.Snapshot{ID: "s"})
	})
	assert.NoError(t, c.Close(context.Background()))
}
