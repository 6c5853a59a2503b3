package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

type memBackend struct {
	mu       sync.Mutex
	doc      Document
	readErr  error
	writeErr error
	writes   int
}

func (m *memBackend) Name() string { return "memory" }

func (m *memBackend) Read(context.Context) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return Document{}, m.readErr
	}
	raw, _ := json.Marshal(m.doc)
	var out Document
	_ = json.Unmarshal(raw, &out)
	return out, nil
}

func (m *memBackend) Write(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.doc = doc
	m.writes++
	return nil
}

func (m *memBackend) Ping(context.Context) error { return m.readErr }

type countingRecorder struct {
	mu        sync.Mutex
	snapshots map[string]int
	errors    map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{snapshots: map[string]int{}, errors: map[string]int{}}
}

func (r *countingRecorder) SnapshotAppended(a domain.Action, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[string(a)+"/"+source]++
}

func (r *countingRecorder) DocumentSize(int, int) {}

func (r *countingRecorder) BackendError(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[op]++
}

func fixedClock(ts domain.Timestamp) domain.Clock {
	return func() domain.Timestamp { return ts }
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func link(id string) domain.LinkRecord {
	return domain.LinkRecord{ID: id, Title: "T" + id, URL: "https://" + id + ".example", CreatedAt: 1, UpdatedAt: 1}
}

func newTestService(b Backend, limit int, opts ...Option) *Service {
	opts = append([]Option{WithClock(fixedClock(42)), WithIDGenerator(seqIDs("srv-"))}, opts...)
	return NewService(b, limit, logger.NewNop(), opts...)
}

func TestReplaceItemsSynthesizesUpsert(t *testing.T) {
	a, b := link("a"), link("b")
	backend := &memBackend{doc: Document{Items: domain.Collection{a}, History: []domain.Snapshot{}}}
	svc := newTestService(backend, 0)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	_, err := svc.ReplaceItems(ctx, domain.Collection{a, b})
	require.NoError(t, err)

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Collection{a, b}, items)

	hist, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, domain.ActionUpsert, hist[0].Action)
	assert.Equal(t, "srv-1", hist[0].ID)
	assert.Equal(t, domain.Timestamp(42), hist[0].Time)
	assert.Equal(t, domain.Collection{a}, hist[0].Before)
	assert.Equal(t, domain.Collection{a, b}, hist[0].After)
}

func TestReplaceItemsSeesOtherWriters(t *testing.T) {
	a, b := link("a"), link("b")
	backend := &memBackend{doc: Document{}.Normalize()}
	svc := newTestService(backend, 0)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	// another process writes behind our back
	backend.doc.Items = domain.Collection{a}

	snap, err := svc.ReplaceItems(ctx, domain.Collection{a, b})
	require.NoError(t, err)
	assert.Equal(t, domain.Collection{a}, snap.Before)
}

func TestHistoryBoundOnServer(t *testing.T) {
	backend := &memBackend{doc: Document{}.Normalize()}
	svc := newTestService(backend, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.ReplaceItems(ctx, domain.Collection{link(fmt.Sprint(i))})
		require.NoError(t, err)
	}

	hist, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, []string{"srv-5", "srv-4", "srv-3"}, []string{hist[0].ID, hist[1].ID, hist[2].ID})
}

func TestAppendSnapshotDefaults(t *testing.T) {
	backend := &memBackend{doc: Document{Items: domain.Collection{link("a")}}.Normalize()}
	svc := newTestService(backend, 0)
	ctx := context.Background()

	tests := []struct {
		name string
		body string
		want domain.Snapshot
	}{
		{
			name: "empty body",
			body: `{}`,
			want: domain.Snapshot{ID: "srv-1", Action: domain.ActionUnknown, Time: 42, Before: domain.Collection{}, After: domain.Collection{}},
		},
		{
			name: "full record kept",
			body: `{"id":"cli-9","action":"delete","time":1000,"before":[{"id":"a","title":"Ta","url":"https://a.example","createdAt":1,"updatedAt":1}],"after":[]}`,
			want: domain.Snapshot{ID: "cli-9", Action: domain.ActionDelete, Time: 1000, Before: domain.Collection{link("a")}, After: domain.Collection{}},
		},
		{
			name: "non-array collections coerced",
			body: `{"id":"cli-10","action":"create","time":0,"before":"oops","after":{"id":"a"}}`,
			want: domain.Snapshot{ID: "cli-10", Action: domain.ActionCreate, Time: 42, Before: domain.Collection{}, After: domain.Collection{}},
		},
		{
			name: "wrong types defaulted",
			body: `{"id":true,"action":3,"time":"yesterday"}`,
			want: domain.Snapshot{ID: "srv-2", Action: domain.ActionUnknown, Time: 42, Before: domain.Collection{}, After: domain.Collection{}},
		},
		{
			name: "numeric id kept",
			body: `{"id":7,"action":"update","time":5}`,
			want: domain.Snapshot{ID: "7", Action: domain.ActionUpdate, Time: 5, Before: domain.Collection{}, After: domain.Collection{}},
		},
		{
			name: "zero id replaced",
			body: `{"id":0}`,
			want: domain.Snapshot{ID: "srv-3", Action: domain.ActionUnknown, Time: 42, Before: domain.Collection{}, After: domain.Collection{}},
		},
		{
			name: "array body defaulted",
			body: `[]`,
			want: domain.Snapshot{ID: "srv-4", Action: domain.ActionUnknown, Time: 42, Before: domain.Collection{}, After: domain.Collection{}},
		},
		{
			name: "string body defaulted",
			body: `"x"`,
			want: domain.Snapshot{ID: "srv-5", Action: domain.ActionUnknown, Time: 42, Before: domain.Collection{}, After: domain.Collection{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeSnapshotInput(json.RawMessage(tt.body))
			require.NoError(t, err)

			got, err := svc.AppendSnapshot(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			hist, err := svc.History(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hist[0])
		})
	}

	_, err := DecodeSnapshotInput(json.RawMessage(`{"id":`))
	assert.Error(t, err)

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Collection{link("a")}, items, "appending history must not touch items")
}

func TestBackendFailuresSurface(t *testing.T) {
	rec := newCountingRecorder()
	backend := &memBackend{readErr: errors.New("disk gone")}
	svc := newTestService(backend, 0, WithRecorder(rec))
	ctx := context.Background()

	_, err := svc.Items(ctx)
	assert.Error(t, err)

	backend.readErr = nil
	backend.writeErr = errors.New("read-only")
	_, err = svc.ReplaceItems(ctx, domain.Collection{link("a")})
	assert.Error(t, err)

	assert.Equal(t, 1, rec.errors["read"])
	assert.Equal(t, 1, rec.errors["write"])
	assert.Empty(t, rec.snapshots)
}

func TestRecorderCountsBySource(t *testing.T) {
	rec := newCountingRecorder()
	svc := newTestService(&memBackend{}, 0, WithRecorder(rec))
	ctx := context.Background()

	_, err := svc.ReplaceItems(ctx, nil)
	require.NoError(t, err)
	_, err = svc.AppendSnapshot(ctx, SnapshotInput{Action: json.RawMessage(`"create"`)})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.snapshots["upsert/server"])
	assert.Equal(t, 1, rec.snapshots["create/client"])
}

func TestStats(t *testing.T) {
	svc := newTestService(&memBackend{doc: Document{Items: domain.Collection{link("a"), link("b")}}}, 10)
	require.NoError(t, svc.Load(context.Background()))

	assert.Equal(t, Stats{Backend: "memory", Items: 2, History: 0, HistoryLimit: 10}, svc.Stats())
}

func TestDecodeItems(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{name: "missing", raw: ``, wantLen: 0},
		{name: "null", raw: `null`, wantLen: 0},
		{name: "object", raw: `{"a":1}`, wantLen: 0},
		{name: "string", raw: `"x"`, wantLen: 0},
		{name: "array", raw: `[{"id":"a","title":"A","url":"https://a.example","createdAt":1,"updatedAt":1}]`, wantLen: 1},
		{name: "bad element", raw: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := DecodeItems(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidItems)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Len(t, items, tt.wantLen)
		})
	}
}
