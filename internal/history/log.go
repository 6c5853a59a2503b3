package history

import (
	"sync"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

const (
	// DefaultLocalLimit bounds the history kept in the client cache.
	DefaultLocalLimit = 50
	// DefaultRemoteLimit bounds the history kept by the server.
	DefaultRemoteLimit = 500
)

// Log is an ordered, size-bounded history, newest first.
// Append is the only way a new entry gets in; entries are never edited.
type Log struct {
	mu      sync.RWMutex
	entries []domain.Snapshot
	limit   int
	now     domain.Clock
	newID   func() string
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the snapshot time source.
func WithClock(c domain.Clock) Option {
	return func(l *Log) { l.now = c }
}

// WithIDGenerator overrides the snapshot id generator.
func WithIDGenerator(f func() string) Option {
	return func(l *Log) { l.newID = f }
}

// NewLog creates a log bounded to limit entries (DefaultLocalLimit when limit <= 0),
// seeded with initial truncated to that bound.
func NewLog(limit int, initial []domain.Snapshot, opts ...Option) *Log {
	if limit <= 0 {
		limit = DefaultLocalLimit
	}
	l := &Log{
		entries: Truncate(domain.CloneSnapshots(initial), limit),
		limit:   limit,
		now:     domain.Now,
		newID:   domain.NewSnapshotID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records a new snapshot at the front and drops the oldest entries past the bound.
func (l *Log) Append(action domain.Action, before, after domain.Collection) domain.Snapshot {
	snap := domain.Snapshot{
		ID:     l.newID(),
		Action: action,
		Time:   l.now(),
		Before: before.Clone(),
		After:  after.Clone(),
	}

	l.mu.Lock()
	l.entries = Prepend(l.entries, snap, l.limit)
	l.mu.Unlock()

	return snap.Clone()
}

// List returns a copy of the entries, newest first.
func (l *Log) List() []domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return domain.CloneSnapshots(l.entries)
}

// FindByID looks up a snapshot.
func (l *Log) FindByID(id string) (domain.Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, s := range l.entries {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return domain.Snapshot{}, false
}

// ReplaceAll overwrites the log with next (no merge), truncated to the bound.
func (l *Log) ReplaceAll(next []domain.Snapshot) {
	entries := Truncate(domain.CloneSnapshots(next), l.limit)

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}

// Limit returns the configured bound.
func (l *Log) Limit() int {
	return l.limit
}

// Prepend returns a new list with s at the front, truncated to limit.
// entries is not modified.
func Prepend(entries []domain.Snapshot, s domain.Snapshot, limit int) []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(entries)+1)
	out = append(out, s)
	out = append(out, entries...)
	return Truncate(out, limit)
}

// Truncate drops the oldest entries past limit. A limit <= 0 keeps everything.
func Truncate(entries []domain.Snapshot, limit int) []domain.Snapshot {
	if limit > 0 && len(entries) > limit {
		return entries[:limit:limit]
	}
	return entries
}
