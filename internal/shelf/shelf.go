// Package shelf is the client session: it owns the collection, the history log
// and the theme, persists them in the local cache after every mutation and
// mirrors each mutation to the remote store in the background.
package shelf

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/linkshelf/internal/collection"
	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/history"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/remote"
)

// ErrOffline is reported by Refresh when no remote store is configured.
var ErrOffline = errors.New("offline: no remote store configured")

// Cache persists the session between runs. Implemented by localstore.Store.
type Cache interface {
	LoadCollection() domain.Collection
	SaveCollection(domain.Collection)
	LoadHistory() []domain.Snapshot
	SaveHistory([]domain.Snapshot)
	LoadTheme() domain.Theme
	SaveTheme(domain.Theme)
}

// Syncer mirrors the session to the remote store. Implemented by remote.Client.
type Syncer interface {
	Refresh(ctx context.Context, t remote.Target) remote.Result
	PushCollection(domain.Collection)
	PushSnapshot(domain.Snapshot)
	Close(ctx context.Context) error
}

// Confirmer asks the user before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// Offline is a Syncer that never talks to anything.
type Offline struct{}

func (Offline) Refresh(context.Context, remote.Target) remote.Result {
	return remote.Result{Err: ErrOffline}
}
func (Offline) PushCollection(domain.Collection) {}
func (Offline) PushSnapshot(domain.Snapshot)     {}
func (Offline) Close(context.Context) error      { return nil }

// Params wires a Shelf. Only Cache is required.
type Params struct {
	Cache        Cache
	Syncer       Syncer    // nil => Offline
	Confirmer    Confirmer // nil => AlwaysConfirm
	HistoryLimit int       // <= 0 => history.DefaultLocalLimit
	Logger       logger.Logger

	Clock       domain.Clock
	LinkIDs     func() string
	SnapshotIDs func() string
}

// Shelf is the session object.
type Shelf struct {
	mu      sync.Mutex
	links   *collection.Store
	history *history.Log
	theme   domain.Theme

	cache   Cache
	syncer  Syncer
	confirm Confirmer
	logger  logger.Logger
}

// New loads the cached state and returns a ready session.
func New(p Params) *Shelf {
	if p.Syncer == nil {
		p.Syncer = Offline{}
	}
	if p.Confirmer == nil {
		p.Confirmer = AlwaysConfirm
	}
	if p.Logger == nil {
		p.Logger = logger.NewNop()
	}

	var (
		storeOpts []collection.Option
		logOpts   []history.Option
	)
	if p.Clock != nil {
		storeOpts = append(storeOpts, collection.WithClock(p.Clock))
		logOpts = append(logOpts, history.WithClock(p.Clock))
	}
	if p.LinkIDs != nil {
		storeOpts = append(storeOpts, collection.WithIDGenerator(p.LinkIDs))
	}
	if p.SnapshotIDs != nil {
		logOpts = append(logOpts, history.WithIDGenerator(p.SnapshotIDs))
	}

	return &Shelf{
		links:   collection.NewStore(p.Cache.LoadCollection(), storeOpts...),
		history: history.NewLog(p.HistoryLimit, p.Cache.LoadHistory(), logOpts...),
		theme:   p.Cache.LoadTheme(),
		cache:   p.Cache,
		syncer:  p.Syncer,
		confirm: p.Confirmer,
		logger:  p.Logger,
	}
}

// ─────────────────────────────
// Reads
// ─────────────────────────────

func (s *Shelf) Links() domain.Collection {
	return s.links.List()
}

func (s *Shelf) Find(id string) (domain.LinkRecord, bool) {
	return s.links.Find(id)
}

// History returns the local log, newest first.
func (s *Shelf) History() []domain.Snapshot {
	return s.history.List()
}

func (s *Shelf) FindSnapshot(id string) (domain.Snapshot, bool) {
	return s.history.FindByID(id)
}

func (s *Shelf) Theme() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// ─────────────────────────────
// Mutations
// ─────────────────────────────

// Create adds a record at the end of the collection.
// fields are expected to be validated already.
func (s *Shelf) Create(fields domain.LinkFields) domain.LinkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, change := s.links.Create(fields)
	s.commit(domain.ActionCreate, change)
	return rec
}

// Update merges patch into the record. An unknown id changes nothing.
func (s *Shelf) Update(id string, patch domain.LinkPatch) (domain.LinkRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, ok := s.links.Update(id, patch)
	if !ok {
		return domain.LinkRecord{}, false
	}
	s.commit(domain.ActionUpdate, change)

	rec, _ := change.After.Find(id)
	return rec, true
}

// Delete removes the record after confirmation. It reports false when the id
// is unknown or the prompt was declined.
func (s *Shelf) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.links.Find(id)
	if !ok {
		return false
	}
	if !s.confirm.Confirm(fmt.Sprintf("Delete %q?", rec.Title)) {
		return false
	}

	change, ok := s.links.Delete(id)
	if !ok {
		return false
	}
	s.commit(domain.ActionDelete, change)
	return true
}

// Restore replaces the collection with the after state of a history entry.
// The entry itself is kept and a new restore entry is prepended.
func (s *Shelf) Restore(historyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.FindByID(historyID)
	if !ok {
		return false
	}
	if !s.confirm.Confirm("Restore the collection to this version? Current links will be overwritten.") {
		return false
	}

	change := s.links.ReplaceAll(snap.After)
	s.commit(domain.ActionRestore, change)
	return true
}

// commit records change in the log, persists both, then queues the pushes:
// snapshot first, collection second.
func (s *Shelf) commit(action domain.Action, change collection.Change) {
	snap := s.history.Append(action, change.Before, change.After)

	s.cache.SaveHistory(s.history.List())
	s.cache.SaveCollection(change.After)

	s.syncer.PushSnapshot(snap)
	s.syncer.PushCollection(change.After)

	s.logger.Debug("mutation committed",
		logger.String("action", string(action)),
		logger.String("snapshot", snap.ID),
		logger.Int("items", len(change.After)))
}

// ─────────────────────────────
// Theme
// ─────────────────────────────

// SetTheme persists the preference. It is not part of the history.
func (s *Shelf) SetTheme(t domain.Theme) domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = domain.ParseTheme(string(t))
	s.cache.SaveTheme(s.theme)
	return s.theme
}

func (s *Shelf) ToggleTheme() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = s.theme.Toggle()
	s.cache.SaveTheme(s.theme)
	return s.theme
}

// ─────────────────────────────
// Remote
// ─────────────────────────────

// Refresh overwrites the local collection and history with the remote ones.
// Nothing is merged and no history entry is added.
func (s *Shelf) Refresh(ctx context.Context) remote.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.syncer.Refresh(ctx, refreshTarget{s: s})
	if res.Err != nil && !errors.Is(res.Err, ErrOffline) {
		s.logger.Warn("remote refresh incomplete, using cached data",
			logger.Bool("collection", res.Collection),
			logger.Bool("history", res.History),
			logger.Error(res.Err))
	}
	return res
}

// Close waits for queued pushes, bounded by ctx.
func (s *Shelf) Close(ctx context.Context) error {
	if err := s.syncer.Close(ctx); err != nil {
		return fmt.Errorf("failed to drain pending pushes: %w", err)
	}
	return nil
}

// refreshTarget applies remote state while the caller holds s.mu.
type refreshTarget struct {
	s *Shelf
}

func (t refreshTarget) ReplaceCollection(c domain.Collection) {
	t.s.links.ReplaceAll(c)
	t.s.cache.SaveCollection(t.s.links.List())
}

func (t refreshTarget) ReplaceHistory(h []domain.Snapshot) {
	t.s.history.ReplaceAll(h)
	t.s.cache.SaveHistory(t.s.history.List())
}
