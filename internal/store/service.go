package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/history"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

// Source labels where a snapshot came from.
const (
	SourceServer = "server" // synthesized on a full collection write
	SourceClient = "client" // posted to /api/history
)

// Recorder observes the document. Implemented by the metrics package.
type Recorder interface {
	SnapshotAppended(action domain.Action, source string)
	DocumentSize(items, history int)
	BackendError(op string)
}

type nopRecorder struct{}

func (nopRecorder) SnapshotAppended(domain.Action, string) {}
func (nopRecorder) DocumentSize(int, int)                  {}
func (nopRecorder) BackendError(string)                    {}

// Stats is a point-in-time summary used by /infra.
type Stats struct {
	Backend      string `json:"backend"`
	Items        int    `json:"items"`
	History      int    `json:"history"`
	HistoryLimit int    `json:"history_limit"`
}

// Service applies the server rules on top of a Backend.
// Reads always go back to the backend. Writes are read-modify-write under a
// process-local mutex; across processes the last write wins.
type Service struct {
	backend  Backend
	limit    int
	now      domain.Clock
	newID    func() string
	recorder Recorder
	logger   logger.Logger

	mu  sync.Mutex
	doc Document
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c domain.Clock) Option        { return func(s *Service) { s.now = c } }
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }
func WithRecorder(r Recorder) Option         { return func(s *Service) { s.recorder = r } }

// NewService builds a service. limit <= 0 means history.DefaultRemoteLimit.
func NewService(backend Backend, limit int, log logger.Logger, opts ...Option) *Service {
	if limit <= 0 {
		limit = history.DefaultRemoteLimit
	}
	s := &Service{
		backend:  backend,
		limit:    limit,
		now:      domain.Now,
		newID:    domain.NewSnapshotID,
		recorder: nopRecorder{},
		logger:   log,
		doc:      Document{}.Normalize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying backend.
func (s *Service) Backend() Backend {
	return s.backend
}

// Load reads the persisted document once at startup.
func (s *Service) Load(ctx context.Context) error {
	_, err := s.read(ctx)
	return err
}

// Items re-reads the document and returns the collection.
func (s *Service) Items(ctx context.Context) (domain.Collection, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// History re-reads the document and returns the history, newest first.
func (s *Service) History(ctx context.Context) ([]domain.Snapshot, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.History, nil
}

// ReplaceItems stores items as the new collection and prepends an upsert
// snapshot whose before is the collection it replaced.
func (s *Service) ReplaceItems(ctx context.Context, items domain.Collection) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.readLocked(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{
		ID:     s.newID(),
		Action: domain.ActionUpsert,
		Time:   s.now(),
		Before: cur.Items.Clone(),
		After:  items.Clone(),
	}
	next := Document{
		Items:   items.Clone(),
		History: history.Prepend(cur.History, snap, s.limit),
	}.Normalize()

	if err := s.writeLocked(ctx, next); err != nil {
		return domain.Snapshot{}, err
	}
	s.recorder.SnapshotAppended(snap.Action, SourceServer)
	return snap, nil
}

// AppendSnapshot records a client-built snapshot, filling in missing fields.
func (s *Service) AppendSnapshot(ctx context.Context, in SnapshotInput) (domain.Snapshot, error) {
	snap := in.resolve(s.newID, s.now)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.readLocked(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	next := Document{
		Items:   cur.Items,
		History: history.Prepend(cur.History, snap, s.limit),
	}.Normalize()

	if err := s.writeLocked(ctx, next); err != nil {
		return domain.Snapshot{}, err
	}
	s.recorder.SnapshotAppended(snap.Action, SourceClient)
	return snap, nil
}

// Stats reports the last document seen by the service.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Backend:      s.backend.Name(),
		Items:        len(s.doc.Items),
		History:      len(s.doc.History),
		HistoryLimit: s.limit,
	}
}

func (s *Service) read(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx)
}

func (s *Service) readLocked(ctx context.Context) (Document, error) {
	doc, err := s.backend.Read(ctx)
	if err != nil {
		s.recorder.BackendError("read")
		s.logger.Error("failed to read document",
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
		return Document{}, fmt.Errorf("failed to read document: %w", err)
	}
	doc = doc.Normalize()
	doc.History = history.Truncate(doc.History, s.limit)

	s.doc = doc
	s.recorder.DocumentSize(len(doc.Items), len(doc.History))
	return doc, nil
}

func (s *Service) writeLocked(ctx context.Context, doc Document) error {
	if err := s.backend.Write(ctx, doc); err != nil {
		s.recorder.BackendError("write")
		s.logger.Error("failed to write document",
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
		return fmt.Errorf("failed to write document: %w", err)
	}
	s.doc = doc
	s.recorder.DocumentSize(len(doc.Items), len(doc.History))
	return nil
}
