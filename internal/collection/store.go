package collection

import (
	"sync"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

// Change pairs the full collection before and after a mutation.
// Both values are handed to the history log as-is.
type Change struct {
	Before domain.Collection
	After  domain.Collection
}

// Store owns the canonical ordered collection.
// It performs no validation; callers check fields before calling in.
type Store struct {
	mu    sync.RWMutex
	items domain.Collection
	now   domain.Clock
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for createdAt/updatedAt.
func WithClock(c domain.Clock) Option {
	return func(s *Store) { s.now = c }
}

// WithIDGenerator overrides the record id generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// NewStore creates a store seeded with initial (copied).
func NewStore(initial domain.Collection, opts ...Option) *Store {
	s := &Store{
		items: initial.Clone(),
		now:   domain.Now,
		newID: domain.NewLinkID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a copy of the current collection.
func (s *Store) List() domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.items.Clone()
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Find returns the record with the given id.
func (s *Store) Find(id string) (domain.LinkRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.items.Find(id)
}

// Create appends a new record with a fresh id and createdAt = updatedAt = now.
func (s *Store) Create(fields domain.LinkFields) (domain.LinkRecord, Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := domain.LinkRecord{
		ID:          s.newID(),
		Title:       fields.Title,
		URL:         fields.URL,
		Description: fields.Description,
		Icon:        fields.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	before := s.items
	after := make(domain.Collection, 0, len(before)+1)
	after = append(after, before...)
	after = append(after, rec)

	s.items = after
	return rec, Change{Before: before.Clone(), After: after.Clone()}
}

// Update merges patch into the record matching id, keeping its position and createdAt.
// Returns false and leaves the collection untouched when id is unknown.
func (s *Store) Update(id string, patch domain.LinkPatch) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.items.Index(id)
	if i < 0 {
		return Change{}, false
	}

	before := s.items
	after := before.Clone()
	rec := patch.Apply(after[i])
	rec.ID = before[i].ID
	rec.CreatedAt = before[i].CreatedAt
	rec.UpdatedAt = s.now()
	after[i] = rec

	s.items = after
	return Change{Before: before.Clone(), After: after.Clone()}, true
}

// Delete removes the record matching id, preserving the order of the rest.
// Returns false when id is unknown.
func (s *Store) Delete(id string) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.items.Index(id)
	if i < 0 {
		return Change{}, false
	}

	before := s.items
	after := make(domain.Collection, 0, len(before)-1)
	after = append(after, before[:i]...)
	after = append(after, before[i+1:]...)

	s.items = after
	return Change{Before: before.Clone(), After: after.Clone()}, true
}

// ReplaceAll swaps in next wholesale. Used by restore and remote refresh.
func (s *Store) ReplaceAll(next domain.Collection) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.items
	s.items = next.Clone()
	return Change{Before: before.Clone(), After: s.items.Clone()}
}
