package collection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

// fakeClock advances one millisecond per call.
func fakeClock(start domain.Timestamp) domain.Clock {
	t := start
	return func() domain.Timestamp {
		t++
		return t
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("link-%d", n)
	}
}

func newTestStore(initial domain.Collection) *Store {
	return NewStore(initial, WithClock(fakeClock(1000)), WithIDGenerator(sequentialIDs()))
}

func TestCreateAppendsAtEnd(t *testing.T) {
	s := newTestStore(nil)

	first, change := s.Create(domain.LinkFields{Title: "Wiki", URL: "https://wiki.example"})
	assert.Empty(t, change.Before)
	require.Len(t, change.After, 1)
	assert.Equal(t, first, change.After[0])
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second, change := s.Create(domain.LinkFields{Title: "Grafana", URL: "https://grafana.example"})
	require.Len(t, change.Before, 1)
	require.Len(t, change.After, 2)
	assert.Equal(t, []string{first.ID, second.ID}, ids(s.List()))
}

func TestUpdatePreservesCreatedAtAndPosition(t *testing.T) {
	s := newTestStore(nil)
	a, _ := s.Create(domain.LinkFields{Title: "A", URL: "https://a.example"})
	b, _ := s.Create(domain.LinkFields{Title: "B", URL: "https://b.example", Description: "keep me"})
	c, _ := s.Create(domain.LinkFields{Title: "C", URL: "https://c.example"})

	title := "B2"
	change, ok := s.Update(b.ID, domain.LinkPatch{Title: &title})
	require.True(t, ok)

	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(change.After))
	updated := change.After[1]
	assert.Equal(t, "B2", updated.Title)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, b.CreatedAt, updated.CreatedAt)
	assert.Greater(t, updated.UpdatedAt, b.UpdatedAt)
	assert.Equal(t, b, change.Before[1])
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	s := newTestStore(nil)
	s.Create(domain.LinkFields{Title: "A", URL: "https://a.example"})
	before := s.List()

	title := "nope"
	_, ok := s.Update("missing", domain.LinkPatch{Title: &title})
	assert.False(t, ok)
	assert.Equal(t, before, s.List())
}

func TestDeletePreservesOrder(t *testing.T) {
	s := newTestStore(nil)
	a, _ := s.Create(domain.LinkFields{Title: "A", URL: "https://a.example"})
	b, _ := s.Create(domain.LinkFields{Title: "B", URL: "https://b.example"})
	c, _ := s.Create(domain.LinkFields{Title: "C", URL: "https://c.example"})

	change, ok := s.Delete(b.ID)
	require.True(t, ok)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(change.Before))
	assert.Equal(t, []string{a.ID, c.ID}, ids(change.After))

	_, ok = s.Delete("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestReplaceAll(t *testing.T) {
	s := newTestStore(nil)
	s.Create(domain.LinkFields{Title: "A", URL: "https://a.example"})

	next := domain.Collection{{ID: "x", Title: "X", URL: "https://x.example"}}
	change := s.ReplaceAll(next)
	require.Len(t, change.Before, 1)
	assert.Equal(t, next, change.After)

	// The store keeps its own copy.
	next[0].Title = "mutated"
	got, ok := s.Find("x")
	require.True(t, ok)
	assert.Equal(t, "X", got.Title)
}

func TestChangesAreIndependentCopies(t *testing.T) {
	s := newTestStore(nil)
	_, change := s.Create(domain.LinkFields{Title: "A", URL: "https://a.example"})
	change.After[0].Title = "mutated"

	assert.Equal(t, "A", s.List()[0].Title)
}

func TestIDsStayUniqueAcrossMutations(t *testing.T) {
	s := NewStore(nil)
	for i := 0; i < 20; i++ {
		rec, _ := s.Create(domain.LinkFields{Title: fmt.Sprintf("L%d", i), URL: "https://l.example"})
		if i%3 == 0 {
			s.Delete(rec.ID)
		}
		if i%4 == 0 {
			title := "edited"
			s.Update(rec.ID, domain.LinkPatch{Title: &title})
		}

		seen := map[string]bool{}
		for _, r := range s.List() {
			require.False(t, seen[r.ID], "duplicate id %s", r.ID)
			seen[r.ID] = true
		}
	}
	assert.Equal(t, 13, s.Len())
}

func ids(c domain.Collection) []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.ID
	}
	return out
}
