package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkPatchApply(t *testing.T) {
	orig := LinkRecord{
		ID: "a", Title: "Wiki", URL: "https://wiki.example",
		Description: "docs", CreatedAt: 10, UpdatedAt: 10,
	}

	title := "Team wiki"
	got := LinkPatch{Title: &title}.Apply(orig)

	assert.Equal(t, "Team wiki", got.Title)
	assert.Equal(t, orig.URL, got.URL)
	assert.Equal(t, "docs", got.Description)
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, orig.CreatedAt, got.CreatedAt)
	assert.Equal(t, orig.UpdatedAt, got.UpdatedAt)
}

func TestPatchFromClearsOptionalFields(t *testing.T) {
	orig := LinkRecord{ID: "a", Title: "Wiki", URL: "https://wiki.example", Description: "docs", Icon: "https://i.example/x.png"}

	got := PatchFrom(LinkFields{Title: "Wiki", URL: "https://wiki.example"}).Apply(orig)

	assert.Empty(t, got.Description)
	assert.Empty(t, got.Icon)
	assert.Equal(t, orig.Fields().Title, got.Title)
}

func TestLinkRecordJSON(t *testing.T) {
	r := LinkRecord{ID: "a", Title: "Wiki", URL: "https://wiki.example", CreatedAt: 1700000000000, UpdatedAt: 1700000000001}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"a","title":"Wiki","url":"https://wiki.example","createdAt":1700000000000,"updatedAt":1700000000001}`,
		string(data))
}

func TestCollectionMarshalNil(t *testing.T) {
	var c Collection
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = json.Marshal(Snapshot{ID: "s", Action: ActionCreate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s","action":"create","time":0,"before":[],"after":[]}`, string(data))
}

func TestCollectionFind(t *testing.T) {
	c := Collection{{ID: "a"}, {ID: "b"}}

	assert.Equal(t, 1, c.Index("b"))
	assert.Equal(t, -1, c.Index("z"))

	r, ok := c.Find("a")
	assert.True(t, ok)
	assert.Equal(t, "a", r.ID)

	_, ok = c.Find("z")
	assert.False(t, ok)
}

func TestCollectionCloneIsIndependent(t *testing.T) {
	c := Collection{{ID: "a", Title: "A"}}
	cp := c.Clone()
	cp[0].Title = "changed"

	assert.Equal(t, "A", c[0].Title)
	assert.NotNil(t, Collection(nil).Clone())
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		for _, id := range []string{NewLinkID(), NewSnapshotID()} {
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}
