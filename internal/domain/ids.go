package domain

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewLinkID returns a fresh opaque identifier for a link record.
func NewLinkID() string {
	return uuid.New().String()
}

// NewSnapshotID returns a fresh identifier for a history snapshot.
// ULIDs sort by creation time, which keeps ids readable in a newest-first log.
func NewSnapshotID() string {
	return ulid.Make().String()
}
