package redis

import "strings"

// DefaultKey is the key holding the document when none is configured.
const DefaultKey = "linkshelf:document"

// Keys names the Redis keys used by a backend.
type Keys struct {
	Document string // JSON document {items, history}
	Revision string // write counter, bumped with every document write
}

// KeysFor derives the key set from the configured document key.
func KeysFor(documentKey string) Keys {
	documentKey = strings.TrimSpace(documentKey)
	if documentKey == "" {
		documentKey = DefaultKey
	}
	return Keys{
		Document: documentKey,
		Revision: documentKey + ":rev",
	}
}
