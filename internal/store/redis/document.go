// Package redis persists the document as a JSON blob in a single Redis key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

// Backend stores the document in Redis.
type Backend struct {
	client redis.UniversalClient
	keys   Keys
}

// New creates a backend on an already connected client.
func New(client redis.UniversalClient, documentKey string) *Backend {
	return &Backend{
		client: client,
		keys:   KeysFor(documentKey),
	}
}

func (b *Backend) Name() string { return "redis" }

// Keys returns the keys in use.
func (b *Backend) Keys() Keys { return b.keys }

// Read loads the document. A missing key is an empty document.
func (b *Backend) Read(ctx context.Context) (store.Document, error) {
	data, err := b.client.Get(ctx, b.keys.Document).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.Document{}.Normalize(), nil
		}
		return store.Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return store.Document{}, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc.Normalize(), nil
}

// Write replaces the document and bumps the revision in one transaction.
func (b *Backend) Write(ctx context.Context, doc store.Document) error {
	data, err := json.Marshal(doc.Normalize())
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, b.keys.Document, data, 0)
		pipe.Incr(ctx, b.keys.Revision)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Revision returns how many times the document was written. 0 when never written.
func (b *Backend) Revision(ctx context.Context) (int64, error) {
	rev, err := b.client.Get(ctx, b.keys.Revision).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get revision: %w", err)
	}
	return rev, nil
}

// Ping checks the connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
