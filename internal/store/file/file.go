// Package file persists the document as a single JSON file.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

// Backend stores the document at Path. Writes replace the file atomically.
type Backend struct {
	path string
}

// New returns a backend for path. The file does not need to exist yet.
func New(path string) *Backend {
	return &Backend{path: path}
}

func (b *Backend) Name() string { return "file" }

// Path returns the data file location.
func (b *Backend) Path() string { return b.path }

// Read loads the document. A missing or empty file is an empty document.
func (b *Backend) Read(ctx context.Context) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return store.Document{}, err
	}

	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return store.Document{}.Normalize(), nil
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return store.Document{}.Normalize(), nil
	}

	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return store.Document{}, fmt.Errorf("failed to decode %s: %w", b.path, err)
	}
	return doc.Normalize(), nil
}

// Write serializes doc next to the target and renames it into place.
func (b *Backend) Write(ctx context.Context, doc store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}
	return nil
}

// Ping checks that the data directory is usable.
func (b *Backend) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(b.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
