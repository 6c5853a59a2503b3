// Package localstore is the client-side cache: a tiny key-value table in SQLite
// holding the collection, the history log and the theme preference.
//
// Reads never fail: missing or corrupted values fall back to empty defaults.
// Writes are best effort and only logged on failure.
package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

const (
	KeyLinks   = "linkshelf.links.v1"
	KeyHistory = "linkshelf.history.v1"
	KeyTheme   = "linkshelf.theme.v1"
)

// Store is the SQLite-backed local cache.
type Store struct {
	db     *sql.DB
	path   string
	logger logger.Logger
}

// Open creates (or reuses) the cache database at path.
func Open(path string, log logger.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &Store{db: db, path: path, logger: log}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadCollection returns the cached collection, or an empty one.
func (s *Store) LoadCollection() domain.Collection {
	return load(s, KeyLinks, domain.Collection{})
}

// SaveCollection caches the collection.
func (s *Store) SaveCollection(c domain.Collection) {
	save(s, KeyLinks, c)
}

// LoadHistory returns the cached history, or an empty one.
func (s *Store) LoadHistory() []domain.Snapshot {
	return load(s, KeyHistory, []domain.Snapshot{})
}

// SaveHistory caches the history.
func (s *Store) SaveHistory(h []domain.Snapshot) {
	if h == nil {
		h = []domain.Snapshot{}
	}
	save(s, KeyHistory, h)
}

// LoadTheme returns the cached theme, light by default.
func (s *Store) LoadTheme() domain.Theme {
	raw, ok, err := s.get(KeyTheme)
	if err != nil || !ok {
		return domain.ThemeLight
	}
	return domain.ParseTheme(raw)
}

// SaveTheme caches the theme preference.
func (s *Store) SaveTheme(t domain.Theme) {
	if err := s.put(KeyTheme, string(t)); err != nil {
		s.logger.Warn("failed to save theme", logger.Error(err))
	}
}

func load[T any](s *Store, key string, def T) T {
	raw, ok, err := s.get(key)
	if err != nil {
		s.logger.Warn("failed to read cache, using empty value",
			logger.String("key", key), logger.Error(err))
		return def
	}
	if !ok {
		return def
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.logger.Warn("corrupted cache entry, using empty value",
			logger.String("key", key), logger.Error(err))
		return def
	}
	return v
}

func save[T any](s *Store, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("failed to encode cache entry",
			logger.String("key", key), logger.Error(err))
		return
	}
	if err := s.put(key, string(data)); err != nil {
		s.logger.Warn("failed to write cache entry",
			logger.String("key", key), logger.Error(err))
	}
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
