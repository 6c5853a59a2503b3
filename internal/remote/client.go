// Package remote talks to the linkshelf server: a startup refresh that pulls the
// collection and history, and fire-and-forget pushes after each local mutation.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/utils"
)

const (
	PathData    = "/api/data"
	PathHistory = "/api/history"
)

var (
	// ErrMalformed is returned when a response is not the expected JSON.
	ErrMalformed = errors.New("malformed response")
	// ErrNotArray is returned when a well-formed response lacks the expected array.
	ErrNotArray = fmt.Errorf("%w: payload is not an array", ErrMalformed)
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// Options configures a Client.
type Options struct {
	BaseURL    string        // ex: http://localhost:3000
	Timeout    time.Duration // per request, 0 = none
	HTTPClient *http.Client  // optional
}

// Client is the remote sync client.
type Client struct {
	baseURL string
	http    *http.Client
	exec    *Executor
	logger  logger.Logger
}

// New builds a Client and starts its push worker.
func New(opts Options, log logger.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		exec:    NewExecutor(log),
		logger:  log,
	}
}

// ─────────────────────────────
// Wire payloads
// ─────────────────────────────

type dataPayload struct {
	Items json.RawMessage `json:"items"`
}

type historyPayload struct {
	History json.RawMessage `json:"history"`
}

type itemsBody struct {
	Items domain.Collection `json:"items"`
}

// ─────────────────────────────
// Pull
// ─────────────────────────────

// FetchCollection returns the server's collection.
func (c *Client) FetchCollection(ctx context.Context) (domain.Collection, error) {
	var p dataPayload
	if err := c.getJSON(ctx, PathData, &p); err != nil {
		return nil, err
	}
	var items domain.Collection
	if err := decodeArray(p.Items, &items); err != nil {
		return nil, fmt.Errorf("GET %s: %w", PathData, err)
	}
	return items, nil
}

// FetchHistory returns the server's history, newest first.
func (c *Client) FetchHistory(ctx context.Context) ([]domain.Snapshot, error) {
	var p historyPayload
	if err := c.getJSON(ctx, PathHistory, &p); err != nil {
		return nil, err
	}
	var history []domain.Snapshot
	if err := decodeArray(p.History, &history); err != nil {
		return nil, fmt.Errorf("GET %s: %w", PathHistory, err)
	}
	return history, nil
}

// decodeArray accepts only a JSON array (possibly empty).
func decodeArray(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return ErrNotArray
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// ─────────────────────────────
// Push
// ─────────────────────────────

// PostCollection replaces the server's collection.
func (c *Client) PostCollection(ctx context.Context, items domain.Collection) error {
	return c.postJSON(ctx, PathData, itemsBody{Items: items})
}

// PostSnapshot appends a snapshot to the server's history.
func (c *Client) PostSnapshot(ctx context.Context, s domain.Snapshot) error {
	return c.postJSON(ctx, PathHistory, s)
}

// PushCollection queues a PostCollection. Failures are logged, never returned.
func (c *Client) PushCollection(items domain.Collection) {
	items = items.Clone()
	c.exec.Go("push collection", func(ctx context.Context) error {
		return c.PostCollection(ctx, items)
	})
}

// PushSnapshot queues a PostSnapshot. Failures are logged, never returned.
func (c *Client) PushSnapshot(s domain.Snapshot) {
	s = s.Clone()
	c.exec.Go("push snapshot "+s.ID, func(ctx context.Context) error {
		return c.PostSnapshot(ctx, s)
	})
}

// Close waits for queued pushes, bounded by ctx.
func (c *Client) Close(ctx context.Context) error {
	return c.exec.Close(ctx)
}

// ─────────────────────────────
// HTTP helpers
// ─────────────────────────────

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer utils.DrainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: http.MethodGet, Path: path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: %w: %v", path, ErrMalformed, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer utils.DrainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: http.MethodPost, Path: path, Code: resp.StatusCode}
	}
	return nil
}
