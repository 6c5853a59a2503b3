// Package store is the server-side authority: a persisted document holding the
// collection and its history, and the read/write rules applied to it.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

// Document is the persisted layout: the collection and the history, newest first.
type Document struct {
	Items   domain.Collection `json:"items"`
	History []domain.Snapshot `json:"history"`
}

// Normalize replaces nil lists with empty ones.
func (d Document) Normalize() Document {
	if d.Items == nil {
		d.Items = domain.Collection{}
	}
	if d.History == nil {
		d.History = []domain.Snapshot{}
	}
	return d
}

// Backend persists a Document. Implementations must treat a missing document as empty.
type Backend interface {
	Name() string
	Read(ctx context.Context) (Document, error)
	Write(ctx context.Context, doc Document) error
	Ping(ctx context.Context) error
}

// ErrInvalidItems is returned when an items array holds something that is not a link record.
var ErrInvalidItems = errors.New("invalid items")

// DecodeItems reads a posted items value. Anything that is not an array yields
// an empty collection; an array with malformed records is rejected.
func DecodeItems(raw json.RawMessage) (domain.Collection, error) {
	if !isArray(raw) {
		return domain.Collection{}, nil
	}
	var items domain.Collection
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidItems, err)
	}
	return items, nil
}

// SnapshotInput is a snapshot posted by a client. Every field is optional.
// A body that is not a JSON object decodes to the zero value, which resolves to all defaults.
type SnapshotInput struct {
	ID     json.RawMessage `json:"id"`
	Action json.RawMessage `json:"action"`
	Time   json.RawMessage `json:"time"`
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

// resolve fills the defaults: a fresh id, "unknown" action, current time,
// and empty collections for anything that is not a well-formed array.
func (in SnapshotInput) resolve(newID func() string, now domain.Clock) domain.Snapshot {
	s := domain.Snapshot{
		Action: domain.ActionUnknown,
		Time:   now(),
		Before: lenientCollection(in.Before),
		After:  lenientCollection(in.After),
	}

	s.ID = snapshotID(in.ID)
	if s.ID == "" {
		s.ID = newID()
	}
	var action string
	if json.Unmarshal(in.Action, &action) == nil {
		s.Action = domain.ParseAction(action)
	}
	var t float64
	if json.Unmarshal(in.Time, &t) == nil && t > 0 {
		s.Time = domain.Timestamp(int64(t))
	}
	return s
}

// snapshotID keeps a client id that is a non-empty string or a non-zero number.
// Numbers keep their JSON text. Anything else yields "".
func snapshotID(raw json.RawMessage) string {
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if dec.Decode(&num) == nil {
		if f, err := num.Float64(); err == nil && f != 0 {
			return num.String()
		}
	}
	return ""
}

func lenientCollection(raw json.RawMessage) domain.Collection {
	if !isArray(raw) {
		return domain.Collection{}
	}
	var c domain.Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Collection{}
	}
	return c
}

// DecodeSnapshotInput reads a posted snapshot. Valid JSON that is not an object
// yields an empty input; invalid JSON is an error.
func DecodeSnapshotInput(raw json.RawMessage) (SnapshotInput, error) {
	var in SnapshotInput
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return in, nil
	}
	if !json.Valid(trimmed) {
		return in, errors.New("invalid JSON")
	}
	if trimmed[0] != '{' {
		return in, nil
	}
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return SnapshotInput{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return in, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
