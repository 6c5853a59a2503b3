package remote

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

// Target receives the remote state during a refresh.
type Target interface {
	ReplaceCollection(domain.Collection)
	ReplaceHistory([]domain.Snapshot)
}

// Result tells which parts of the local state a refresh overwrote.
type Result struct {
	Collection bool
	History    bool
	Err        error // first failure, informational only
}

// Refresh pulls the collection, then the history, and hands each well-formed
// value to t. Remote wins: local state is replaced without merging.
// A transport, status or decoding failure on the collection stops the refresh;
// a collection payload that is valid JSON but not an array is only skipped.
func (c *Client) Refresh(ctx context.Context, t Target) Result {
	var res Result

	items, err := c.FetchCollection(ctx)
	switch {
	case err == nil:
		t.ReplaceCollection(items)
		res.Collection = true
	case errors.Is(err, ErrNotArray):
		c.logger.Debug("refresh: collection payload ignored", logger.Error(err))
		res.Err = err
	default:
		c.logger.Debug("refresh: collection unavailable", logger.Error(err))
		res.Err = err
		return res
	}

	history, err := c.FetchHistory(ctx)
	if err != nil {
		c.logger.Debug("refresh: history unavailable", logger.Error(err))
		if res.Err == nil {
			res.Err = err
		}
		return res
	}
	t.ReplaceHistory(history)
	res.History = true

	return res
}
