package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trezcool/darasa/core"
)

// NetworkOp is one GET-like remote fetch returning raw JSON.
type NetworkOp func(ctx context.Context) (json.RawMessage, error)

// Result is a read-through outcome. FromCache is true whenever the data
// did not come straight from the network (cached copy or fallback).
type Result struct {
	Data      json.RawMessage
	FromCache bool
}

// mockable: tests run persistence inline instead of in a goroutine.
var persistAsync = func(f func()) { go f() }

// ReadThrough mediates GET-like reads: try the network, fall back to the
// persisted snapshot, else the caller's fallback value. Successful network
// results are written back without the caller waiting on the write.
// No retries here; reads are one-shot per call.
type ReadThrough struct {
	store  Store
	logger core.Logger
	// maxAge bounds the age of cache entries served on network failure;
	// zero serves them indefinitely.
	maxAge time.Duration
}

func NewReadThrough(store Store, logger core.Logger, maxAge time.Duration) *ReadThrough {
	return &ReadThrough{store: store, logger: logger, maxAge: maxAge}
}

func (c *ReadThrough) Request(ctx context.Context, op NetworkOp, fallback json.RawMessage, cacheKey string) (Result, error) {
	data, netErr := op(ctx)
	if netErr == nil {
		persistAsync(func() {
			pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			rec := Record{ID: cacheKey, Data: data, StoredAt: nowFunc().UTC()}
			if err := c.store.Put(pctx, CollectionAPICache, rec); err != nil {
				c.logger.Warn(fmt.Sprintf("cache: persisting %q failed: %v", cacheKey, err), err)
			}
		})
		return Result{Data: data}, nil
	}

	rec, err := c.store.Get(ctx, CollectionAPICache, cacheKey)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("cache: reading %q failed: %v", cacheKey, err), err)
	}
	if rec != nil && c.fresh(*rec) {
		return Result{Data: rec.Data, FromCache: true}, nil
	}

	if fallback != nil {
		return Result{Data: fallback, FromCache: true}, nil
	}
	return Result{}, &core.OfflineUnavailableError{CacheKey: cacheKey, Err: netErr}
}

// fresh treats stale entries as absent so they fall through to the
// fallback chain.
func (c *ReadThrough) fresh(rec Record) bool {
	if c.maxAge <= 0 {
		return true
	}
	return nowFunc().UTC().Sub(rec.StoredAt) <= c.maxAge
}
