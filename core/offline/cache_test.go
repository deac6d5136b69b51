package offline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// runPersistInline makes the fire-and-forget write-back synchronous so the
// tests can assert on the stored state right after Request returns.
func runPersistInline(t *testing.T) {
	t.Helper()
	persistAsync = func(f func()) { f() }
	t.Cleanup(func() { persistAsync = func(f func()) { go f() } })
}

func okOp(data string) NetworkOp {
	return func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(data), nil
	}
}

func failOp() NetworkOp {
	return func(context.Context) (json.RawMessage, error) {
		return nil, core.NewNetworkError(errors.New("connection refused"), 0)
	}
}

func TestReadThrough_Request_networkSuccessIsPersisted(t *testing.T) {
	runPersistInline(t)
	store := newMemStore()
	c := NewReadThrough(store, testLogger{}, 0)

	res, err := c.Request(context.Background(), okOp(`[{"id":1}]`), nil, "courses:all")
	if err != nil {
		t.Fatalf("Request() failed: %v", err)
	}
	if res.FromCache {
		t.Error("FromCache = true on network success")
	}
	if string(res.Data) != `[{"id":1}]` {
		t.Errorf("Data = %s", res.Data)
	}

	rec, err := store.Get(context.Background(), CollectionAPICache, "courses:all")
	if err != nil || rec == nil {
		t.Fatalf("cache entry not persisted: rec=%v err=%v", rec, err)
	}
	if string(rec.Data) != `[{"id":1}]` {
		t.Errorf("persisted Data = %s", rec.Data)
	}
}

func TestReadThrough_Request_fallbackChain(t *testing.T) {
	runPersistInline(t)

	t.Run("cache wins over fallback", func(t *testing.T) {
		store := newMemStore()
		c := NewReadThrough(store, testLogger{}, 0)

		// warm the cache, then go dark
		if _, err := c.Request(context.Background(), okOp(`{"cached":true}`), nil, "k"); err != nil {
			t.Fatalf("warm-up Request() failed: %v", err)
		}
		res, err := c.Request(context.Background(), failOp(), json.RawMessage(`{"fallback":true}`), "k")
		if err != nil {
			t.Fatalf("Request() failed: %v", err)
		}
		if !res.FromCache || string(res.Data) != `{"cached":true}` {
			t.Errorf("got %+v, want cached copy", res)
		}
	})

	t.Run("fallback when no cache", func(t *testing.T) {
		c := NewReadThrough(newMemStore(), testLogger{}, 0)
		res, err := c.Request(context.Background(), failOp(), json.RawMessage(`{"fallback":true}`), "k")
		if err != nil {
			t.Fatalf("Request() failed: %v", err)
		}
		if !res.FromCache || string(res.Data) != `{"fallback":true}` {
			t.Errorf("got %+v, want fallback", res)
		}
	})

	t.Run("error when no cache and no fallback", func(t *testing.T) {
		c := NewReadThrough(newMemStore(), testLogger{}, 0)
		_, err := c.Request(context.Background(), failOp(), nil, "k")
		if !core.IsOfflineUnavailable(err) {
			t.Fatalf("Request() error = %v, want OfflineUnavailableError", err)
		}
		// the original network error stays reachable
		if !core.IsNetworkError(errors.Cause(err).(*core.OfflineUnavailableError).Err) {
			t.Error("original network error not preserved")
		}
	})
}

func TestReadThrough_Request_maxAge(t *testing.T) {
	runPersistInline(t)
	store := newMemStore()
	c := NewReadThrough(store, testLogger{}, time.Hour)

	stale := Record{ID: "k", Data: json.RawMessage(`{"old":true}`), StoredAt: time.Now().UTC().Add(-2 * time.Hour)}
	if err := store.Put(context.Background(), CollectionAPICache, stale); err != nil {
		t.Fatal(err)
	}

	// stale entry is treated as absent: fallback wins
	res, err := c.Request(context.Background(), failOp(), json.RawMessage(`{"fallback":true}`), "k")
	if err != nil {
		t.Fatalf("Request() failed: %v", err)
	}
	if string(res.Data) != `{"fallback":true}` {
		t.Errorf("Data = %s, want fallback over stale cache", res.Data)
	}

	// zero max-age serves it indefinitely
	c0 := NewReadThrough(store, testLogger{}, 0)
	res, err = c0.Request(context.Background(), failOp(), nil, "k")
	if err != nil {
		t.Fatalf("Request() failed: %v", err)
	}
	if string(res.Data) != `{"old":true}` {
		t.Errorf("Data = %s, want stale entry with expiry disabled", res.Data)
	}
}

func TestReadThrough_Request_persistFailureDoesNotAffectCaller(t *testing.T) {
	runPersistInline(t)
	store := newMemStore()
	store.failNextPut = true
	c := NewReadThrough(store, testLogger{}, 0)

	res, err := c.Request(context.Background(), okOp(`{"ok":true}`), nil, "k")
	if err != nil {
		t.Fatalf("Request() failed: %v", err)
	}
	if res.FromCache || string(res.Data) != `{"ok":true}` {
		t.Errorf("got %+v, want network result despite write-back failure", res)
	}
}
