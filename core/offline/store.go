package offline

import (
	"context"
	"encoding/json"
	"time"
)

// SchemaVersion is the single global store version shared by every process
// opening the store. Any change to the collection list bumps it.
// v1: domain + pending collections. v2: apiCache + staticCache.
const SchemaVersion = 2

// Fixed collection names. Both the gateway daemon and the client CLI open
// the same store and must agree on these.
const (
	CollectionCourses      = "courses"
	CollectionLessons      = "lessons"
	CollectionQuizzes      = "quizzes"
	CollectionUserProgress = "userProgress"

	CollectionPendingQuizSubmissions = "pendingQuizSubmissions"
	CollectionPendingProgressUpdate  = "pendingProgressUpdates"
	CollectionPendingActions         = "pendingActions"

	CollectionAPICache    = "apiCache"
	CollectionStaticCache = "staticCache"
)

// Collections lists every known collection, in schema order.
func Collections() []string {
	return []string{
		CollectionCourses,
		CollectionLessons,
		CollectionQuizzes,
		CollectionUserProgress,
		CollectionPendingQuizSubmissions,
		CollectionPendingProgressUpdate,
		CollectionPendingActions,
		CollectionAPICache,
		CollectionStaticCache,
	}
}

// PendingCollections lists the write-behind queue collections, drained in
// this order by the sync engine.
func PendingCollections() []string {
	return []string{
		CollectionPendingQuizSubmissions,
		CollectionPendingProgressUpdate,
		CollectionPendingActions,
	}
}

// Record is a stored domain object: an opaque JSON document keyed by id
// within a named collection.
type Record struct {
	ID       string          `db:"id" json:"id"`
	Data     json.RawMessage `db:"data" json:"data"`
	StoredAt time.Time       `db:"stored_at" json:"storedAt"`
}

// Store is the versioned local key-value-collection store. Implementations
// must be safe for concurrent use from multiple processes; each call is
// atomic on its own (batch Put is all-or-nothing). Failures carry a
// core.IOError classification.
type Store interface {
	// Get returns the record, or nil when absent.
	Get(ctx context.Context, collection, id string) (*Record, error)
	// GetAll returns every record in the collection, oldest stored first.
	GetAll(ctx context.Context, collection string) ([]Record, error)
	// Put upserts the given records, all-or-nothing.
	Put(ctx context.Context, collection string, recs ...Record) error
	// Delete removes a record; removing an absent id is a no-op.
	Delete(ctx context.Context, collection, id string) error
	// Clear empties the given collections, or every collection when none given.
	Clear(ctx context.Context, collections ...string) error
}

// PutValue marshals v and upserts it under (collection, id).
func PutValue(ctx context.Context, s Store, collection, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, collection, Record{ID: id, Data: data, StoredAt: time.Now().UTC()})
}
