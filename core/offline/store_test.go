package offline

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// memStore is an in-memory Store for this package's tests. The sqlite and
// dummy implementations carry their own suites.
type memStore struct {
	mu    sync.Mutex
	colls map[string][]Record

	failNextPut bool
	failGetAll  bool
}

func newMemStore() *memStore {
	return &memStore{colls: make(map[string][]Record)}
}

func (s *memStore) Get(_ context.Context, collection, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.colls[collection] {
		if rec.ID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetAll(_ context.Context, collection string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGetAll {
		return nil, core.NewIOError("getAll", errors.New("boom"))
	}
	recs := make([]Record, len(s.colls[collection]))
	copy(recs, s.colls[collection])
	return recs, nil
}

func (s *memStore) Put(_ context.Context, collection string, recs ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNextPut {
		s.failNextPut = false
		return core.NewIOError("put", errors.New("boom"))
	}
	for _, rec := range recs {
		s.upsert(collection, rec)
	}
	return nil
}

func (s *memStore) upsert(collection string, rec Record) {
	for i, existing := range s.colls[collection] {
		if existing.ID == rec.ID {
			s.colls[collection][i] = rec
			return
		}
	}
	s.colls[collection] = append(s.colls[collection], rec)
}

func (s *memStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.colls[collection] {
		if rec.ID == id {
			s.colls[collection] = append(s.colls[collection][:i], s.colls[collection][i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) Clear(_ context.Context, collections ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(collections) == 0 {
		s.colls = make(map[string][]Record)
		return nil
	}
	for _, coll := range collections {
		delete(s.colls, coll)
	}
	return nil
}

func (s *memStore) count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.colls[collection])
}

var _ Store = (*memStore)(nil)

// testLogger discards everything; failures assert on behavior, not logs.
type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

var _ core.Logger = testLogger{}
