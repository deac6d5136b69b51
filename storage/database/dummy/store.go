package dummydb

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/darasa/core/offline"
)

type (
	DB struct {
		records *recordTable
	}

	recordTable struct {
		sync.RWMutex
		table map[string]map[string]offline.Record // collection -> id -> record
	}
)

func Open() (*DB, error) {
	db := &DB{
		records: &recordTable{table: make(map[string]map[string]offline.Record)},
	}
	return db, nil
}

type recordStore struct {
	db *recordTable
}

var _ offline.Store = (*recordStore)(nil) // interface compliance check

func NewStore(db *DB) offline.Store {
	return &recordStore{db: db.records}
}

func (s *recordStore) Get(_ context.Context, collection, id string) (*offline.Record, error) {
	s.db.RLock()
	defer s.db.RUnlock()

	rec, ok := s.db.table[collection][id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *recordStore) GetAll(_ context.Context, collection string) ([]offline.Record, error) {
	s.db.RLock()
	defer s.db.RUnlock()

	recs := make([]offline.Record, 0, len(s.db.table[collection]))
	for _, rec := range s.db.table[collection] {
		recs = append(recs, rec)
	}
	// oldest stored first, ids tie-break; same ordering as the sqlite store
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].StoredAt.Equal(recs[j].StoredAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].StoredAt.Before(recs[j].StoredAt)
	})
	return recs, nil
}

func (s *recordStore) Put(_ context.Context, collection string, recs ...offline.Record) error {
	s.db.Lock()
	defer s.db.Unlock()

	if s.db.table[collection] == nil {
		s.db.table[collection] = make(map[string]offline.Record)
	}
	for _, rec := range recs {
		s.db.table[collection][rec.ID] = rec
	}
	return nil
}

func (s *recordStore) Delete(_ context.Context, collection, id string) error {
	s.db.Lock()
	defer s.db.Unlock()

	delete(s.db.table[collection], id)
	return nil
}

func (s *recordStore) Clear(_ context.Context, collections ...string) error {
	s.db.Lock()
	defer s.db.Unlock()

	if len(collections) == 0 {
		s.db.table = make(map[string]map[string]offline.Record)
		return nil
	}
	for _, coll := range collections {
		delete(s.db.table, coll)
	}
	return nil
}
