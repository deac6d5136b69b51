package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/offline"
)

type store struct {
	db *sqlx.DB
}

var _ offline.Store = (*store)(nil) // interface compliance check

func NewStore(db *sqlx.DB) offline.Store {
	return &store{db: db}
}

func (s *store) Get(ctx context.Context, collection, id string) (*offline.Record, error) {
	var rec offline.Record
	err := s.db.GetContext(ctx, &rec,
		`SELECT id, data, stored_at FROM records WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, core.NewIOError("get", err)
	}
	return &rec, nil
}

func (s *store) GetAll(ctx context.Context, collection string) ([]offline.Record, error) {
	var recs []offline.Record
	err := s.db.SelectContext(ctx, &recs,
		`SELECT id, data, stored_at FROM records WHERE collection = ? ORDER BY stored_at, id`,
		collection,
	)
	if err != nil {
		return nil, core.NewIOError("getAll", err)
	}
	return recs, nil
}

// Put upserts all records in one transaction: all-or-nothing per call.
func (s *store) Put(ctx context.Context, collection string, recs ...offline.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewIOError("put", err)
	}
	for _, rec := range recs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (collection, id, data, stored_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, stored_at = excluded.stored_at`,
			collection, rec.ID, []byte(rec.Data), rec.StoredAt.UTC(),
		)
		if err != nil {
			_ = tx.Rollback()
			return core.NewIOError("put", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return core.NewIOError("put", err)
	}
	return nil
}

func (s *store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return core.NewIOError("delete", err)
	}
	return nil
}

func (s *store) Clear(ctx context.Context, collections ...string) error {
	if len(collections) == 0 {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return core.NewIOError("clear", err)
		}
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM records WHERE collection IN (?)`, collections)
	if err != nil {
		return core.NewIOError("clear", err)
	}
	if _, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return core.NewIOError("clear", err)
	}
	return nil
}
