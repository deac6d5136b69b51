package database

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/offline"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens (creating if needed) the local store database. Safe to call
// from the gateway and the CLI concurrently: WAL mode plus a busy timeout
// let the engine serialize cross-process access.
func Open(conf *core.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		conf.Store.Path, conf.Store.BusyTimeout.Milliseconds(),
	)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening store")
	}
	// the driver serializes writes anyway; a single conn avoids
	// SQLITE_BUSY between our own goroutines
	db.SetMaxOpenConns(1)

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "store ping timeout")
	}
	return nil
}

// Migrate brings the store schema up to date. goose serializes concurrent
// attempts on its version table, so both processes may race it safely.
func Migrate(db *sqlx.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Wrap(err, "setting dialect")
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return errors.Wrap(err, "migrating store")
	}
	return EnsureSchemaVersion(db)
}

const schemaKey = "collections"

// EnsureSchemaVersion records offline.SchemaVersion in the store and
// refuses to proceed when the store was last written by a newer version:
// the page and worker counterparts must agree on name + version, and a
// downgrade would drop collections the newer context relies on.
func EnsureSchemaVersion(db *sqlx.DB) error {
	var stored int
	err := db.Get(&stored, `SELECT version FROM schema_info WHERE key = ?`, schemaKey)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec(`INSERT INTO schema_info (key, version) VALUES (?, ?)`, schemaKey, offline.SchemaVersion)
		return errors.Wrap(err, "recording schema version")
	case err != nil:
		return core.NewIOError("schemaVersion", err)
	case stored > offline.SchemaVersion:
		return &core.SchemaDowngradeError{Stored: stored, Requested: offline.SchemaVersion}
	case stored < offline.SchemaVersion:
		_, err = db.Exec(`UPDATE schema_info SET version = ? WHERE key = ?`, offline.SchemaVersion, schemaKey)
		return errors.Wrap(err, "bumping schema version")
	}
	return nil
}
