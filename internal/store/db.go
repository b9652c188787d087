// Package store implements the durable, deduplicated record tables
// behind the feeds, plus the TTL-gated profile value cache. SQLite is
// the single source of truth: the pagers consult it to compute the
// next window and the HTTP layer reads it to render.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"wiltd/internal/providers"
	"wiltd/internal/structures"
)

// PersistenceError wraps storage-layer failures so that callers can
// distinguish them from remote failures.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

const schema = `
CREATE TABLE IF NOT EXISTS artist_weeks (
	week         TEXT PRIMARY KEY,
	artist       TEXT NOT NULL,
	plays        INTEGER NOT NULL,
	date         INTEGER NOT NULL,
	image_url    TEXT NOT NULL DEFAULT '',
	external_url TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_artist_weeks_date ON artist_weeks(date DESC);

CREATE TABLE IF NOT EXISTS track_plays (
	track_id     TEXT NOT NULL,
	date         INTEGER NOT NULL,
	song         TEXT NOT NULL,
	artist       TEXT NOT NULL,
	image_url    TEXT NOT NULL DEFAULT '',
	external_url TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (track_id, date)
);
CREATE INDEX IF NOT EXISTS idx_track_plays_date ON track_plays(date DESC);

CREATE TABLE IF NOT EXISTS listen_later (
	name         TEXT PRIMARY KEY,
	external_url TEXT NOT NULL DEFAULT '',
	image_url    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS profile_values (
	kind         TEXT NOT NULL,
	time_range   TEXT NOT NULL,
	idx          INTEGER NOT NULL,
	payload      TEXT NOT NULL,
	last_updated INTEGER NOT NULL,
	PRIMARY KEY (kind, time_range, idx)
);
`

type DB struct {
	conn   *sql.DB
	logger providers.Logger
}

func NewDB(conf *structures.Config, logger providers.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", conf.Store.Path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open store at %s: %w", conf.Store.Path, err)
	}
	// One writer connection: all mutation is funneled through it so
	// concurrent readers always see committed snapshots.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	logger.Infof(providers.TypeApp, "Store opened at %s", conf.Store.Path)
	return &DB{conn: conn, logger: logger}, nil
}

// Checkpoint folds the WAL back into the main database file.
func (db *DB) Checkpoint() error {
	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return &PersistenceError{Op: "checkpoint", Err: err}
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}
