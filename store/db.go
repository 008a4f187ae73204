package store

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// Store wraps a *sql.DB with the asset/job/preset CRUD the job API and
// worker runtime need. It holds no other mutable state; the DB connection
// pool is the only shared singleton, per the spec's concurrency model.
type Store struct {
	db *sql.DB
}

func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an already-open *sql.DB, primarily so tests can inject a
// go-sqlmock connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

const Schema = `
CREATE TABLE IF NOT EXISTS media_assets (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	uri TEXT NOT NULL,
	mime_type TEXT,
	duration_seconds DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	job_type TEXT NOT NULL,
	task_id TEXT,
	status TEXT NOT NULL,
	progress DOUBLE PRECISION NOT NULL DEFAULT 0,
	error TEXT,
	payload JSON NOT NULL DEFAULT '{}',
	input_asset_id TEXT,
	output_asset_id TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS subtitle_style_presets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	style JSON NOT NULL DEFAULT '{}'
);
`
