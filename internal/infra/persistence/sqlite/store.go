// Package sqlite provides a SQLite-backed record store. Reads are served from
// memory; each mutated collection is written back as a single JSON bucket.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"homeerp/internal/infra/persistence/memory"
	"homeerp/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.RecordStore = (*Store)(nil)

const defaultPath = "homeerp.db"

// Store persists each kind to a row of the state table.
type Store struct {
	*memory.Durable
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path and hydrates the
// in-memory collections from it.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, domain.Unavailable("create dirs", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domain.Unavailable("open sqlite", err)
	}
	// reads never hit the database, so one connection is enough
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, domain.Unavailable("create state table", err)
	}
	s := &Store{db: db, path: path}
	mem := memory.NewStore()
	if err := s.load(ctx, mem); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.Durable = memory.NewDurable(mem, s.persist)
	return s, nil
}

func (s *Store) load(ctx context.Context, mem *memory.Store) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Unavailable("select state", err)
	}
	defer func() { _ = rows.Close() }()
	snapshot := domain.Snapshot{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		kind, err := domain.ParseKind(bucket)
		if err != nil {
			continue
		}
		records, err := domain.DecodeRecords(kind, payload)
		if err != nil {
			return err
		}
		snapshot[kind] = records
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	mem.ImportState(snapshot)
	return nil
}

func (s *Store) persist(ctx context.Context, kind domain.Kind, records []domain.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, string(kind), data); err != nil {
		return fmt.Errorf("upsert %s: %w", kind, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
