//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"archgen/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveArchitecture(ctx context.Context, arch model.Architecture) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeArchitecture(arch)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO architectures (id, batch_id, pool, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			batch_id = excluded.batch_id,
			pool = excluded.pool,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, arch.ID, arch.BatchID, arch.Pool, arch.SchemaVersion, arch.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetArchitecture(ctx context.Context, id string) (model.Architecture, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Architecture{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM architectures WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Architecture{}, false, nil
		}
		return model.Architecture{}, false, err
	}

	arch, err := DecodeArchitecture(payload)
	if err != nil {
		return model.Architecture{}, false, fmt.Errorf("decode architecture %s: %w", id, err)
	}
	return arch, true, nil
}

func (s *SQLiteStore) ListArchitectures(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id FROM architectures ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, batch model.Batch) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeBatch(batch)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO batches (id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, batch.ID, batch.SchemaVersion, batch.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetBatch(ctx context.Context, id string) (model.Batch, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Batch{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM batches WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Batch{}, false, nil
		}
		return model.Batch{}, false, err
	}

	batch, err := DecodeBatch(payload)
	if err != nil {
		return model.Batch{}, false, fmt.Errorf("decode batch %s: %w", id, err)
	}
	return batch, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS architectures (
			id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL DEFAULT '',
			pool TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS architectures_batch_id ON architectures (batch_id);
		CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
