// Package bolt stores records in an embedded bbolt file with one bucket per
// record type.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"trackcore/pkg/domain"
)

// DefaultPath is used when no path is configured.
const DefaultPath = "trackcore.bolt"

// DB wraps an open bbolt file.
type DB struct {
	bolt *bbolt.DB
}

// Open opens (creating if needed) the file at path and makes sure a bucket
// exists for every record type.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	instance, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	if err := instance.Update(func(tx *bbolt.Tx) error {
		for _, entity := range domain.EntityTypes() {
			if _, err := tx.CreateBucketIfNotExists([]byte(entity)); err != nil {
				return fmt.Errorf("bucket %s: %w", entity, err)
			}
		}
		return nil
	}); err != nil {
		_ = instance.Close()
		return nil, err
	}
	return &DB{bolt: instance}, nil
}

// Close releases the file lock.
func (d *DB) Close() error { return d.bolt.Close() }

// Count returns the number of stored records of one type.
func (d *DB) Count(entity domain.EntityType) (int, error) {
	var n int
	err := d.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(entity))
		if b == nil {
			return fmt.Errorf("no bucket for %s", entity)
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// Store reads and writes records of type R.
type Store[R domain.Record] struct {
	db     *DB
	entity domain.EntityType
}

// For returns the store of R records on db.
func For[R domain.Record](db *DB) *Store[R] {
	var zero R
	return &Store[R]{db: db, entity: zero.Entity()}
}

// Load reads the record stored under id. Context cancellation is checked
// before the read; bbolt transactions are not interruptible.
func (s *Store[R]) Load(ctx context.Context, id domain.Identity) (R, error) {
	var rec R
	if err := ctx.Err(); err != nil {
		return rec, err
	}
	var payload []byte
	err := s.db.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(s.entity))
		if b == nil {
			return fmt.Errorf("no bucket for %s", s.entity)
		}
		if v := b.Get(id.Bytes()); v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	if payload == nil {
		return rec, domain.NotFoundError{Entity: s.entity, ID: id}
	}
	if err := json.Unmarshal(payload, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", s.entity, err)
	}
	return rec, nil
}

// Save writes rec, replacing any previous version.
func (s *Store[R]) Save(ctx context.Context, rec R) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := rec.RecordID()
	if id.IsZero() {
		return fmt.Errorf("save %s without identity", s.entity)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.entity, err)
	}
	return s.db.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(s.entity))
		if b == nil {
			return fmt.Errorf("no bucket for %s", s.entity)
		}
		return b.Put(id.Bytes(), payload)
	})
}
