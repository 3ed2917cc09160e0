// Package sqlstore persists records as JSON documents in a single SQL table
// shared by all record types. Queries are built per SQL flavour so the same
// code serves SQLite and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"trackcore/pkg/domain"
)

// Table is the name of the record table.
const Table = "records"

// DB is a database handle together with the SQL flavour used to talk to it.
type DB struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
	nowFn  func() time.Time
}

// New wraps db. Call EnsureSchema before first use.
func New(db *sqlx.DB, flavor sqlbuilder.Flavor) *DB {
	return &DB{db: db, flavor: flavor, nowFn: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the record table if it does not exist.
func (d *DB) EnsureSchema(ctx context.Context) error {
	payloadType, stampType := "TEXT", "TIMESTAMP"
	if d.flavor == sqlbuilder.PostgreSQL {
		payloadType, stampType = "JSONB", "TIMESTAMPTZ"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		entity TEXT NOT NULL,
		id TEXT NOT NULL,
		payload %s NOT NULL,
		updated_at %s NOT NULL,
		PRIMARY KEY (entity, id)
	)`, Table, payloadType, stampType)
	if _, err := d.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", Table, err)
	}
	return nil
}

// Flavor returns the SQL flavour in use.
func (d *DB) Flavor() sqlbuilder.Flavor { return d.flavor }

// DB exposes the underlying handle.
func (d *DB) DB() *sqlx.DB { return d.db }

// Close releases the database handle.
func (d *DB) Close() error { return d.db.Close() }

// Count returns the number of stored records of one type.
func (d *DB) Count(ctx context.Context, entity domain.EntityType) (int, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(Table)
	sb.Where(sb.Equal("entity", string(entity)))
	query, args := sb.Build()
	var n int
	if err := d.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", entity, err)
	}
	return n, nil
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

// Load reads the record stored under id.
func (s *Store[R]) Load(ctx context.Context, id domain.Identity) (R, error) {
	var rec R
	sb := s.db.flavor.NewSelectBuilder()
	sb.Select("payload")
	sb.From(Table)
	sb.Where(sb.Equal("entity", string(s.entity)), sb.Equal("id", id.String()))
	query, args := sb.Build()

	var payload []byte
	if err := s.db.db.GetContext(ctx, &payload, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, domain.NotFoundError{Entity: s.entity, ID: id}
		}
		return rec, fmt.Errorf("select %s: %w", s.entity, err)
	}
	if err := json.Unmarshal(payload, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", s.entity, err)
	}
	return rec, nil
}

// Save upserts rec.
func (s *Store[R]) Save(ctx context.Context, rec R) error {
	id := rec.RecordID()
	if id.IsZero() {
		return fmt.Errorf("save %s without identity", s.entity)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.entity, err)
	}
	ib := s.db.flavor.NewInsertBuilder()
	ib.InsertInto(Table)
	ib.Cols("entity", "id", "payload", "updated_at")
	ib.Values(string(s.entity), id.String(), string(payload), s.db.nowFn())
	query, args := ib.Build()
	query += " ON CONFLICT (entity, id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at"

	if _, err := s.db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", s.entity, err)
	}
	return nil
}
