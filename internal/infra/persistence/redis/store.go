// Package redis stores records as JSON strings in Redis, one key per record.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"trackcore/pkg/domain"
)

// KeyPrefix namespaces every key written by the store.
const KeyPrefix = "trackcore"

// Client is the subset of the go-redis API the store needs. *goredis.Client
// and *goredis.ClusterClient both satisfy it.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and verifies it with PING.
func Connect(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Store reads and writes records of type R.
type Store[R domain.Record] struct {
	client Client
	entity domain.EntityType
}

// For returns the store of R records on client.
func For[R domain.Record](client Client) *Store[R] {
	var zero R
	return &Store[R]{client: client, entity: zero.Entity()}
}

// Key returns the Redis key holding the record with id.
func Key(entity domain.EntityType, id domain.Identity) string {
	return KeyPrefix + ":" + string(entity) + ":" + id.String()
}

// Load reads the record stored under id.
func (s *Store[R]) Load(ctx context.Context, id domain.Identity) (R, error) {
	var rec R
	raw, err := s.client.Get(ctx, Key(s.entity, id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return rec, domain.NotFoundError{Entity: s.entity, ID: id}
		}
		return rec, fmt.Errorf("get %s: %w", s.entity, err)
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", s.entity, err)
	}
	return rec, nil
}

// Save writes rec without expiry, replacing any previous value.
func (s *Store[R]) Save(ctx context.Context, rec R) error {
	id := rec.RecordID()
	if id.IsZero() {
		return fmt.Errorf("save %s without identity", s.entity)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.entity, err)
	}
	if err := s.client.Set(ctx, Key(s.entity, id), payload, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.entity, err)
	}
	return nil
}
