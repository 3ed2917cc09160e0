package core

import (
	"context"
	"fmt"

	"trackcore/internal/blob"
	"trackcore/internal/infra/persistence/blobstore"
	"trackcore/internal/infra/persistence/bolt"
	"trackcore/internal/infra/persistence/memory"
	"trackcore/internal/infra/persistence/postgres"
	"trackcore/internal/infra/persistence/redis"
	"trackcore/internal/infra/persistence/sqlite"
	"trackcore/internal/infra/persistence/sqlstore"
	"trackcore/pkg/domain"
	"trackcore/pkg/entities"
)

// StorageDriver identifies a record store backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageRedis    StorageDriver = "redis"    // Redis server
	StorageBolt     StorageDriver = "bolt"     // embedded bbolt file
	StorageBlob     StorageDriver = "blob"     // one JSON object per record in a blob store
)

// OpenStores opens the backend selected by cfg.Storage and returns one store
// per record type, plus a func that releases the backend.
func OpenStores(ctx context.Context, cfg Config) (entities.Stores, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Storage {
	case StorageMemory:
		return MemoryStores(), noClose, nil
	case StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return entities.Stores{}, nil, err
		}
		return sqlStores(db), db.Close, nil
	case StoragePostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return entities.Stores{}, nil, err
		}
		return sqlStores(db), db.Close, nil
	case StorageRedis:
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return entities.Stores{}, nil, err
		}
		return entities.Stores{
			Workspaces:    redis.For[domain.Workspace](rdb),
			Clients:       redis.For[domain.Client](rdb),
			Projects:      redis.For[domain.Project](rdb),
			Tags:          redis.For[domain.Tag](rdb),
			TimeEntries:   redis.For[domain.TimeEntry](rdb),
			TimeEntryTags: redis.For[domain.TimeEntryTag](rdb),
		}, rdb.Close, nil
	case StorageBolt:
		db, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return entities.Stores{}, nil, err
		}
		return entities.Stores{
			Workspaces:    bolt.For[domain.Workspace](db),
			Clients:       bolt.For[domain.Client](db),
			Projects:      bolt.For[domain.Project](db),
			Tags:          bolt.For[domain.Tag](db),
			TimeEntries:   bolt.For[domain.TimeEntry](db),
			TimeEntryTags: bolt.For[domain.TimeEntryTag](db),
		}, db.Close, nil
	case StorageBlob:
		blobs, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return entities.Stores{}, nil, err
		}
		return entities.Stores{
			Workspaces:    blobstore.For[domain.Workspace](blobs),
			Clients:       blobstore.For[domain.Client](blobs),
			Projects:      blobstore.For[domain.Project](blobs),
			Tags:          blobstore.For[domain.Tag](blobs),
			TimeEntries:   blobstore.For[domain.TimeEntry](blobs),
			TimeEntryTags: blobstore.For[domain.TimeEntryTag](blobs),
		}, noClose, nil
	default:
		return entities.Stores{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}
}

// MemoryStores returns a fresh set of in-memory stores.
func MemoryStores() entities.Stores {
	return entities.Stores{
		Workspaces:    memory.NewStore[domain.Workspace](),
		Clients:       memory.NewStore[domain.Client](),
		Projects:      memory.NewStore[domain.Project](),
		Tags:          memory.NewStore[domain.Tag](),
		TimeEntries:   memory.NewStore[domain.TimeEntry](),
		TimeEntryTags: memory.NewStore[domain.TimeEntryTag](),
	}
}

func sqlStores(db *sqlstore.DB) entities.Stores {
	return entities.Stores{
		Workspaces:    sqlstore.For[domain.Workspace](db),
		Clients:       sqlstore.For[domain.Client](db),
		Projects:      sqlstore.For[domain.Project](db),
		Tags:          sqlstore.For[domain.Tag](db),
		TimeEntries:   sqlstore.For[domain.TimeEntry](db),
		TimeEntryTags: sqlstore.For[domain.TimeEntryTag](db),
	}
}
