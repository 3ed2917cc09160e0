package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"trackcore/internal/blob"
	"trackcore/internal/infra/persistence/redis"
	"trackcore/pkg/model"
)

// Config is the process configuration, read from TRACKCORE_* environment
// variables.
//
//	TRACKCORE_STORAGE_DRIVER   memory|sqlite|postgres|redis|bolt|blob (default sqlite)
//	TRACKCORE_SQLITE_PATH      sqlite file (default ./trackcore.db)
//	TRACKCORE_BOLT_PATH        bbolt file (default ./trackcore.bolt)
//	TRACKCORE_POSTGRES_DSN     postgres DSN
//	TRACKCORE_REDIS_ADDR       host:port (default localhost:6379)
//	TRACKCORE_REDIS_PASSWORD
//	TRACKCORE_REDIS_DB         database number (default 0)
//	TRACKCORE_BLOB_DRIVER      fs|s3|memory (default fs)
//	TRACKCORE_BLOB_FS_ROOT     directory for the fs driver (default ./blobdata)
//	TRACKCORE_BLOB_S3_BUCKET, _REGION, _ENDPOINT, _PATH_STYLE, _ACCESS_KEY_ID, _SECRET_ACCESS_KEY
//	TRACKCORE_LOG_LEVEL        debug|info|warn|error (default info)
//	TRACKCORE_LOAD_POLICY      load|fail|default (default load)
//	TRACKCORE_METRICS          none|expvar|prometheus (default none)
type Config struct {
	Storage     StorageDriver
	SQLitePath  string
	BoltPath    string
	PostgresDSN string
	Redis       redis.Config
	Blob        blob.Config
	LogLevel    string
	LoadPolicy  model.LoadPolicy
	Metrics     MetricsBackend
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(os.Getenv)
}

// LoadConfigFrom reads the configuration through getenv.
func LoadConfigFrom(getenv func(string) string) (Config, error) {
	cfg := Config{
		Storage:     StorageDriver(strings.ToLower(getenv("TRACKCORE_STORAGE_DRIVER"))),
		SQLitePath:  getenv("TRACKCORE_SQLITE_PATH"),
		BoltPath:    getenv("TRACKCORE_BOLT_PATH"),
		PostgresDSN: getenv("TRACKCORE_POSTGRES_DSN"),
		Redis: redis.Config{
			Addr:     getenv("TRACKCORE_REDIS_ADDR"),
			Password: getenv("TRACKCORE_REDIS_PASSWORD"),
		},
		Blob: blob.Config{
			Driver: blob.Driver(strings.ToLower(getenv("TRACKCORE_BLOB_DRIVER"))),
			FSRoot: getenv("TRACKCORE_BLOB_FS_ROOT"),
			S3: blob.S3Config{
				Bucket:          getenv("TRACKCORE_BLOB_S3_BUCKET"),
				Region:          getenv("TRACKCORE_BLOB_S3_REGION"),
				Endpoint:        getenv("TRACKCORE_BLOB_S3_ENDPOINT"),
				AccessKeyID:     getenv("TRACKCORE_BLOB_S3_ACCESS_KEY_ID"),
				SecretAccessKey: getenv("TRACKCORE_BLOB_S3_SECRET_ACCESS_KEY"),
				PathStyle:       strings.EqualFold(getenv("TRACKCORE_BLOB_S3_PATH_STYLE"), "true"),
			},
		},
		LogLevel: getenv("TRACKCORE_LOG_LEVEL"),
		Metrics:  MetricsBackend(strings.ToLower(getenv("TRACKCORE_METRICS"))),
	}
	if cfg.Storage == "" {
		cfg.Storage = StorageSQLite
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Metrics == "" {
		cfg.Metrics = MetricsNone
	}
	if raw := getenv("TRACKCORE_REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("TRACKCORE_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	policy, err := model.ParseLoadPolicy(getenv("TRACKCORE_LOAD_POLICY"))
	if err != nil {
		return Config{}, fmt.Errorf("TRACKCORE_LOAD_POLICY: %w", err)
	}
	cfg.LoadPolicy = policy
	if cfg.Blob.Driver == blob.DriverS3 && cfg.Blob.S3.Bucket == "" {
		return Config{}, fmt.Errorf("TRACKCORE_BLOB_S3_BUCKET required for s3 driver")
	}
	return cfg, nil
}
