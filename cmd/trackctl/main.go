// Command trackctl records workspaces, projects, tags and time entries from
// the command line. Storage, logging and metrics are configured through
// TRACKCORE_* environment variables, optionally read from a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"trackcore/internal/core"
)

func main() {
	root, closeFn := newRootCmd(openFromEnv)
	err := root.Execute()
	if closeErr := closeFn(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "close:", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// openFromEnv loads envFile (when present), reads the configuration and
// opens the service it describes.
func openFromEnv(ctx context.Context, envFile string) (*core.Service, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg, err := core.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := core.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	svc, err := core.Open(ctx, cfg, core.WithLogger(logger))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Debug("trackctl ready", zap.String("storage", string(cfg.Storage)))
	return svc, nil
}
