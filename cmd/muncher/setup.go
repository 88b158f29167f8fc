package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KirkDiggler/rpg-muncher/internal/clients/proxy"
	"github.com/KirkDiggler/rpg-muncher/internal/clients/srd"
	"github.com/KirkDiggler/rpg-muncher/internal/config"
	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/orchestrators/muncher"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/normalize"
	"github.com/KirkDiggler/rpg-muncher/internal/redis"
	compendiumrepo "github.com/KirkDiggler/rpg-muncher/internal/repositories/compendium"
	"github.com/KirkDiggler/rpg-muncher/internal/services/compendium"
)

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file. A missing file is only an error when the
// path was given explicitly.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.FilePath(".")
	}

	cfg, err := config.Load(path)
	if errors.IsNotFound(err) && configPath == "" {
		slog.Debug("No config file, using defaults", "path", path)
		cfg = config.Default()
		cfg.ApplyEnv()
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openRepository connects the configured compendium backend.
// The returned function releases it.
func openRepository(ctx context.Context, cfg *config.Config) (compendiumrepo.Repository, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := newRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to reach redis at %s", cfg.Storage.Redis.Endpoint)
		}

		repo, err := compendiumrepo.NewRedis(&compendiumrepo.RedisConfig{Client: client})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return repo, func() { _ = client.Close() }, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLite.Path), 0o755); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to create directory for %s", cfg.Storage.SQLite.Path)
		}
		repo, err := compendiumrepo.NewSQLite(ctx, &compendiumrepo.SQLiteConfig{Path: cfg.Storage.SQLite.Path})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				slog.Warn("Failed to close compendium database", "error", err)
			}
		}, nil
	}

	return nil, nil, errors.InvalidArgumentf("unknown storage backend %q", cfg.Storage.Backend)
}

func newRedisClient(cfg *config.Config) (redis.Client, error) {
	var (
		client redis.Client
		err    error
	)
	if cfg.Storage.Redis.Cluster {
		client, err = redis.NewClusterClient(strings.Split(cfg.Storage.Redis.Endpoint, ","), nil)
	} else {
		client, err = redis.NewClient(cfg.Storage.Redis.Endpoint, nil)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to create redis client")
	}
	return client, nil
}

// newOrchestrator wires the pipeline components for one CLI invocation
func newOrchestrator(cfg *config.Config, repo compendiumrepo.Repository, notifier muncher.Notifier) (muncher.Service, error) {
	proxyClient, err := proxy.New(&proxy.Config{
		BaseURL:     cfg.Proxy.URL,
		HTTPTimeout: cfg.Proxy.Timeout,
		DebugDir:    cfg.Proxy.DebugDir,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create proxy client")
	}

	var srdClient srd.Client
	if !cfg.SRD.Disabled {
		srdClient, err = srd.New(&srd.Config{
			BaseURL:  cfg.SRD.BaseURL,
			CacheTTL: cfg.SRD.CacheTTL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create SRD client")
		}
	}

	parser, err := normalize.NewParser(&normalize.ParserConfig{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create parser")
	}

	upserter, err := compendium.New(&compendium.Config{
		Repository:    repo,
		MaxConcurrent: cfg.Import.MaxConcurrent,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create upserter")
	}

	return muncher.NewOrchestrator(&muncher.Config{
		Proxy:    proxyClient,
		Parser:   parser,
		Upserter: upserter,
		SRD:      srdClient,
		Notifier: notifier,
	})
}
