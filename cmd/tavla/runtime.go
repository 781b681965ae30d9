package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hylla/tavla/internal/adapters/storage/file"
	"github.com/hylla/tavla/internal/adapters/storage/memory"
	"github.com/hylla/tavla/internal/adapters/storage/redis"
	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/platform"
)

// globalOptions holds the persistent root flags.
type globalOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool

	stdout io.Writer
	stderr io.Writer
}

// resolvedConfig is the outcome of flag, env and file resolution.
type resolvedConfig struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
}

// boardRuntime owns everything a board-backed command needs.
type boardRuntime struct {
	cfg    config.Config
	logger *runtimeLogger
	repo   app.SnapshotRepository
	store  *app.Store

	closers []func() error
}

// parseBoolEnv reads a boolean env var. ok is false when unset or malformed.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// resolve applies --config/--db and their env fallbacks on top of platform paths.
func (o *globalOptions) resolve() (resolvedConfig, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
	if err != nil {
		return resolvedConfig{}, err
	}

	configPath := strings.TrimSpace(o.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(o.dbPath)
	if dbPath == "" {
		dbPath = strings.TrimSpace(os.Getenv("TAVLA_DB_PATH"))
	}

	defaults := config.Default(paths.DBPath)
	defaults.Storage.Dir = paths.BoardsDir
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return resolvedConfig{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return resolvedConfig{paths: paths, configPath: configPath, cfg: cfg}, nil
}

// openBoardRuntime resolves config, opens the configured backend and builds a
// store whose transitions are persisted through the retrying hook.
func (o *globalOptions) openBoardRuntime(ctx context.Context, command string) (*boardRuntime, error) {
	resolved, err := o.resolve()
	if err != nil {
		return nil, err
	}
	cfg := resolved.cfg

	logger, err := newRuntimeLogger(o.stderr, o.appName, o.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	rt := &boardRuntime{cfg: cfg, logger: logger}
	if command == "tui" {
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", resolved.configPath, "data_dir", resolved.paths.DataDir)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	rt.repo = repo
	rt.closers = append(rt.closers, closeRepo)

	ordering, err := app.ParseOrdering(cfg.Board.Ordering)
	if err != nil {
		rt.Close()
		return nil, err
	}
	board, err := app.LoadBoard(ctx, repo, cfg.Storage.Key, cfg.Board.SeedColumns)
	if err != nil {
		logger.Error("board load failed", "backend", cfg.Storage.Backend, "key", cfg.Storage.Key, "err", err)
		rt.Close()
		return nil, err
	}
	rt.store = app.NewStore(board, uuid.NewString, nil, app.StoreConfig{
		Ordering:        ordering,
		SuggestionLimit: cfg.Board.SuggestionLimit,
		SeedColumns:     cfg.Board.SeedColumns,
	})
	persist := app.NewPersistHook(repo, cfg.Storage.Key, app.RetryPolicy{
		Retries: cfg.Persist.Retries,
		Backoff: cfg.Persist.RetryBackoff.Std(),
	})
	rt.store.Subscribe(loggedHook(persist, logger))
	logger.Debug("board store initialized", "columns", len(board.Columns), "tasks", len(board.Tasks), "ordering", ordering)
	return rt, nil
}

// Close releases the repository and the log sinks.
func (rt *boardRuntime) Close() {
	if rt == nil {
		return
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.logger.Warn("storage close failed", "backend", rt.cfg.Storage.Backend, "err", err)
		}
	}
	rt.closers = nil
	_ = rt.logger.Close()
}

// openRepository opens the snapshot store for the configured backend.
func openRepository(ctx context.Context, cfg config.Config, logger *runtimeLogger) (app.SnapshotRepository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		logger.Info("opening sqlite repository", "db_path", cfg.Storage.Path)
		repo, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Storage.Path, "err", err)
			return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		logger.Info("sqlite repository ready", "db_path", cfg.Storage.Path, "migrations", "ensured")
		return repo, repo.Close, nil
	case config.BackendRedis:
		logger.Info("connecting redis repository", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		repo, err := redis.Open(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			logger.Error("redis connect failed", "addr", cfg.Redis.Addr, "err", err)
			return nil, nil, fmt.Errorf("open redis repository: %w", err)
		}
		return repo, repo.Close, nil
	case config.BackendFile:
		logger.Info("opening file repository", "dir", cfg.Storage.Dir)
		repo, err := file.Open(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file repository: %w", err)
		}
		return repo, noop, nil
	case config.BackendMemory:
		logger.Warn("memory repository selected, board will not survive restart")
		return memory.New(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// loggedHook reports persistence failures before handing them back to the caller.
func loggedHook(next app.Hook, logger *runtimeLogger) app.Hook {
	return func(ctx context.Context, change app.Change, board domain.Board) error {
		err := next(ctx, change, board)
		if err != nil {
			level := logger.Error
			if errors.Is(err, context.Canceled) {
				level = logger.Warn
			}
			level("board persist failed", "operation", change.Operation, "err", err)
			return err
		}
		logger.Debug("board persisted", "operation", change.Operation, "tasks", len(board.Tasks))
		return nil
	}
}
