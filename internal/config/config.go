package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Backend names a snapshot storage implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Redis   RedisConfig   `toml:"redis"`
	Board   BoardConfig   `toml:"board"`
	Persist PersistConfig `toml:"persist"`
	Confirm ConfirmConfig `toml:"confirm"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	Backend Backend `toml:"backend"`
	Key     string  `toml:"key"`
	Path    string  `toml:"path"`
	Dir     string  `toml:"dir"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type BoardConfig struct {
	Ordering        string   `toml:"ordering"` // sequence | created
	SuggestionLimit int      `toml:"suggestion_limit"`
	SeedColumns     []string `toml:"seed_columns"`
}

type PersistConfig struct {
	Retries      int      `toml:"retries"`
	RetryBackoff Duration `toml:"retry_backoff"`
}

// ConfirmConfig toggles confirmation prompts for destructive TUI actions.
type ConfirmConfig struct {
	DeleteTask   bool `toml:"delete_task"`
	DeleteColumn bool `toml:"delete_column"`
	BulkDelete   bool `toml:"bulk_delete"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Duration is a time.Duration decoded from strings such as "50ms".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

var logLevels = []string{"debug", "info", "warn", "error", "fatal"}

func Default(dbPath string) Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Key:     "board-storage",
			Path:    dbPath,
		},
		Redis: RedisConfig{
			Addr:   "127.0.0.1:6379",
			Prefix: "tavla:",
		},
		Board: BoardConfig{
			Ordering:        "sequence",
			SuggestionLimit: 5,
			SeedColumns:     []string{"To Do", "In Progress", "Done"},
		},
		Persist: PersistConfig{
			Retries:      2,
			RetryBackoff: Duration(50 * time.Millisecond),
		},
		Confirm: ConfirmConfig{
			DeleteTask:   true,
			DeleteColumn: true,
			BulkDelete:   true,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".tavla/log",
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// Unset seed columns fall back to the defaults below.
	cfg.Board.SeedColumns = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if cfg.Board.SeedColumns == nil {
		cfg.Board.SeedColumns = slices.Clone(defaults.Board.SeedColumns)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite backend"))
		}
	case BackendFile:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			errs = append(errs, errors.New("storage.dir is required for the file backend"))
		}
	case BackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis backend"))
		}
		if c.Redis.DB < 0 {
			errs = append(errs, errors.New("redis.db must be >= 0"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, errors.New("storage.key is required"))
	}

	switch strings.TrimSpace(strings.ToLower(c.Board.Ordering)) {
	case "", "sequence", "created":
	default:
		errs = append(errs, fmt.Errorf("invalid board.ordering: %q", c.Board.Ordering))
	}
	if c.Board.SuggestionLimit < 1 {
		errs = append(errs, errors.New("board.suggestion_limit must be >= 1"))
	}
	if len(c.Board.SeedColumns) == 0 {
		errs = append(errs, errors.New("board.seed_columns must include at least one column"))
	}
	for idx, title := range c.Board.SeedColumns {
		if strings.TrimSpace(title) == "" {
			errs = append(errs, fmt.Errorf("board.seed_columns[%d] is blank", idx))
		}
	}

	if c.Persist.Retries < 0 {
		errs = append(errs, errors.New("persist.retries must be >= 0"))
	}
	if c.Persist.RetryBackoff < 0 {
		errs = append(errs, errors.New("persist.retry_backoff must be >= 0"))
	}

	for _, ep := range []struct{ name, value string }{
		{"server.api_endpoint", c.Server.APIEndpoint},
		{"server.mcp_endpoint", c.Server.MCPEndpoint},
	} {
		if ep.value != "" && !strings.HasPrefix(ep.value, "/") {
			errs = append(errs, fmt.Errorf("%s must start with '/': %q", ep.name, ep.value))
		}
	}

	if level := strings.TrimSpace(strings.ToLower(c.Logging.Level)); level != "" && !slices.Contains(logLevels, level) {
		errs = append(errs, fmt.Errorf("invalid logging.level: %q", c.Logging.Level))
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		errs = append(errs, errors.New("logging.dev_file.dir is required when enabled"))
	}

	return errors.Join(errs...)
}

// TOML renders c as TOML.
func (c Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
