package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Storage backends for client state.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds the resolved client settings.
type Config struct {
	APIURL         string
	DataDir        string
	LogFile        string
	Env            string
	Storage        string
	RedisAddr      string
	RedisPrefix    string
	RequestTimeout time.Duration
}

const (
	defaultConfigPath     = "~/.config/tote/config.toml"
	defaultAPIURL         = "https://my-ecommerce-eta-ruby.vercel.app"
	defaultDataDir        = "~/.local/share/tote"
	defaultEnv            = "development"
	defaultRedisAddr      = "127.0.0.1:6379"
	defaultRedisPrefix    = "tote:"
	defaultRequestTimeout = 10 * time.Second
)

// Environment overrides, applied after the file.
const (
	EnvAPIURL    = "TOTE_API_URL"
	EnvEnv       = "TOTE_ENV"
	EnvStorage   = "TOTE_STORAGE"
	EnvRedisAddr = "TOTE_REDIS_ADDR"
)

// Default returns the built-in settings.
func Default() Config {
	dataDir := mustExpand(defaultDataDir)
	return Config{
		APIURL:         defaultAPIURL,
		DataDir:        dataDir,
		LogFile:        filepath.Join(dataDir, "tote.log"),
		Env:            defaultEnv,
		Storage:        StorageFile,
		RedisAddr:      defaultRedisAddr,
		RedisPrefix:    defaultRedisPrefix,
		RequestTimeout: defaultRequestTimeout,
	}
}

// Load reads the config file (defaults when missing), then a .env file in
// the working directory, then TOTE_* environment variables.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := loadFile(resolved)
	if err != nil {
		return Config{}, err
	}

	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(resolved string) (Config, error) {
	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL                string `toml:"api_url"`
		DataDir               string `toml:"data_dir"`
		LogFile               string `toml:"log_file"`
		Env                   string `toml:"env"`
		Storage               string `toml:"storage"`
		RedisAddr             string `toml:"redis_addr"`
		RedisPrefix           string `toml:"redis_prefix"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
		cfg.LogFile = filepath.Join(cfg.DataDir, "tote.log")
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.Storage); v != "" {
		cfg.Storage = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.RedisAddr); v != "" {
		cfg.RedisAddr = v
	}
	if v := strings.TrimSpace(raw.RedisPrefix); v != "" {
		cfg.RedisPrefix = v
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnv)); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorage)); v != "" {
		cfg.Storage = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.RedisAddr = v
	}
}

// Validate rejects unknown storage backends.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageRedis, StorageMemory:
		return nil
	}
	return fmt.Errorf("unknown storage %q (want file, redis or memory)", c.Storage)
}

// StatePath is the file used by the file storage backend.
func (c Config) StatePath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/state.toml")
	}
	return filepath.Join(c.DataDir, "state.toml")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
