package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"docsplit/pkg/chunking"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "DOCSPLIT_CONFIG"

// Config holds the service settings.
type Config struct {
	AppPort           int    `yaml:"app_port"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes"`
	DefaultChunkSize  int    `yaml:"default_chunk_size"`
	DefaultOverlap    int    `yaml:"default_overlap"`
	ChunkStrategy     string `yaml:"chunk_strategy"`
	SplitterCacheSize int    `yaml:"splitter_cache_size"`
	MaxEntryBytes     int64  `yaml:"max_entry_bytes"`
	SniffContentType  bool   `yaml:"sniff_content_type"`
	LogLevel          string `yaml:"log_level"`
	Development       bool   `yaml:"development"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		AppPort:           8000,
		MaxUploadBytes:    50 << 20,
		DefaultChunkSize:  1000,
		DefaultOverlap:    100,
		ChunkStrategy:     chunking.StrategyRecursive,
		SplitterCacheSize: chunking.DefaultCacheSize,
		MaxEntryBytes:     64 << 20,
		SniffContentType:  true,
		LogLevel:          "info",
	}
}

// Load reads configuration from, lowest precedence first: built-in defaults,
// the YAML file named by DOCSPLIT_CONFIG, a .env file in the working
// directory, and the process environment.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.readYAML(path); err != nil {
			return nil, err
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := cfg.readEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) readEnv() error {
	var err error
	if c.AppPort, err = getEnvInt("APP_PORT", c.AppPort); err != nil {
		return err
	}
	if c.MaxUploadBytes, err = getEnvInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes); err != nil {
		return err
	}
	if c.DefaultChunkSize, err = getEnvInt("DEFAULT_CHUNK_SIZE", c.DefaultChunkSize); err != nil {
		return err
	}
	if c.DefaultOverlap, err = getEnvInt("DEFAULT_OVERLAP", c.DefaultOverlap); err != nil {
		return err
	}
	if c.SplitterCacheSize, err = getEnvInt("SPLITTER_CACHE_SIZE", c.SplitterCacheSize); err != nil {
		return err
	}
	if c.MaxEntryBytes, err = getEnvInt64("MAX_ENTRY_BYTES", c.MaxEntryBytes); err != nil {
		return err
	}
	if c.SniffContentType, err = getEnvBool("SNIFF_CONTENT_TYPE", c.SniffContentType); err != nil {
		return err
	}
	if c.Development, err = getEnvBool("DEVELOPMENT", c.Development); err != nil {
		return err
	}
	c.ChunkStrategy = getEnv("CHUNK_STRATEGY", c.ChunkStrategy)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.AppPort <= 0 || c.AppPort > 65535:
		return fmt.Errorf("invalid APP_PORT %d", c.AppPort)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	case c.MaxEntryBytes <= 0:
		return fmt.Errorf("MAX_ENTRY_BYTES must be positive, got %d", c.MaxEntryBytes)
	case c.SplitterCacheSize <= 0:
		return fmt.Errorf("SPLITTER_CACHE_SIZE must be positive, got %d", c.SplitterCacheSize)
	}

	chunkCfg := chunking.Config{
		ChunkSize: c.DefaultChunkSize,
		Overlap:   c.DefaultOverlap,
		Strategy:  c.ChunkStrategy,
	}
	if err := chunkCfg.Validate(); err != nil {
		return fmt.Errorf("invalid default chunking: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("environment variable %s: %w", key, err)
	}
	return b, nil
}
