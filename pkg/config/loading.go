package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"zstream/pkg/helper/errors"
)

// LoadFromFile loads configuration starting from defaults, layering a
// YAML file (if configPath is non-empty) and then environment
// variables on top, and validates the result.
func LoadFromFile(configPath string) (*Config, error) {
	cfg := NewDefaultConfig()

	if configPath != "" {
		expanded := ExpandHomeDir(configPath)
		if _, err := os.Stat(expanded); os.IsNotExist(err) {
			return nil, errors.NotFoundf("configuration file not found: %s", expanded)
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read configuration file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse configuration file")
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv overlays ZSTREAM_* environment variables onto cfg.
func loadFromEnv(cfg *Config) error {
	strVars := map[string]*string{
		"ZSTREAM_LOG_LEVEL":   &cfg.LogLevel,
		"ZSTREAM_LEVEL":       &cfg.Codec.Level,
		"ZSTREAM_METRICS_ADDR": &cfg.Metrics.Addr,
	}
	for env, field := range strVars {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}

	if v, ok := os.LookupEnv("ZSTREAM_ASYNC_IO"); ok {
		cfg.IO.AsyncIO = strings.ToLower(v) == "true" || v == "1"
	}
	if v, ok := os.LookupEnv("ZSTREAM_SPARSE"); ok {
		cfg.IO.Sparse = strings.ToLower(v) == "true" || v == "1"
	}
	if v, ok := os.LookupEnv("ZSTREAM_BUFFER_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IO.BufferSize = n
		}
	}
	if v, ok := os.LookupEnv("ZSTREAM_JOBS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IO.Jobs = n
		}
	}
	if v, ok := os.LookupEnv("ZSTREAM_METRICS_ENABLED"); ok {
		cfg.Metrics.Enabled = strings.ToLower(v) == "true" || v == "1"
	}

	return nil
}

// SaveToFile writes cfg to filePath as YAML, creating parent
// directories as needed.
func (c *Config) SaveToFile(filePath string) error {
	expanded := ExpandHomeDir(filePath)
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}
	file, err := os.Create(expanded)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "failed to encode configuration")
	}
	return nil
}

// Validate cross-checks configuration fields for consistency.
func (c *Config) Validate() error {
	logLevel := strings.ToLower(c.LogLevel)
	switch logLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return errors.InvalidInputf("invalid log level: %s (must be one of: debug, info, warn, error, fatal)", c.LogLevel)
	}

	if c.IO.BufferSize <= 0 {
		return errors.InvalidInputf("io.buffer_size must be positive")
	}
	if c.IO.Jobs <= 0 {
		return errors.InvalidInputf("io.jobs must be positive")
	}
	if c.IO.ReadWorkers <= 0 {
		return errors.InvalidInputf("io.read_workers must be positive")
	}

	switch c.Codec.Level {
	case "fastest", "default", "better", "best":
	default:
		return errors.InvalidInputf("invalid codec level: %s (must be one of: fastest, default, better, best)", c.Codec.Level)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.InvalidInputf("metrics.addr must be set when metrics are enabled")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.InvalidInputf("server.port must be between 0 and 65535")
	}

	return nil
}
