// Package config holds zstream's runtime configuration: the pool and
// codec knobs that control compression/decompression behavior, bound
// to cobra flags, loadable from a YAML file, and overridable by
// environment variables, following the same layered precedence this
// codebase's configuration package has always used (defaults < file <
// env < flags).
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Config is zstream's top-level configuration.
type Config struct {
	// LogLevel selects the structured logger's verbosity.
	LogLevel string `yaml:"log_level"`

	IO       IOConfig       `yaml:"io"`
	Codec    CodecConfig    `yaml:"codec"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Server   ServerConfig   `yaml:"server"`
	Progress ProgressConfig `yaml:"progress"`
}

// IOConfig controls the asynchronous file I/O pools.
type IOConfig struct {
	// BufferSize is the size, in bytes, of each job buffer.
	BufferSize int `yaml:"buffer_size"`

	// Jobs is the number of reusable buffers each pool allocates,
	// clamped to iopool.MaxJobs.
	Jobs int `yaml:"jobs"`

	// AsyncIO enables the background dispatcher; when false, reads and
	// writes run synchronously on the caller's goroutine.
	AsyncIO bool `yaml:"async_io"`

	// ReadWorkers is the number of concurrent background readers; read
	// completion order doesn't matter, since ReadPool re-serializes
	// delivery by offset.
	ReadWorkers int `yaml:"read_workers"`

	// Sparse enables sparse-file writing: runs of zero bytes in the
	// decompressed output are seeked over instead of written.
	Sparse bool `yaml:"sparse"`

	// TestMode discards output for throughput benchmarking: the write
	// pool accepts jobs but never writes them. The source is still read
	// and the destination file is still created.
	TestMode bool `yaml:"test_mode"`
}

// CodecConfig controls the compression codec.
type CodecConfig struct {
	// Level is one of "fastest", "default", "better", "best".
	Level string `yaml:"level"`

	// WindowSizeMB bounds the codec's window size in megabytes; 0 uses
	// the codec's own default.
	WindowSizeMB int `yaml:"window_size_mb"`

	// Verify enables computing and checking a content fingerprint
	// across the round trip.
	Verify bool `yaml:"verify"`
}

// MetricsConfig controls the optional Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// ServerConfig controls the optional long-running watch-directory
// server mode.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProgressConfig controls progress-line rendering.
type ProgressConfig struct {
	Enabled bool          `yaml:"enabled"`
	Tick    time.Duration `yaml:"tick"`
}

// NewDefaultConfig returns a Config populated with zstream's defaults.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		IO: IOConfig{
			BufferSize:  1 << 20, // 1 MiB
			Jobs:        10,
			AsyncIO:     true,
			ReadWorkers: 2,
			Sparse:      true,
			TestMode:    false,
		},
		Codec: CodecConfig{
			Level:        "default",
			WindowSizeMB: 0,
			Verify:       false,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Addr:      ":2112",
			Path:      "/metrics",
			Namespace: "zstream",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8089,
			ShutdownTimeout: 15 * time.Second,
		},
		Progress: ProgressConfig{
			Enabled: true,
			Tick:    100 * time.Millisecond,
		},
	}
}

// AddFlagsToCommand binds configuration fields to a cobra command's
// persistent flags.
func (c *Config) AddFlagsToCommand(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error, fatal)")

	cmd.PersistentFlags().IntVar(&c.IO.BufferSize, "buffer-size", c.IO.BufferSize, "Size in bytes of each I/O job buffer")
	cmd.PersistentFlags().IntVar(&c.IO.Jobs, "jobs", c.IO.Jobs, "Number of reusable I/O job buffers per pool")
	cmd.PersistentFlags().BoolVar(&c.IO.AsyncIO, "async-io", c.IO.AsyncIO, "Enable background asynchronous I/O (disable for single-threaded degraded mode)")
	cmd.PersistentFlags().IntVar(&c.IO.ReadWorkers, "read-workers", c.IO.ReadWorkers, "Number of concurrent background read workers")
	cmd.PersistentFlags().BoolVar(&c.IO.Sparse, "sparse", c.IO.Sparse, "Seek over runs of zero bytes in the output instead of writing them")
	cmd.PersistentFlags().BoolVar(&c.IO.TestMode, "test-mode", c.IO.TestMode, "Exercise the I/O pool pipeline without writing any output data")

	cmd.PersistentFlags().StringVar(&c.Codec.Level, "level", c.Codec.Level, "Compression level (fastest, default, better, best)")
	cmd.PersistentFlags().IntVar(&c.Codec.WindowSizeMB, "window-size-mb", c.Codec.WindowSizeMB, "Compression window size in megabytes (0 = codec default)")
	cmd.PersistentFlags().BoolVar(&c.Codec.Verify, "verify", c.Codec.Verify, "Compute and check a content fingerprint across the round trip")

	cmd.PersistentFlags().BoolVar(&c.Metrics.Enabled, "metrics", c.Metrics.Enabled, "Expose a Prometheus metrics endpoint")
	cmd.PersistentFlags().StringVar(&c.Metrics.Addr, "metrics-addr", c.Metrics.Addr, "Metrics server listen address")
	cmd.PersistentFlags().StringVar(&c.Metrics.Path, "metrics-path", c.Metrics.Path, "Metrics endpoint path")

	cmd.PersistentFlags().BoolVar(&c.Progress.Enabled, "progress", c.Progress.Enabled, "Print a progress line while processing")
}

// AddServerFlags binds the server subcommand's flags.
func (c *Config) AddServerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.Server.Host, "host", c.Server.Host, "Watch-directory server bind host")
	cmd.Flags().IntVar(&c.Server.Port, "port", c.Server.Port, "Watch-directory server bind port")
	cmd.Flags().DurationVar(&c.Server.ShutdownTimeout, "shutdown-timeout", c.Server.ShutdownTimeout, "Graceful shutdown timeout")
}

// ExpandHomeDir expands a leading ~ or ${HOME} in path to the current
// user's home directory.
func ExpandHomeDir(path string) string {
	if path == "" {
		return path
	}
	if strings.Contains(path, "${HOME}") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "${HOME}", home)
		}
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetOptimalWorkerCount picks a read-worker count based on available
// CPUs: always at least 2, leaving a core free on larger machines.
func GetOptimalWorkerCount() int {
	n := runtime.NumCPU()
	switch {
	case n <= 2:
		return 2
	case n <= 4:
		return n
	default:
		return n - 1
	}
}
