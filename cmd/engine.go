package cmd

import (
	"os"

	"zstream/pkg/codec"
	"zstream/pkg/engine"
	"zstream/pkg/helper/log"
	"zstream/pkg/metrics"
	"zstream/pkg/progress"
)

// newEngine builds an Engine from the current global configuration,
// wiring in a progress reporter on stderr (unless disabled; when stderr
// is not a terminal the reporter prints one line per update instead of
// redrawing) and a metrics registry (when enabled).
func newEngine(logger log.Logger, reg *metrics.Registry, size int64, label string) *engine.Engine {
	var rep *progress.Reporter
	if cfg.Progress.Enabled {
		rep = progress.New(os.Stderr, label, size, cfg.Progress.Tick)
	}

	return engine.New(engine.Options{
		BufferSize:   cfg.IO.BufferSize,
		Jobs:         cfg.IO.Jobs,
		AsyncIO:      cfg.IO.AsyncIO,
		ReadWorkers:  cfg.IO.ReadWorkers,
		Sparse:       cfg.IO.Sparse,
		TestMode:     cfg.IO.TestMode,
		Level:        codec.ParseLevel(cfg.Codec.Level),
		WindowSizeMB: cfg.Codec.WindowSizeMB,
		Verify:       cfg.Codec.Verify,
		Progress:     rep,
		Metrics:      reg,
		Logger:       logger,
	})
}

// newMetricsRegistry returns a Registry (and starts its HTTP server in
// the background) when metrics are enabled, or nil otherwise.
func newMetricsRegistry(logger log.Logger) *metrics.Registry {
	if !cfg.Metrics.Enabled {
		return nil
	}
	reg := metrics.NewRegistry()
	srv := metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, reg)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("metrics server stopped", err)
		}
	}()
	return reg
}

func sourceSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
