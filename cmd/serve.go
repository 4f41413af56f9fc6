package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"zstream/pkg/codec"
	"zstream/pkg/engine"
	"zstream/pkg/helper/banner"
	"zstream/pkg/metrics"
	"zstream/pkg/watch"
)

// newServeCmd creates the serve command: a long-running process that
// watches a directory and compresses every file dropped into it.
func newServeCmd() *cobra.Command {
	var watchDir string
	var noBanner bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch a directory and compress files as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !noBanner {
				banner.Version = version
				banner.GitCommit = gitCommit
				banner.BuildTime = buildTime
				banner.Print()
			}

			logger, ctx, cancel := setupCommand(cmd.Context())
			defer cancel()

			if watchDir == "" {
				fmt.Fprintln(os.Stderr, "serve requires --watch-dir")
				os.Exit(1)
			}

			var reg *metrics.Registry
			if cfg.Metrics.Enabled {
				reg = metrics.NewRegistry()
				srv := metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, reg)
				go func() {
					if err := srv.ListenAndServe(); err != nil {
						logger.Error("metrics server stopped", err)
					}
				}()
			}

			w := watch.New(watch.Options{
				Dir:            watchDir,
				PollInterval:   2 * time.Second,
				MaxConcurrent:  cfg.IO.ReadWorkers,
				AdmitPerMinute: 60,
				Logger:         logger,
				NewEngine: func() *engine.Engine {
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
						Metrics:      reg,
						Logger:       logger,
					})
				},
			})

			logger.WithField("dir", watchDir).Info("watching for files to compress")
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("watch loop exited", err)
				return err
			}
			return nil
		},
	}

	cfg.AddServerFlags(cmd)
	cmd.Flags().StringVar(&watchDir, "watch-dir", "", "Directory to watch for files to compress")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "Disable ASCII banner on startup")
	return cmd
}
