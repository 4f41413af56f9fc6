// Package cmd provides the command-line interface commands for zstream.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zstream/pkg/config"
	"zstream/pkg/helper/log"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "zstream",
		Short: "zstream is an ordered, asynchronous file I/O pipeline for streaming compression",
		Long:  `A tool for compressing and decompressing files through a bounded pool of reusable I/O job buffers, with optional sparse-file output and content verification.`,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cfg = config.NewDefaultConfig()
	cfg.AddFlagsToCommand(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompressCmd())
	rootCmd.AddCommand(newDecompressCmd())
	rootCmd.AddCommand(newServeCmd())
}

// setupCommand creates a logger and a cancellable context that's
// canceled on SIGINT/SIGTERM, so a long compress/decompress pass can
// unwind cleanly instead of leaving a half-written output file.
func setupCommand(ctx context.Context) (log.Logger, context.Context, context.CancelFunc) {
	logger := log.NewBasicLogger(log.ParseLevel(cfg.LogLevel))
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
			logger.Info("received termination signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return logger, ctx, cancel
}
