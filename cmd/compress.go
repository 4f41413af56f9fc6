package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newCompressCmd creates the compress command.
func newCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress SRC DST",
		Short: "Compress SRC into DST through the asynchronous I/O pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			logger, ctx, cancel := setupCommand(cmd.Context())
			defer cancel()

			reg := newMetricsRegistry(logger)
			eng := newEngine(logger, reg, sourceSize(src), "compress")

			result, err := eng.Compress(ctx, src, dst)
			if err != nil {
				logger.Error("compress failed", err)
				fmt.Fprintf(os.Stderr, "compress failed: %s\n", err)
				os.Exit(1)
			}

			fmt.Printf("%s -> %s: %d -> %d bytes (%.2fx) in %s\n",
				src, dst, result.BytesIn, result.BytesOut, ratio(result.BytesIn, result.BytesOut), result.Duration)
			if result.Digest != "" {
				fmt.Printf("digest: %s\n", result.Digest)
			}
			return nil
		},
	}
	return cmd
}

func ratio(in, out int64) float64 {
	if out == 0 {
		return 0
	}
	return float64(in) / float64(out)
}
