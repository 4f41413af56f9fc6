package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newDecompressCmd creates the decompress command.
func newDecompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompress SRC DST",
		Short: "Decompress SRC into DST through the asynchronous I/O pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			logger, ctx, cancel := setupCommand(cmd.Context())
			defer cancel()

			reg := newMetricsRegistry(logger)
			eng := newEngine(logger, reg, sourceSize(src), "decompress")

			result, err := eng.Decompress(ctx, src, dst)
			if err != nil {
				logger.Error("decompress failed", err)
				fmt.Fprintf(os.Stderr, "decompress failed: %s\n", err)
				os.Exit(1)
			}

			fmt.Printf("%s -> %s: %d -> %d bytes in %s\n", src, dst, result.BytesIn, result.BytesOut, result.Duration)
			if result.Digest != "" {
				fmt.Printf("digest: %s\n", result.Digest)
			}
			return nil
		},
	}
	return cmd
}
