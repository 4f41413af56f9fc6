package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"zstream/pkg/helper/banner"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	var showBanner bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			banner.Version = version
			banner.GitCommit = gitCommit
			banner.BuildTime = buildTime
			if showBanner {
				banner.Print()
				return
			}
			fmt.Printf("zstream %s\n", version)
			fmt.Printf("Git Commit: %s\n", gitCommit)
			fmt.Printf("Build Time: %s\n", buildTime)
			fmt.Printf("Go Version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVar(&showBanner, "banner", false, "Display ASCII banner with version info")
	return cmd
}
