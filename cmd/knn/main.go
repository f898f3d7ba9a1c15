package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-sod/knn/internal/buildinfo"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/shutdown"
)

var rootCmd = &cobra.Command{
	Use:           "knn",
	Short:         "K-nearest-neighbor estimator: column imputation and an http predict service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(
			cmd.OutOrStdout(),
			"%s: %s, %s\n",
			buildinfo.Info.Name(),
			buildinfo.Info.Time(),
			buildinfo.Info.Tag(),
		)
	},
}

func init() {
	rootCmd.AddCommand(imputeCmd, serveCmd, versionCmd)
}

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)

	ctx, done := shutdown.New()
	defer done()
	logger := logging.FromContext(ctx)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		done()
		logger.Fatal(err)
	}
}
