package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cobra.CheckErr(newRootCmd(logger).Execute())
}

func newRootCmd(logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "picturechain",
		Short:         "Turn and game orchestration engine for chained writing/drawing games.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.AddCommand(newServeCmd(logger))
	cmd.AddCommand(newMigrateCmd(logger))
	cmd.AddCommand(newSweepCmd(logger))
	return cmd
}
