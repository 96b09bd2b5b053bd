package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sprintsense/balance-service/pkg/logger/slogpretty"
)

var (
	// Version and Commit are set at build time via ldflags.
	Version = "dev"
	Commit  = "none"
)

// NewRootCommand builds the balancectl command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "balancectl",
		Short:         "balancectl analyzes sprint workload balance offline",
		Long:          `Reads a sprint plan (team capacity and work items) and reports balance, utilization, skill coverage, bottlenecks and recommendations.`,
		Version:       Version + " (" + Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")

	newLogger := func(cmd *cobra.Command) *slog.Logger {
		env := slogpretty.EnvProd
		if verbose {
			env = slogpretty.EnvDev
		}

		return slogpretty.SetupLogger(env, slogpretty.WithOutput(cmd.ErrOrStderr()))
	}

	root.AddCommand(newAnalyzeCommand(newLogger))

	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}
