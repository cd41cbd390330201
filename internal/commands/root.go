package commands

import (
	"github.com/spf13/cobra"

	"github.com/mokbank/mokbank/internal/buildinfo"
	"github.com/mokbank/mokbank/internal/metrics"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:     "mok",
		Short:   "MokBank reward ledger: tokens, XP, savings and goals",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.metricsFile == "" {
				return nil
			}
			return metrics.WriteTextfile(opts.metricsFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dataDir, "data-dir", "d", ".", "data directory")
	rootCmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command")

	rootCmd.AddCommand(
		newInitCommand(&opts),
		newBalanceCommand(&opts),
		newConvertCommand(&opts),
		newTransferCommand(&opts),
		newGoalCommand(&opts),
		newMissionCommand(&opts),
		newLearnCommand(&opts),
		newCryptoCommand(&opts),
		newHistoryCommand(&opts),
		newRenameCommand(&opts),
		newActivityCommand(&opts),
	)

	return rootCmd
}
