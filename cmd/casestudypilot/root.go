package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "casestudypilot",
		Short: "Validate and score generated case studies and reference architectures",
		Long: `Casestudypilot validates AI-generated technical documents against their
source transcript before publication.

It gates on transcript sufficiency and subject identity, detects fabricated
metrics and subject drift, and computes the composite quality scores that
decide publish / regenerate / reject.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newYoutubeDataCommand())
	cmd.AddCommand(newVerifyCompanyCommand())
	cmd.AddCommand(newThumbnailsCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
