package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	cctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "tutorsched",
		Short:         "Lesson scheduling for private music tutors",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default tutorsched.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newServeCommand(cctx))
	rootCmd.AddCommand(newTimelineCommand(cctx))
	rootCmd.AddCommand(newMaterializeCommand(cctx))
	rootCmd.AddCommand(newStatsCommand(cctx))

	return rootCmd
}
