package cmd

import (
	"log"

	"github.com/josephlewis42/minishell/core/config"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Initialize the shell configuration in the current directory or DIR.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		configuration, err := config.Initialize(dir, logger)
		if err != nil {
			return err
		}

		if path := configuration.HistoryPath(); path != "" {
			logger.Printf("History is saved to %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
