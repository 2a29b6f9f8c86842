package cmd

import (
	"fmt"

	"github.com/josephlewis42/minishell/core"
	"github.com/josephlewis42/minishell/core/vio"
	"github.com/spf13/cobra"
)

// execCmd runs lines through the shell without a terminal
var execCmd = &cobra.Command{
	Use:   "exec LINE...",
	Short: "Run each argument as a line of shell input.",
	Long: `Run each argument as a line of shell input, in order, stopping early if
the exit builtin is called. The exit status is that of the last line.`,
	Example: `  minishell exec 'cd /tmp' 'ls | grep go > found.txt'`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		configuration.Color = false

		streams := vio.NewVIOAdapter(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		session, err := core.NewSession(configuration, streams, nil)
		if err != nil {
			return err
		}
		defer session.Close()

		status := session.NewShell().RunLines(args)
		if status != 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exit code: %d\n", status)
			return exitStatus(status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
