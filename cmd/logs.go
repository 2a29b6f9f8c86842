package cmd

import (
	"io"
	"os"
	"time"

	"github.com/josephlewis42/minishell/core/logger"
	"github.com/josephlewis42/minishell/core/ttylog"
	"github.com/spf13/cobra"
)

var (
	idleTimeLimit time.Duration
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the shell event log and session recordings.",
}

var reportCommand = &cobra.Command{
	Use:   "report [FILE]",
	Short: "Show a report of events.",
	Long: `Show a report of the events in FILE, or in the application log of the
configuration if FILE isn't given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var fd io.ReadCloser
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			fd = f
		} else {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			f, err := config.ReadAppLog()
			if err != nil {
				return err
			}
			fd = f
		}
		defer fd.Close()

		report := logger.NewReport()
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		return report.WriteJSON(cmd.OutOrStdout())
	},
}

// playCommand replays a recording at its original speed
var playCommand = &cobra.Command{
	Use:   "play FILE.cast",
	Short: "Replay a recorded interactive session in the terminal.",
	Long:  `Plays a recorded interactive session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// catCommand dumps a recording without pauses
var catCommand = &cobra.Command{
	Use:   "cat FILE.cast",
	Short: "Print full output of recorded session to a terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(reportCommand)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)

	// cat doesn't allow idle time
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
