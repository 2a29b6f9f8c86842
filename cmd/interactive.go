package cmd

import (
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/minishell/core"
	"github.com/josephlewis42/minishell/core/config"
	"github.com/josephlewis42/minishell/core/ttylog"
	"github.com/josephlewis42/minishell/core/vio"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// openRecording creates the file the session is recorded to. It's placed in
// the configuration directory when there is one.
func openRecording(configuration *config.Configuration, name string) (io.WriteCloser, error) {
	if name == "" {
		return nil, nil
	}

	if ext := "." + ttylog.AsciicastFileExt; !strings.HasSuffix(name, ext) {
		name += ext
	}

	if configuration.Dir() == "" {
		return os.Create(name)
	}
	return configuration.CreateRecording(name)
}

// runInteractive runs the shell on the process's terminal and returns its exit
// code.
func runInteractive(cmd *cobra.Command, configuration *config.Configuration) int {
	logger := log.New(cmd.ErrOrStderr(), "", 0)

	if noColor || !isTerminal(os.Stdout) {
		configuration.Color = false
	}

	recording, err := openRecording(configuration, recordName)
	if err != nil {
		logger.Printf("sh: %v", err)
		return 1
	}
	var recordingWriter io.Writer
	if recording != nil {
		defer recording.Close()
		recordingWriter = recording
	}

	session, err := core.NewSession(configuration, vio.OSIO(), recordingWriter)
	if err != nil {
		logger.Printf("sh: %v", err)
		return 1
	}
	defer session.Close()

	streams := session.IO()
	rlConfig := &readline.Config{
		Prompt:       configuration.Prompt,
		HistoryFile:  configuration.HistoryPath(),
		HistoryLimit: configuration.HistoryLimit,
		Stdin:        readline.NewCancelableStdin(streams.Stdin()),
		Stdout:       streams.Stdout(),
		Stderr:       streams.Stderr(),
		FuncIsTerminal: func() bool {
			return isTerminal(os.Stdin) && isTerminal(os.Stdout)
		},
	}
	if err := rlConfig.Init(); err != nil {
		logger.Printf("sh: %v", err)
		return 1
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		logger.Printf("sh: %v", err)
		return 1
	}
	defer func() {
		if err := rl.Close(); err != nil && !errors.Is(err, io.EOF) {
			logger.Printf("sh: %v", err)
		}
	}()

	interrupts := core.InstallInterruptHandler()
	defer interrupts.Stop()

	sh := session.NewShell()
	sh.Interrupts = interrupts
	return sh.Run(rl)
}
