package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/minishell/core/config"
	"github.com/josephlewis42/minishell/core/logger"
	"github.com/josephlewis42/minishell/core/proc"
	"github.com/josephlewis42/minishell/core/shell"
	"github.com/josephlewis42/minishell/core/vio"
	"github.com/spf13/afero"
)

// Exit statuses for lines that fail before or instead of running a program.
const (
	StatusFailure    = 1
	StatusUsage      = 2
	StatusNotFound   = 127
	StatusCannotExec = 126
)

// LineReader is a source of input lines. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

var _ LineReader = (*readline.Instance)(nil)

type Shell struct {
	IO       vio.VIO
	Launcher *proc.Launcher
	// Fs is the filesystem builtins read from, relative paths resolve against
	// the working directory.
	Fs         afero.Fs
	Log        *logger.SessionLogger
	Interrupts *InterruptHandler

	prompt        string
	interruptHint string
	maxArgs       int

	// stdout is where builtins write, it's replaced while a builtin has its
	// output redirected.
	stdout io.Writer
	exited bool
}

// NewShell creates a shell reading commands from lines and running them with
// streams.
func NewShell(streams vio.VIO, configuration *config.Configuration) *Shell {
	launcher := proc.NewLauncher(streams)
	launcher.Perm = configuration.RedirectFileMode()

	prompt := color.New(color.FgGreen, color.Bold)
	if configuration.Color {
		prompt.EnableColor()
	} else {
		prompt.DisableColor()
	}

	return &Shell{
		IO:            streams,
		Launcher:      launcher,
		Fs:            launcher.Fs,
		Log:           logger.Nop().Sessionless(),
		prompt:        prompt.Sprint(configuration.Prompt),
		interruptHint: configuration.InterruptHint,
		maxArgs:       configuration.MaxArgs,
	}
}

// Prompt returns the string displayed before each line is read.
func (s *Shell) Prompt() string {
	return s.prompt
}

// Stdout is the output stream of the running builtin.
func (s *Shell) Stdout() io.Writer {
	if s.stdout != nil {
		return s.stdout
	}
	return s.IO.Stdout()
}

// Stderr is where diagnostics are written.
func (s *Shell) Stderr() io.Writer {
	return s.IO.Stderr()
}

// Run reads and executes lines until the exit builtin is called or the input
// ends. It returns the exit code for the shell process.
func (s *Shell) Run(lines LineReader) int {
	wd, _ := os.Getwd()
	s.Log.Start(wd)

	code := s.loop(lines)

	s.Log.End(code)
	return code
}

func (s *Shell) loop(lines LineReader) int {
	s.exited = false
	for {
		lines.SetPrompt(s.prompt)
		line, err := lines.Readline()

		interrupted := s.Interrupts.Triggered()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			s.interrupt()
			continue // The partial line is discarded.

		case err == io.EOF:
			if interrupted {
				s.interrupt()
			}
			return 1

		case err != nil:
			fmt.Fprintf(s.Stderr(), "sh: %v\n", err)
			return 1
		}

		if interrupted {
			s.interrupt()
		}

		s.RunLine(line)
		if s.exited {
			return 0
		}

		// A foreground child interrupted by the terminal also interrupts us.
		if s.Interrupts.Triggered() {
			s.interrupt()
		}
	}
}

// RunLines executes lines in order without prompting until one of them calls
// exit. It returns the status of the last line run.
func (s *Shell) RunLines(lines []string) int {
	wd, _ := os.Getwd()
	s.Log.Start(wd)

	s.exited = false
	status := 0
	for _, line := range lines {
		status = s.RunLine(line)
		if s.exited {
			break
		}
	}

	s.Log.End(status)
	return status
}

func (s *Shell) interrupt() {
	s.Log.Interrupt()
	fmt.Fprintf(s.Stderr(), "\n%s\n", s.interruptHint)
}

// Exited reports whether the exit builtin was run.
func (s *Shell) Exited() bool {
	return s.exited
}

// RunLine executes a single line of input and returns its exit status. Blank
// lines do nothing and succeed.
func (s *Shell) RunLine(line string) int {
	if left, right, ok := shell.SplitPipeline(line, s.maxArgs); ok {
		return s.runPipeline(left, right)
	}

	args := shell.Tokenize(line, s.maxArgs)
	if len(args) == 0 {
		return 0
	}

	cmdArgs, redirect, err := shell.ResolveRedirection(args)
	if err != nil {
		return s.report(args, err)
	}

	if len(cmdArgs) > 0 {
		if builtin, ok := AllBuiltins[cmdArgs[0]]; ok {
			return s.runBuiltin(builtin, cmdArgs, redirect)
		}
	}

	return s.runCommand(cmdArgs, redirect)
}

func (s *Shell) runCommand(args []string, redirect *shell.Redirection) int {
	result, err := s.Launcher.Run(proc.Command{Args: args}, redirect)
	if err != nil {
		return s.report(args, err)
	}

	mode, path := "", ""
	if redirect != nil {
		mode, path = redirect.Mode.Name(), redirect.Path
	}
	s.Log.RunCommand(args, mode, path, result.ExitCode)
	return result.ExitCode
}

func (s *Shell) runPipeline(left, right []string) int {
	result, err := s.Launcher.RunPipeline(proc.Pipeline{
		Left:  proc.Command{Args: left},
		Right: proc.Command{Args: right},
	})
	if err != nil {
		return s.report(pipelineArgs(left, right), err)
	}

	s.Log.Pipeline(left, right, result.ExitCode)
	return result.ExitCode
}

// pipelineArgs joins both sides of a pipeline for diagnostics. It copies so
// the tokenizer's spare capacity is never written to.
func pipelineArgs(left, right []string) []string {
	return slices.Concat(left, []string{shell.PipeOperator}, right)
}

func (s *Shell) runBuiltin(builtin ShellBuiltin, args []string, redirect *shell.Redirection) int {
	if redirect != nil {
		target, err := s.Launcher.OpenTarget(redirect)
		if err != nil {
			return s.report(args, err)
		}
		defer target.Close()

		s.stdout = target
		defer func() { s.stdout = nil }()
	}

	status := builtin.Main(s, args)
	s.Log.Builtin(args, status)
	return status
}

// report writes a one line diagnostic for err and logs it. It returns the
// exit status for the failed line.
func (s *Shell) report(args []string, err error) int {
	fmt.Fprintf(s.Stderr(), "sh: %v\n", err)
	s.Log.Failure(FailureKind(err), args, err)

	switch {
	case errors.Is(err, proc.ErrExec):
		return StatusNotFound
	case errors.Is(err, proc.ErrSpawn):
		return StatusCannotExec
	case errors.Is(err, shell.ErrMalformedRedirection), errors.Is(err, ErrBuiltinArgument):
		return StatusUsage
	default:
		return StatusFailure
	}
}

// FailureKind names the class of err for the event log.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, proc.ErrSpawn):
		return "spawn"
	case errors.Is(err, proc.ErrExec):
		return "exec"
	case errors.Is(err, proc.ErrRedirectOpen):
		return "redirect"
	case errors.Is(err, proc.ErrPipe):
		return "pipe"
	case errors.Is(err, proc.ErrEmptyCommand):
		return "empty"
	case errors.Is(err, shell.ErrMalformedRedirection):
		return "syntax"
	case errors.Is(err, ErrBuiltinArgument):
		return "builtin"
	default:
		return "io"
	}
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
