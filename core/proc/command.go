// Package proc spawns external programs for the shell, alone or as a two
// stage pipeline, and waits for them.
package proc

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyCommand is returned when a command has no program name.
	ErrEmptyCommand = errors.New("empty command")

	// ErrSpawn is returned when the process couldn't be created.
	ErrSpawn = errors.New("cannot spawn process")

	// ErrExec is returned when the program image couldn't be started, for
	// example because it wasn't found.
	ErrExec = errors.New("cannot execute")

	// ErrRedirectOpen is returned when the output redirection target couldn't
	// be opened. No process is started.
	ErrRedirectOpen = errors.New("cannot open redirection target")

	// ErrPipe is returned when the pipe connecting two commands couldn't be
	// created. No process is started.
	ErrPipe = errors.New("cannot create pipe")
)

// Command is a program name followed by its arguments.
type Command struct {
	Args []string
}

// NewCommand creates a Command from a program name and its arguments.
func NewCommand(name string, arg ...string) Command {
	return Command{Args: append([]string{name}, arg...)}
}

// Name returns the program name, or an empty string for an empty command.
func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Pipeline connects the standard output of Left to the standard input of
// Right.
type Pipeline struct {
	Left  Command
	Right Command
}

func (p Pipeline) String() string {
	return p.Left.String() + " | " + p.Right.String()
}

// Result describes a child that ran to completion.
type Result struct {
	// ExitCode of the child, -1 if it was killed by a signal. For pipelines
	// this is the exit code of the last command.
	ExitCode int
}
