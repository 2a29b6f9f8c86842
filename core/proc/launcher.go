package proc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/josephlewis42/minishell/core/shell"
	"github.com/josephlewis42/minishell/core/vio"
	"github.com/spf13/afero"
)

// DefaultPerm is the permission of files created by output redirection.
const DefaultPerm fs.FileMode = 0644

// Launcher starts external programs with the shell's streams.
type Launcher struct {
	// IO holds the streams inherited by children.
	IO vio.VIO
	// Fs is used to open redirection targets.
	Fs afero.Fs
	// Perm is the permission of newly created redirection targets.
	Perm fs.FileMode
	// Env of the children, nil uses the shell's environment.
	Env []string
}

// NewLauncher creates a launcher writing redirections to the OS filesystem.
func NewLauncher(streams vio.VIO) *Launcher {
	return &Launcher{
		IO:   streams,
		Fs:   afero.NewOsFs(),
		Perm: DefaultPerm,
	}
}

// Run starts cmd, optionally with its standard output redirected, and waits
// for it to exit. A non-zero exit status is not an error.
func (l *Launcher) Run(cmd Command, redirect *shell.Redirection) (Result, error) {
	var owned closers
	defer owned.Close()

	// The target is created even when there is nothing to run, as "> file"
	// does in other shells.
	var target afero.File
	if redirect != nil {
		var err error
		if target, err = l.OpenTarget(redirect); err != nil {
			return Result{}, err
		}
		owned.add(target)
	}

	if len(cmd.Args) == 0 {
		return Result{}, ErrEmptyCommand
	}

	child := l.command(cmd)
	if target != nil {
		child.Stdout = target
	}

	if err := start(child, cmd); err != nil {
		return Result{}, err
	}
	owned.closeInherited()

	return wait(child, cmd)
}

// RunPipeline starts both commands of p connected by a pipe and waits for
// both of them.
func (l *Launcher) RunPipeline(p Pipeline) (Result, error) {
	if len(p.Left.Args) == 0 || len(p.Right.Args) == 0 {
		return Result{}, ErrEmptyCommand
	}

	var owned closers
	defer owned.Close()

	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPipe, err)
	}
	owned.add(pr)
	owned.add(pw)

	left := l.command(p.Left)
	left.Stdout = pw

	right := l.command(p.Right)
	right.Stdin = pr

	if err := start(left, p.Left); err != nil {
		return Result{}, err
	}

	if err := start(right, p.Right); err != nil {
		// Without a reader the left side gets EPIPE and exits.
		owned.closeInherited()
		wait(left, p.Left)
		return Result{}, err
	}

	// Both ends must be closed here or the right side never sees EOF.
	owned.closeInherited()

	leftResult, leftErr := wait(left, p.Left)
	result, err := wait(right, p.Right)
	if err == nil && leftErr != nil {
		return leftResult, leftErr
	}
	return result, err
}

func (l *Launcher) command(cmd Command) *exec.Cmd {
	child := exec.Command(cmd.Args[0], cmd.Args[1:]...)
	child.Env = l.Env

	if l.IO != nil {
		child.Stdin = vio.Reader(l.IO.Stdin())
		child.Stdout = vio.Writer(l.IO.Stdout())
		child.Stderr = vio.Writer(l.IO.Stderr())
	}
	return child
}

// OpenTarget opens the file named by redirect for writing, creating it if
// needed.
func (l *Launcher) OpenTarget(redirect *shell.Redirection) (afero.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	switch redirect.Mode {
	case shell.Append:
		flags |= os.O_APPEND
	default:
		flags |= os.O_TRUNC
	}

	perm := l.Perm
	if perm == 0 {
		perm = DefaultPerm
	}

	fsys := l.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	fd, err := fsys.OpenFile(redirect.Path, flags, perm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", redirect.Path, ErrRedirectOpen, err)
	}
	return fd, nil
}

func start(child *exec.Cmd, cmd Command) error {
	err := child.Start()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, exec.ErrDot), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w: command not found", cmd.Name(), ErrExec)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w: permission denied", cmd.Name(), ErrExec)
	default:
		return fmt.Errorf("%s: %w: %v", cmd.Name(), ErrSpawn, err)
	}
}

func wait(child *exec.Cmd, cmd Command) (Result, error) {
	err := child.Wait()

	var result Result
	if child.ProcessState != nil {
		result.ExitCode = child.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// I/O copy failures, the process itself already exited.
		return result, fmt.Errorf("%s: %v", cmd.Name(), err)
	}
	return result, nil
}
