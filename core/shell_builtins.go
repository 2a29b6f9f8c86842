package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/pborman/getopt/v2"
)

// ErrBuiltinArgument is returned when a builtin is called with arguments it
// can't act on.
var ErrBuiltinArgument = errors.New("bad builtin argument")

// ClearScreen moves the cursor home and erases the display.
const ClearScreen = "\033[H\033[J"

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinNames returns the names of all builtins in sorted order.
func BuiltinNames() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type builtinError struct {
	msg string
}

func (e *builtinError) Error() string {
	return e.msg
}

func (e *builtinError) Is(target error) bool {
	return target == ErrBuiltinArgument
}

func builtinErrorf(format string, a ...interface{}) error {
	return &builtinError{msg: fmt.Sprintf(format, a...)}
}

// usage describes the command line of a builtin.
type usage struct {
	synopsis    string
	description string
}

// parseArgs handles the flags shared by all builtins. If ok is false the
// builtin is done and should return status.
func (u usage) parseArgs(s *Shell, args []string) (operands []string, status int, ok bool) {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		return nil, s.report(args, builtinErrorf("%s: %v", args[0], err)), false
	}

	if *helpOpt {
		w := s.Stdout()
		fmt.Fprintf(w, "usage: %s\n", u.synopsis)
		fmt.Fprintln(w, u.description)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return nil, 0, false
	}

	return opts.Args(), 0, true
}

var (
	exitUsage  = usage{"exit", "Exit the shell with status 0."}
	cdUsage    = usage{"cd DIR", "Change the shell working directory to DIR."}
	pwdUsage   = usage{"pwd", "Print the name of the current working directory."}
	clearUsage = usage{"clear", "Clear the terminal screen."}
	lsUsage    = usage{"ls", "List the entries of the current directory in directory order."}
)

// Exit quits the shell
func Exit(s *Shell, args []string) int {
	if _, status, ok := exitUsage.parseArgs(s, args); !ok {
		return status
	}

	s.exited = true
	return 0
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) int {
	operands, status, ok := cdUsage.parseArgs(s, args)
	if !ok {
		return status
	}

	switch len(operands) {
	case 0:
		return s.report(args, builtinErrorf("%s: missing directory", args[0]))
	case 1:
		if err := os.Chdir(operands[0]); err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				err = pathErr.Err
			}
			return s.report(args, builtinErrorf("%s: %s: %v", args[0], operands[0], err))
		}
		return 0
	default:
		return s.report(args, builtinErrorf("%s: too many arguments", args[0]))
	}
}

// Pwd prints the working directory.
func Pwd(s *Shell, args []string) int {
	if _, status, ok := pwdUsage.parseArgs(s, args); !ok {
		return status
	}

	wd, err := os.Getwd()
	if err != nil {
		return s.report(args, fmt.Errorf("%s: %w", args[0], err))
	}
	fmt.Fprintln(s.Stdout(), wd)
	return 0
}

// Clear erases the terminal.
func Clear(s *Shell, args []string) int {
	if _, status, ok := clearUsage.parseArgs(s, args); !ok {
		return status
	}

	io.WriteString(s.Stdout(), ClearScreen)
	return 0
}

// Ls prints the names in the working directory, one per line, in the order
// the filesystem returns them.
func Ls(s *Shell, args []string) int {
	if _, status, ok := lsUsage.parseArgs(s, args); !ok {
		return status
	}

	dir, err := s.Fs.Open(".")
	if err != nil {
		return s.report(args, fmt.Errorf("%s: %w", args[0], err))
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return s.report(args, fmt.Errorf("%s: %w", args[0], err))
	}

	w := s.Stdout()
	// Directory streams include the self and parent links.
	fmt.Fprintln(w, ".")
	fmt.Fprintln(w, "..")
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return 0
}

func init() {
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["clear"] = ShellBuiltinFunc(Clear)
	AllBuiltins["ls"] = ShellBuiltinFunc(Ls)
}
