// Package shell turns raw input lines into argument lists.
//
// The stages loosely follow
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
// with most of them missing:
//
//  1. The input is broken into whitespace separated words. There is no
//     quoting, escaping or expansion.
//  2. A single pipe operator divides the line into two simple commands.
//  3. Output redirection (> and >>) is removed from the parameter list
//     together with its operand.
package shell

import (
	"errors"
	"fmt"
	"strings"
)

// MaxArgs is the default number of tokens kept per command, extra tokens are
// dropped.
const MaxArgs = 63

const (
	PipeOperator     = "|"
	TruncateOperator = ">"
	AppendOperator   = ">>"

	separators = " \t\n"
)

// ErrMalformedRedirection is returned when a redirection operator isn't
// followed by a path.
var ErrMalformedRedirection = errors.New("invalid redirection")

// RedirectMode controls how the redirection target is opened.
type RedirectMode int

const (
	Truncate RedirectMode = iota
	Append
)

// Name returns a human readable name for the mode.
func (m RedirectMode) Name() string {
	switch m {
	case Truncate:
		return "truncate"
	case Append:
		return "append"
	default:
		return m.String()
	}
}

func (m RedirectMode) String() string {
	switch m {
	case Truncate:
		return TruncateOperator
	case Append:
		return AppendOperator
	default:
		return fmt.Sprintf("RedirectMode(%d)", int(m))
	}
}

// Redirection sends a command's standard output to a file.
type Redirection struct {
	Path string
	Mode RedirectMode
}

func (r *Redirection) String() string {
	return fmt.Sprintf("%s %s", r.Mode, r.Path)
}

// Tokenize splits line on runs of spaces, tabs and newlines. At most max
// tokens are returned, max <= 0 uses MaxArgs.
func Tokenize(line string, max int) []string {
	if max <= 0 {
		max = MaxArgs
	}

	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})
	if len(tokens) > max {
		tokens = tokens[:max]
	}
	return tokens
}

// SplitPipeline splits line at the first pipe character and tokenizes both
// halves. Any later pipe characters are left in the right half as ordinary
// text. ok is false if the line has no pipe.
func SplitPipeline(line string, max int) (left, right []string, ok bool) {
	idx := strings.Index(line, PipeOperator)
	if idx < 0 {
		return nil, nil, false
	}

	return Tokenize(line[:idx], max), Tokenize(line[idx+1:], max), true
}

// ResolveRedirection finds the first output redirection in args. The returned
// arguments stop before the operator; anything following the target path is
// dropped as well.
func ResolveRedirection(args []string) ([]string, *Redirection, error) {
	for i, arg := range args {
		var mode RedirectMode
		switch arg {
		case TruncateOperator:
			mode = Truncate
		case AppendOperator:
			mode = Append
		default:
			continue
		}

		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("%w: %q needs a file name", ErrMalformedRedirection, arg)
		}

		return args[:i:i], &Redirection{Path: args[i+1], Mode: mode}, nil
	}

	return args, nil, nil
}
