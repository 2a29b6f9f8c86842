// Package vio holds the standard stream triple handed to builtins and child
// processes.
package vio

import (
	"io"
	"os"
)

// VIO provides the standard streams of a process.
type VIO interface {
	Stdin() io.ReadCloser
	Stdout() io.WriteCloser
	Stderr() io.WriteCloser
}

type VIOAdapter struct {
	IStdin  io.ReadCloser
	IStdout io.WriteCloser
	IStderr io.WriteCloser
}

// NewVIOAdapter wraps plain readers and writers. Nil streams read as closed
// and discard writes.
func NewVIOAdapter(stdin io.Reader, stdout, stderr io.Writer) *VIOAdapter {
	return &VIOAdapter{
		IStdin:  toReadCloserOrDiscard(stdin),
		IStdout: toWriteCloserOrDiscard(stdout),
		IStderr: toWriteCloserOrDiscard(stderr),
	}
}

// NewNullIO creates a valid /dev/null style I/O, reads won't work and
// writes will be discarded.
func NewNullIO() VIO {
	return NewVIOAdapter(nil, nil, nil)
}

// OSIO returns the streams of the current process.
func OSIO() VIO {
	return &VIOAdapter{
		IStdin:  os.Stdin,
		IStdout: os.Stdout,
		IStderr: os.Stderr,
	}
}

var _ VIO = (*VIOAdapter)(nil)

func (pr *VIOAdapter) Stdin() io.ReadCloser {
	return pr.IStdin
}

func (pr *VIOAdapter) Stdout() io.WriteCloser {
	return pr.IStdout
}

func (pr *VIOAdapter) Stderr() io.WriteCloser {
	return pr.IStderr
}

// Reader returns the value to give a child process as its standard input.
// Adapter wrappers are removed so an *os.File is inherited directly, and a
// closed stream becomes nil which exec connects to the null device.
func Reader(rc io.ReadCloser) io.Reader {
	switch s := rc.(type) {
	case nil, *devNull:
		return nil
	case nopReadCloser:
		return s.Reader
	default:
		return rc
	}
}

// Writer is the output counterpart of Reader.
func Writer(wc io.WriteCloser) io.Writer {
	switch s := wc.(type) {
	case nil, *devNull:
		return nil
	case nopWriteCloser:
		return s.Writer
	default:
		return wc
	}
}

func toWriteCloserOrDiscard(w io.Writer) io.WriteCloser {
	if w == nil {
		return &devNull{}
	}
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}

	return nopWriteCloser{w}
}

func toReadCloserOrDiscard(r io.Reader) io.ReadCloser {
	if r == nil {
		return &devNull{}
	}
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}

	return nopReadCloser{r}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type nopReadCloser struct {
	io.Reader
}

func (nopReadCloser) Close() error { return nil }

// devNull implements io.Reader and io.Writer, always closing for reads and
// discarding writes.
type devNull struct{}

var _ io.ReadCloser = (*devNull)(nil)
var _ io.WriteCloser = (*devNull)(nil)

func (*devNull) Read([]byte) (int, error) {
	return 0, os.ErrClosed
}

func (*devNull) Close() error {
	return nil
}

func (*devNull) Write(b []byte) (int, error) {
	return len(b), nil
}
