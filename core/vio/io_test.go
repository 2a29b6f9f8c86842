package vio

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNullIO(t *testing.T) {
	null := NewNullIO()

	n, err := null.Stdin().Read(make([]byte, 8))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, os.ErrClosed)

	n, err = null.Stdout().Write([]byte("discarded"))
	assert.Equal(t, 9, n)
	assert.Nil(t, err)
}

func TestNewVIOAdapter(t *testing.T) {
	in := strings.NewReader("input")
	out := &bytes.Buffer{}

	adapter := NewVIOAdapter(in, out, nil)

	_, err := adapter.Stdout().Write([]byte("hello"))
	assert.Nil(t, err)
	assert.Nil(t, adapter.Stdout().Close())
	assert.Equal(t, "hello", out.String())

	assert.Same(t, out, Writer(adapter.Stdout()))
	assert.Same(t, in, Reader(adapter.Stdin()))
	assert.Nil(t, Writer(adapter.Stderr()))
}

func TestUnwrapFile(t *testing.T) {
	adapter := NewVIOAdapter(os.Stdin, os.Stdout, os.Stderr)

	// Files are already closers and are kept as-is.
	assert.Same(t, os.Stdout, Writer(adapter.Stdout()))
	assert.Same(t, os.Stdin, Reader(adapter.Stdin()))
}
