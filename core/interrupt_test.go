package core

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestInterruptHandlerSignal(t *testing.T) {
	h := InstallInterruptHandler()
	defer h.Stop()

	assert.False(t, h.Triggered())

	require.Nil(t, unix.Kill(os.Getpid(), unix.SIGINT))
	assert.Eventually(t, h.Triggered, time.Second, 10*time.Millisecond)

	// Reading clears the flag.
	assert.False(t, h.Triggered())
}

func TestInterruptHandlerStop(t *testing.T) {
	h := InstallInterruptHandler()
	h.Stop()
	h.Stop()

	h.Trigger()
	assert.True(t, h.Triggered())
}

func TestNilInterruptHandler(t *testing.T) {
	var h *InterruptHandler
	assert.False(t, h.Triggered())
}
