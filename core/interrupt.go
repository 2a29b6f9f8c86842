package core

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// InterruptHandler records that SIGINT was delivered. The shell polls it
// between lines so nothing is printed from the signal path.
type InterruptHandler struct {
	pending  atomic.Bool
	signals  chan os.Signal
	done     chan struct{}
	stopOnce sync.Once
}

// InstallInterruptHandler starts catching SIGINT. Call Stop to restore the
// default behavior.
func InstallInterruptHandler() *InterruptHandler {
	h := &InterruptHandler{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(h.signals, unix.SIGINT)
	go h.watch()
	return h
}

func (h *InterruptHandler) watch() {
	for {
		select {
		case <-h.signals:
			h.pending.Store(true)
		case <-h.done:
			return
		}
	}
}

// Trigger marks an interrupt as pending.
func (h *InterruptHandler) Trigger() {
	h.pending.Store(true)
}

// Triggered reports whether an interrupt arrived since the last call and
// clears it. A nil handler never triggers.
func (h *InterruptHandler) Triggered() bool {
	if h == nil {
		return false
	}
	return h.pending.Swap(false)
}

// Stop restores default SIGINT delivery.
func (h *InterruptHandler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.signals)
		close(h.done)
	})
}
