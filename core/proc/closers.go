package proc

import (
	"io"
	"os"
)

// closers owns descriptors opened by the shell while a child is set up. Each
// one is closed exactly once, either by closeInherited once the children hold
// their own copies or by the deferred Close on any other path.
type closers []io.Closer

func (lc *closers) add(c io.Closer) {
	*lc = append(*lc, c)
}

// closeInherited closes the files that were handed to a child by descriptor.
// Other writers are fed by exec's copy goroutines and stay open until Wait
// returns.
func (lc *closers) closeInherited() error {
	var lastErr error
	kept := (*lc)[:0]
	for _, c := range *lc {
		if f, ok := c.(*os.File); ok {
			if err := f.Close(); err != nil {
				lastErr = err
			}
			continue
		}
		kept = append(kept, c)
	}
	*lc = kept
	return lastErr
}

func (lc *closers) Close() error {
	var lastErr error
	for _, v := range *lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}
	*lc = nil

	return lastErr
}
