// Package ttylog records and replays the terminal output of a session.
package ttylog

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/josephlewis42/minishell/core/vio"
)

// Stream identifies which standard stream an Entry was captured from.
type Stream int

const (
	Stdin Stream = iota
	Stdout
	Stderr
)

// Entry is a single chunk of terminal I/O.
type Entry struct {
	TimestampMicros int64
	Stream          Stream
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the source
	// has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Entry) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewClientOutput writes stdout and stderr to the given writer
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Entry) error {
		if e.Stream == Stdin {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder is a vio.VIO that copies everything written to stdout and stderr
// to a LogSink. Stdin is passed through untouched so children that inherit it
// don't leave a copying goroutine blocked on the terminal.
type Recorder struct {
	*vio.VIOAdapter
	mutex  sync.Mutex
	output LogSink
	now    func() time.Time
}

var _ vio.VIO = (*Recorder)(nil)

func (r *Recorder) recordIO(stream Stream, data []byte, dest func([]byte) (int, error)) (int, error) {
	eventTime := r.now()
	amount, err := dest(data)
	if amount > 0 {
		chunk := make([]byte, amount)
		copy(chunk, data[:amount])

		r.mutex.Lock()
		e2 := r.output(&Entry{
			TimestampMicros: eventTime.UnixMicro(),
			Stream:          stream,
			Data:            chunk,
		})
		r.mutex.Unlock()
		if e2 != nil {
			log.Print(e2)
		}
	}
	return amount, err
}

type recorderWriteCloser struct {
	r       *Recorder
	stream  Stream
	wrapped io.WriteCloser
}

var _ io.WriteCloser = (*recorderWriteCloser)(nil)

func (rc *recorderWriteCloser) Write(p []byte) (int, error) {
	return rc.r.recordIO(rc.stream, p, rc.wrapped.Write)
}

func (rc *recorderWriteCloser) Close() error {
	return rc.wrapped.Close()
}

// NewRecorder creates a logger that forwards all output events to output.
func NewRecorder(toWrap vio.VIO, output LogSink) *Recorder {
	recorder := &Recorder{
		output: output,
		now:    time.Now,
	}

	recorder.VIOAdapter = &vio.VIOAdapter{
		IStdin:  toWrap.Stdin(),
		IStdout: &recorderWriteCloser{stream: Stdout, r: recorder, wrapped: toWrap.Stdout()},
		IStderr: &recorderWriteCloser{stream: Stderr, r: recorder, wrapped: toWrap.Stderr()},
	}

	return recorder
}
