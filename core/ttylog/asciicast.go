package ttylog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

// Event codes of asciicast v2. The format has no error stream, stderr is
// written as output because that's how the terminal showed it.
const (
	castOutput = "o"
	castInput  = "i"
)

func castCode(s Stream) string {
	if s == Stdin {
		return castInput
	}
	return castOutput
}

// CastHeader is the first line of an asciicast v2 recording.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
type CastHeader struct {
	Version int `json:"version"`
	Width   int `json:"width"`
	Height  int `json:"height"`
	// Timestamp is the UNIX time event offsets are relative to.
	Timestamp int64             `json:"timestamp,omitempty"`
	Title     string            `json:"title,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// castEvent is a single [offset, code, data] line.
type castEvent struct {
	Offset float64
	Code   string
	Data   string
}

func (e castEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Offset, e.Code, e.Data})
}

func (e *castEvent) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if count := len(fields); count != 3 {
		return fmt.Errorf("malformed event, expected 3 fields got %d", count)
	}

	for i, dest := range []interface{}{&e.Offset, &e.Code, &e.Data} {
		if err := json.Unmarshal(fields[i], dest); err != nil {
			return fmt.Errorf("malformed event field %d: %w", i, err)
		}
	}
	return nil
}

// AsciicastWriter encodes entries as an asciicast v2 recording. The header is
// written before the first entry, timed from the whole second it falls in.
type AsciicastWriter struct {
	w           io.Writer
	header      CastHeader
	startMicros int64
	started     bool
}

// NewAsciicastWriter creates a writer with a generic 80x24 terminal header.
func NewAsciicastWriter(w io.Writer, title string) *AsciicastWriter {
	return &AsciicastWriter{
		w: w,
		header: CastHeader{
			Version: 2,
			Width:   80,
			Height:  24,
			Title:   title,
			Env: map[string]string{
				"TERM":  "xterm-256color",
				"SHELL": "/bin/sh",
			},
		},
	}
}

// Record writes e, it has the signature of a LogSink.
func (aw *AsciicastWriter) Record(e *Entry) error {
	if !aw.started {
		aw.started = true
		aw.header.Timestamp = time.UnixMicro(e.TimestampMicros).Unix()
		aw.startMicros = aw.header.Timestamp * int64(time.Second/time.Microsecond)
		if err := aw.writeLine(aw.header); err != nil {
			return err
		}
	}

	return aw.writeLine(castEvent{
		Offset: microsecondsToSeconds(e.TimestampMicros - aw.startMicros),
		Code:   castCode(e.Stream),
		Data:   string(e.Data),
	})
}

func (aw *AsciicastWriter) writeLine(v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = aw.w.Write(append(line, '\n'))
	return err
}

// NewAsciicastLogSink creates a LogSink that writes an asciicast v2
// recording of a shell session.
func NewAsciicastLogSink(w io.Writer) LogSink {
	return NewAsciicastWriter(w, "minishell session").Record
}

type AsciicastLogSource struct {
	r      *bufio.Reader
	header *CastHeader
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an Asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

// Header returns the recording's header, reading it if needed.
func (src *AsciicastLogSource) Header() (*CastHeader, error) {
	if src.header != nil {
		return src.header, nil
	}

	line, err := src.nextLine()
	if err != nil {
		return nil, err
	}

	var header CastHeader
	if err := json.Unmarshal(line, &header); err != nil {
		return nil, fmt.Errorf("malformed header: %w", err)
	}
	src.header = &header
	return src.header, nil
}

// nextLine returns the next non-blank line.
func (src *AsciicastLogSource) nextLine() ([]byte, error) {
	for {
		line, err := src.r.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			return trimmed, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Next gets the next input or output entry with its absolute time, it returns
// io.EOF if there are no more. Other event types are skipped.
func (src *AsciicastLogSource) Next() (*Entry, error) {
	header, err := src.Header()
	if err != nil {
		return nil, err
	}
	startMicros := header.Timestamp * int64(time.Second/time.Microsecond)

	for {
		line, err := src.nextLine()
		if err != nil {
			return nil, err
		}

		var event castEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, err
		}

		var stream Stream
		switch event.Code {
		case castOutput:
			stream = Stdout
		case castInput:
			stream = Stdin
		default:
			continue
		}

		return &Entry{
			TimestampMicros: startMicros + secondsToMicroseconds(event.Offset),
			Stream:          stream,
			Data:            []byte(event.Data),
		}, nil
	}
}

func microsecondsToSeconds(microseconds int64) (seconds float64) {
	return (float64(microseconds) * float64(time.Microsecond)) / float64(time.Second)
}

func secondsToMicroseconds(seconds float64) (microseconds int64) {
	return int64(float64(seconds)*float64(time.Second)) / int64(time.Microsecond)
}
