package logger

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event names, stored in the "event" field of each entry.
const (
	EventSessionStart = "session_start"
	EventSessionEnd   = "session_end"
	EventRunCommand   = "run_command"
	EventBuiltin      = "builtin"
	EventPipeline     = "pipeline"
	EventFailure      = "failure"
	EventInterrupt    = "interrupt"
)

// LogEntry is a single decoded event.
type LogEntry struct {
	Time         time.Time `json:"time"`
	Level        string    `json:"level"`
	SessionID    string    `json:"session_id"`
	Event        string    `json:"event"`
	Dir          string    `json:"dir,omitempty"`
	Command      []string  `json:"command,omitempty"`
	Right        []string  `json:"right,omitempty"`
	RedirectMode string    `json:"redirect_mode,omitempty"`
	RedirectPath string    `json:"redirect_path,omitempty"`
	ExitCode     *int      `json:"exit_code,omitempty"`
	Kind         string    `json:"kind,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Logger captures shell events.
type Logger struct {
	zl zerolog.Logger
}

// NewJSONLinesLogger creates a Logger that exports events in newline
// delimited JSON object format.
func NewJSONLinesLogger(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Nop creates a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// NewSession creates a logger with a fresh session ID.
func (l *Logger) NewSession() *SessionLogger {
	return l.session(uuid.NewString())
}

// Sessionless creates a logger with no session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return l.session("")
}

func (l *Logger) session(id string) *SessionLogger {
	return &SessionLogger{
		zl:        l.zl.With().Str("session_id", id).Logger(),
		sessionID: id,
	}
}

// SessionLogger logs events with a shared session ID.
type SessionLogger struct {
	zl        zerolog.Logger
	sessionID string
}

func (s *SessionLogger) SessionID() string {
	return s.sessionID
}

func (s *SessionLogger) event(level zerolog.Level, name string) *zerolog.Event {
	return s.zl.WithLevel(level).Str("event", name)
}

// Start records a new session started in dir.
func (s *SessionLogger) Start(dir string) {
	s.event(zerolog.InfoLevel, EventSessionStart).Str("dir", dir).Send()
}

// End records the shell exiting with exitCode.
func (s *SessionLogger) End(exitCode int) {
	s.event(zerolog.InfoLevel, EventSessionEnd).Int("exit_code", exitCode).Send()
}

// RunCommand records an external program that ran to completion. mode and
// path are empty when output wasn't redirected.
func (s *SessionLogger) RunCommand(args []string, mode, path string, exitCode int) {
	e := s.event(zerolog.InfoLevel, EventRunCommand).Strs("command", args)
	if path != "" {
		e = e.Str("redirect_mode", mode).Str("redirect_path", path)
	}
	e.Int("exit_code", exitCode).Send()
}

// Builtin records a builtin invocation.
func (s *SessionLogger) Builtin(args []string, status int) {
	s.event(zerolog.InfoLevel, EventBuiltin).Strs("command", args).Int("exit_code", status).Send()
}

// Pipeline records a two stage pipeline, exitCode is the right hand side's.
func (s *SessionLogger) Pipeline(left, right []string, exitCode int) {
	s.event(zerolog.InfoLevel, EventPipeline).
		Strs("command", left).
		Strs("right", right).
		Int("exit_code", exitCode).
		Send()
}

// Failure records a command that couldn't be run.
func (s *SessionLogger) Failure(kind string, args []string, err error) {
	s.event(zerolog.WarnLevel, EventFailure).
		Str("kind", kind).
		Strs("command", args).
		Err(err).
		Send()
}

// Interrupt records Ctrl+C at the prompt.
func (s *SessionLogger) Interrupt() {
	s.event(zerolog.InfoLevel, EventInterrupt).Send()
}
