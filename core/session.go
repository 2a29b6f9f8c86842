package core

import (
	"io"

	"github.com/josephlewis42/minishell/core/config"
	"github.com/josephlewis42/minishell/core/logger"
	"github.com/josephlewis42/minishell/core/ttylog"
	"github.com/josephlewis42/minishell/core/vio"
)

// Session ties a shell to its configuration, event log and optional terminal
// recording.
type Session struct {
	configuration *config.Configuration
	streams       vio.VIO
	logger        *logger.SessionLogger
	toClose       listCloser
}

// NewSession prepares a session on streams. If recording is non-nil the
// shell's output is also written to it in asciicast format.
func NewSession(configuration *config.Configuration, streams vio.VIO, recording io.Writer) (*Session, error) {
	session := &Session{
		configuration: configuration,
		streams:       streams,
	}

	eventLog := logger.Nop()
	if configuration.AppLogEnabled() {
		fd, err := configuration.OpenAppLog()
		if err != nil {
			return nil, err
		}
		session.toClose = append(session.toClose, fd)
		eventLog = logger.NewJSONLinesLogger(fd)
	}
	session.logger = eventLog.NewSession()

	if recording != nil {
		session.streams = ttylog.NewRecorder(streams, ttylog.NewAsciicastLogSink(recording))
	}

	return session, nil
}

// IO returns the streams the session's line source should use.
func (s *Session) IO() vio.VIO {
	return s.streams
}

// ID returns the unique ID of the session in the event log.
func (s *Session) ID() string {
	return s.logger.SessionID()
}

// NewShell creates a shell bound to the session.
func (s *Session) NewShell() *Shell {
	sh := NewShell(s.streams, s.configuration)
	sh.Log = s.logger
	return sh
}

// Close releases the event log.
func (s *Session) Close() error {
	return s.toClose.Close()
}
