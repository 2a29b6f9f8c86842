package core

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/minishell/core/config"
	"github.com/josephlewis42/minishell/core/logger"
	"github.com/josephlewis42/minishell/core/vio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	requirePrograms(t, "echo")

	dir := t.TempDir()
	cfg, err := config.Initialize(dir, log.New(io.Discard, "", 0))
	require.Nil(t, err)

	stdout := &syncBuffer{}
	cast := &bytes.Buffer{}
	session, err := NewSession(cfg, vio.NewVIOAdapter(nil, stdout, nil), cast)
	require.Nil(t, err)

	assert.Equal(t, 0, session.NewShell().RunLines([]string{"echo hi"}))
	require.Nil(t, session.Close())

	assert.Equal(t, "hi\n", stdout.String())
	assert.Contains(t, cast.String(), `"o","hi\n"]`)

	fd, err := os.Open(filepath.Join(dir, cfg.AppLog))
	require.Nil(t, err)
	defer fd.Close()

	var events []string
	require.Nil(t, logger.ReadJSONLinesLog(fd, func(le *logger.LogEntry) {
		assert.Equal(t, session.ID(), le.SessionID)
		events = append(events, le.Event)
	}))
	assert.Equal(t, []string{logger.EventSessionStart, logger.EventRunCommand, logger.EventSessionEnd}, events)
}

func TestSessionWithoutLog(t *testing.T) {
	session, err := NewSession(config.Default(), vio.NewNullIO(), nil)
	require.Nil(t, err)
	defer session.Close()

	assert.NotEmpty(t, session.ID())
	assert.IsType(t, &vio.VIOAdapter{}, session.IO())
}
