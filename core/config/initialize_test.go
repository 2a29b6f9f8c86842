package config

import (
	"bytes"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if _, err := Initialize(tempDir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, tempDir, cfg.Dir())

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()

		_, err = os.Stat(filepath.Join(tempDir, cfg.AppLog))
		assert.Nil(t, err)
	})

	t.Run("ReadAppLog", func(t *testing.T) {
		fd, err := cfg.ReadAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("CreateRecording", func(t *testing.T) {
		fd, err := cfg.CreateRecording("session.cast")
		assert.Nil(t, err)
		fd.Close()

		_, err = os.Stat(filepath.Join(tempDir, RecordingsDirName, "session.cast"))
		assert.Nil(t, err)
	})

	t.Run("LoadConfigFile", func(t *testing.T) {
		byFile, err := Load(filepath.Join(tempDir, ConfigurationName))
		assert.Nil(t, err)
		assert.Equal(t, cfg.Prompt, byFile.Prompt)
	})
}

func TestInitializeKeepsExisting(t *testing.T) {
	base := afero.NewMemMapFs()
	custom := []byte(`prompt: "custom> "
color: false
interrupt_hint: "bye with exit"
max_args: 10
history_file: ""
history_limit: 0
redirect_perm: "0600"
app_log: ""
`)
	require.Nil(t, afero.WriteFile(base, "/cfg/config.yaml", custom, 0600))

	cfg, err := initializeFs(base, "/cfg", log.New(io.Discard, "", 0))
	require.Nil(t, err)

	assert.Equal(t, "custom> ", cfg.Prompt)
	assert.Equal(t, 10, cfg.MaxArgs)
	assert.False(t, cfg.AppLogEnabled())
}

func TestLoadErrors(t *testing.T) {
	base := afero.NewMemMapFs()

	t.Run("missing", func(t *testing.T) {
		_, err := loadFs(base, "/nothing")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("unknown-field", func(t *testing.T) {
		require.Nil(t, afero.WriteFile(base, "/unknown/config.yaml", []byte("not_a_field: 1\n"), 0600))
		_, err := loadFs(base, "/unknown")
		assert.Error(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		invalid := bytes.Replace(defaultConfigData, []byte("max_args: 63"), []byte("max_args: 0"), 1)
		require.Nil(t, afero.WriteFile(base, "/invalid/config.yaml", invalid, 0600))
		_, err := loadFs(base, "/invalid")
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "max_args")
		}
	})
}
