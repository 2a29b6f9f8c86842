package cmd

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	outBuf, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestBuiltinsCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "builtins")
	require.Nil(t, err)

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithTestNameForDir(true),
	)
	g.Assert(t, "builtins", []byte(stdout))
}

func TestExecCommand(t *testing.T) {
	for _, name := range []string{"echo", "false"} {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}

	stdout, stderr, err := executeCommand(t, "exec", "echo hi", "false")
	assert.Equal(t, exitStatus(1), err)
	assert.Equal(t, "hi\n", stdout)
	assert.Equal(t, "Exit code: 1\n", stderr)

	stdout, stderr, err = executeCommand(t, "exec", "echo hi", "exit", "false")
	assert.Nil(t, err)
	assert.Equal(t, "hi\n", stdout)
	assert.Empty(t, stderr)
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")

	_, stderr, err := executeCommand(t, "init", dir)
	require.Nil(t, err)
	assert.Contains(t, stderr, "Writing default configuration")
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
}

func TestLogsReportCommand(t *testing.T) {
	events := filepath.Join(t.TempDir(), "app.log")
	require.Nil(t, os.WriteFile(events, []byte(
		`{"level":"info","session_id":"a","event":"session_start"}
{"level":"info","session_id":"a","event":"builtin","command":["pwd"],"exit_code":0}
`), 0600))

	stdout, _, err := executeCommand(t, "logs", "report", events)
	require.Nil(t, err)
	assert.Contains(t, stdout, `"sessions": 1`)
	assert.Contains(t, stdout, `"pwd": 1`)
}

func TestLogsCatCommand(t *testing.T) {
	cast := filepath.Join(t.TempDir(), "session.cast")
	require.Nil(t, os.WriteFile(cast, []byte(
		`{"version":2,"width":80,"height":24}
[0,"o","mini-shell$ "]
[0.5,"i","pwd\r"]
[0.6,"o","/tmp\n"]
`), 0600))

	stdout, _, err := executeCommand(t, "logs", "cat", cast)
	require.Nil(t, err)
	assert.Equal(t, "mini-shell$ /tmp\n", stdout)

	stdout, _, err = executeCommand(t, "logs", "play", "--idle-time-limit", "1ms", cast)
	require.Nil(t, err)
	assert.Equal(t, "mini-shell$ /tmp\n", stdout)
}

func TestOpenRecording(t *testing.T) {
	dir := t.TempDir()
	_, _, err := executeCommand(t, "init", dir)
	require.Nil(t, err)

	cfgPath = dir
	defer func() { cfgPath = "." }()
	configuration, err := loadConfig(rootCmd)
	require.Nil(t, err)

	w, err := openRecording(configuration, "first")
	require.Nil(t, err)
	require.Nil(t, w.Close())
	assert.FileExists(t, filepath.Join(dir, "recordings", "first.cast"))

	w, err = openRecording(configuration, "")
	assert.Nil(t, err)
	assert.Nil(t, w)
}
