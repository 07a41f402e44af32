package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript stages a shell script standing in for the pipeline binary.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-capture.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func collect(t *testing.T, p *Process) ([]Line, ExitStatus) {
	t.Helper()
	var lines []Line
	for line := range p.Lines {
		lines = append(lines, line)
	}
	select {
	case st := <-p.Done:
		return lines, st
	case <-time.After(5 * time.Second):
		t.Fatal("process did not report exit status")
		return nil, ExitStatus{}
	}
}

func TestSpawn_RelaysStdoutInOrder(t *testing.T) {
	script := writeScript(t, "echo one\necho two\necho three\n")
	p, err := Spawn(context.Background(), script, nil)
	require.NoError(t, err)

	lines, st := collect(t, p)
	require.Len(t, lines, 3)
	assert.Equal(t, "one", lines[0].Text)
	assert.Equal(t, "two", lines[1].Text)
	assert.Equal(t, "three", lines[2].Text)
	for _, l := range lines {
		assert.Equal(t, "stdout", l.Stream)
	}
	assert.Equal(t, 0, st.Code)
}

func TestSpawn_SeparatesStreams(t *testing.T) {
	script := writeScript(t, "echo out\necho err 1>&2\n")
	p, err := Spawn(context.Background(), script, nil)
	require.NoError(t, err)

	lines, st := collect(t, p)
	require.Len(t, lines, 2)
	streams := map[string]string{}
	for _, l := range lines {
		streams[l.Stream] = l.Text
	}
	assert.Equal(t, "out", streams["stdout"])
	assert.Equal(t, "err", streams["stderr"])
	assert.Equal(t, 0, st.Code)
}

func TestSpawn_ReportsExitCode(t *testing.T) {
	script := writeScript(t, "echo failing\nexit 1\n")
	p, err := Spawn(context.Background(), script, nil)
	require.NoError(t, err)

	lines, st := collect(t, p)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, st.Code)
	assert.Error(t, st.Err)
}

func TestSpawn_PassesEnvironment(t *testing.T) {
	script := writeScript(t, `echo "user=$IMT_USERNAME"`+"\n")
	p, err := Spawn(context.Background(), script, map[string]string{"IMT_USERNAME": "roman"})
	require.NoError(t, err)

	lines, st := collect(t, p)
	require.Len(t, lines, 1)
	assert.Equal(t, "user=roman", lines[0].Text)
	assert.Equal(t, 0, st.Code)
}

func TestSpawn_MissingBinary(t *testing.T) {
	_, err := Spawn(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}
