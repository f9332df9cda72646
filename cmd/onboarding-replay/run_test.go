package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() { jsonOutput = false })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRun(t *testing.T) {
	t.Run("passing scenario", func(t *testing.T) {
		path := writeScenario(t, "name: welcome\nsteps:\n  - action: advance\n    expect: \"welcome#1\"\n")
		out, err := execute(t, "run", path)
		require.NoError(t, err)
		assert.Contains(t, out, "welcome: ok")
	})

	t.Run("diverging scenario fails the command", func(t *testing.T) {
		path := writeScenario(t, "name: early submit\nsteps:\n  - action: submit\n")
		out, err := execute(t, "run", path)
		require.Error(t, err)
		assert.Contains(t, out, "early submit: FAILED")
		assert.Contains(t, out, "MISMATCH")
	})

	t.Run("json output", func(t *testing.T) {
		path := writeScenario(t, "name: json\nsteps:\n  - action: advance\n")
		out, err := execute(t, "run", "--json", path)
		require.NoError(t, err)
		assert.Contains(t, out, `"scenario": "json"`)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
