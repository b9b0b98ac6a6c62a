package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/internal/logger"
)

func TestRootCommand_Version(t *testing.T) {
	resetGlobals()
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	output, err := captureOutput(t, rootCmd.Execute)
	require.NoError(t, err)
	assert.Contains(t, output, "memctl dev")
}

func TestRootCommand_LogDir(t *testing.T) {
	resetGlobals()
	dir := t.TempDir()
	path := writeTrace(t, []byte("alloc a 8\n"))

	rootCmd.SetArgs([]string{"replay", path, "--log-dir", dir, "--log-level", "debug", "--quiet"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	_, err := captureOutput(t, rootCmd.Execute)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"initialized"`)
	assert.Contains(t, string(data), `"allocator":"freelist"`)
	assert.Contains(t, string(data), `"msg":"leak detected"`)
}

func TestRootCommand_BadLogLevel(t *testing.T) {
	resetGlobals()
	rootCmd.SetArgs([]string{"bench", "--log-level", "chatty"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetErr(nil) })

	_, err := captureOutput(t, rootCmd.Execute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
}

func TestSetupLogging_DisabledByDefault(t *testing.T) {
	resetGlobals()
	require.NoError(t, setupLogging(newBenchCmd()))
	assert.Same(t, logger.Discard, appLog)
}

func TestRootCommand_VersionJSON(t *testing.T) {
	resetGlobals()
	rootCmd.SetArgs([]string{"version", "--json"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	output, err := captureOutput(t, rootCmd.Execute)
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, jsoniter.UnmarshalFromString(output, &info))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["go"])
}
