// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestConsoleHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, ConsoleOptions{Level: slog.LevelDebug, NoColor: true}))

	logger.With("component", "cloud").Info("request completed", "status", 200, "note", "two words")

	line := buf.String()
	assert.Equal(t, "INFO  request completed component=cloud status=200 note=\"two words\"\n", line)
}

func TestConsoleHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, ConsoleOptions{Level: slog.LevelWarn, NoColor: true}))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("failed", Err(errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "WARN  shown"))
	assert.Equal(t, "ERROR failed error=boom", lines[1])
}

func TestConsoleHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, ConsoleOptions{NoColor: true}))

	logger.WithGroup("send").Info("done", "turns", 3)
	assert.Equal(t, "INFO  done send.turns=3\n", buf.String())
}

func TestStripANSI(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("\x1b[31mred\x1b[0m plain")
	stripANSI(&buf)
	assert.Equal(t, "red plain", buf.String())
}

func TestSetup_File(t *testing.T) {
	restoreDefault(t)
	path := filepath.Join(t.TempDir(), "logs", "bestfriend.log")

	logger, closer, err := Setup(Options{Level: slog.LevelInfo, File: path})
	require.NoError(t, err)

	logger.Debug("not written")
	slog.Info("written", "component", "test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=written")
	assert.Contains(t, string(data), "component=test")
	assert.NotContains(t, string(data), "not written")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestSetup_FileAndConsole(t *testing.T) {
	restoreDefault(t)
	path := filepath.Join(t.TempDir(), "bestfriend.log")
	var console bytes.Buffer

	logger, closer, err := Setup(Options{
		Level:        slog.LevelDebug,
		File:         path,
		Console:      true,
		ConsoleLevel: slog.LevelWarn,
		Stderr:       &console,
		NoColor:      true,
	})
	require.NoError(t, err)

	logger.Debug("file only")
	logger.Warn("both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file only")
	assert.Contains(t, string(data), "both")

	assert.NotContains(t, console.String(), "file only")
	assert.Contains(t, console.String(), "both")
}

func TestSetup_NothingConfigured(t *testing.T) {
	restoreDefault(t)

	logger, closer, err := Setup(Options{})
	require.NoError(t, err)
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
	assert.NoError(t, closer.Close())
}

func TestErr(t *testing.T) {
	assert.Equal(t, slog.String("error", "boom"), Err(errors.New("boom")))
	assert.True(t, Err(nil).Equal(slog.Attr{}))
}
