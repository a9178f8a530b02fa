package clog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func TestHandlerFormatsFieldsSorted(t *testing.T) {
	var out bufferCloser
	h := NewHandler(&out)
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	logger := &log.Logger{Handler: h, Level: log.InfoLevel}
	logger.WithField("ctx", "pemindahan-ba-001").
		WithField("step", 3).
		WithField("process_id", 7).
		Info("step advanced")

	line := strings.TrimRight(out.String(), "\n")
	assert.True(t, strings.HasPrefix(line, " INFO 2024-01-02 03:04:05 [pemindahan-ba-001] step advanced"), line)
	assert.True(t, strings.HasSuffix(line, "process_id=7 step=3"), line)
}

func TestContextLoggerRoutesToRegisteredContext(t *testing.T) {
	var global, proc bufferCloser
	l := NewContextLogger(&global)
	l.AddLoggingContext("pemindahan-1", &proc)

	l.UsingCtx("pemindahan-1").Info("to context")
	l.UsingCtx("pemindahan-2").Info("to global")

	assert.Contains(t, proc.String(), "to context")
	assert.NotContains(t, global.String(), "to context")
	assert.Contains(t, global.String(), "[pemindahan-2] to global")

	l.RemoveLoggingContext("pemindahan-1")
	assert.True(t, proc.closed)
}

func TestSetLevelFromString(t *testing.T) {
	var global bufferCloser
	l := NewContextLogger(&global)

	require.NoError(t, l.SetGlobalLoggerLevelFromString("warn"))
	l.Global().Info("hidden")
	l.Global().Warn("shown")

	assert.NotContains(t, global.String(), "hidden")
	assert.Contains(t, global.String(), "shown")
	assert.Error(t, l.SetGlobalLoggerLevelFromString("loud"))
	assert.Equal(t, log.WarnLevel, l.GlobalLevel())
}

func TestLevelChangeReachesContexts(t *testing.T) {
	var global, proc bufferCloser
	l := NewContextLogger(&global)
	l.AddLoggingContext("pemindahan-1", &proc)

	require.NoError(t, l.SetGlobalLoggerLevelFromString("error"))
	l.UsingCtx("pemindahan-1").Warn("hidden")
	assert.Empty(t, proc.String())
}

func TestAddFileContext(t *testing.T) {
	var global bufferCloser
	l := NewContextLogger(&global)
	dir := filepath.Join(t.TempDir(), "migrations")

	path, err := l.AddFileContext("pemindahan-abc", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pemindahan-abc.log"), path)

	l.UsingCtx("pemindahan-abc").WithField("records", 2).Info("migration completed")
	l.RemoveLoggingContext("pemindahan-abc")
	l.UsingCtx("pemindahan-abc").Info("after release")

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "[pemindahan-abc] migration completed")
	assert.Contains(t, string(contents), "records=2")
	assert.NotContains(t, string(contents), "after release")
	assert.Contains(t, global.String(), "after release")
}

func TestSetOutputUnknownContext(t *testing.T) {
	var global, other bufferCloser
	l := NewContextLogger(&global)

	assert.Error(t, l.SetOutput("nope", &other))
	require.NoError(t, l.SetOutput(GlobalLoggerCtx, &other))
	assert.True(t, global.closed)

	l.Global().Info("moved")
	assert.Contains(t, other.String(), "moved")
}
