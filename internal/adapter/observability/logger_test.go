package observability_test

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prsentry/prsentry/internal/adapter/observability"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()
	fn()
	return buf.String()
}

func TestLogger_HumanFormat(t *testing.T) {
	logger := observability.NewLogger(observability.LogLevelDebug, observability.LogFormatHuman)

	out := captureLog(t, func() {
		logger.Info("review started", map[string]any{"pr": 42, "repo": "octo/repo"})
	})

	assert.Contains(t, out, "[INFO] review started")
	assert.Contains(t, out, "pr=42")
	assert.Contains(t, out, "repo=octo/repo")
}

func TestLogger_JSONFormat(t *testing.T) {
	logger := observability.NewLogger(observability.LogLevelDebug, observability.LogFormatJSON)

	out := captureLog(t, func() {
		logger.Error("review failed", map[string]any{"id": "abc"})
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "review failed", entry["message"])
	assert.Equal(t, "abc", entry["id"])
}

func TestLogger_LevelThreshold(t *testing.T) {
	logger := observability.NewLogger(observability.LogLevelWarn, observability.LogFormatHuman)

	out := captureLog(t, func() {
		logger.Debug("noise", nil)
		logger.Info("noise", nil)
		logger.Warn("signal", nil)
	})

	assert.NotContains(t, out, "noise")
	assert.Contains(t, out, "signal")
}

func TestLogger_NilReceiverIsSafe(t *testing.T) {
	var logger *observability.Logger
	assert.NotPanics(t, func() {
		logger.Info("ignored", nil)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, observability.LogLevelDebug, observability.ParseLevel("debug"))
	assert.Equal(t, observability.LogLevelWarn, observability.ParseLevel("WARNING"))
	assert.Equal(t, observability.LogLevelError, observability.ParseLevel("error"))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel("anything"))
}

func TestRedactAPIKey(t *testing.T) {
	assert.Equal(t, "[REDACTED-6789]", observability.RedactAPIKey("sk-ant-123456789"))
	assert.Equal(t, "[REDACTED]", observability.RedactAPIKey("abc"))
}

func TestTruncateForLogging(t *testing.T) {
	assert.Equal(t, "short", observability.TruncateForLogging("short", 10))

	long := observability.TruncateForLogging("abcdefghij", 4)
	assert.Contains(t, long, "abcd")
	assert.Contains(t, long, "truncated")
}
