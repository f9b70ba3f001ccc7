package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	defer InitLogger("info")

	Info("hidden")
	Warn("escrow failed", "code", 1)
	Error("store failed", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="escrow failed" code=1`)
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "source=logger_test.go:")
}
