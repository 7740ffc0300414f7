package app

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerFormats(t *testing.T) {
	jsonLogger := NewLogger(&Config{LogFormat: "json"})
	_, ok := jsonLogger.Handler().(*slog.JSONHandler)
	assert.True(t, ok, "LOG_FORMAT=json selects the JSON handler")

	prettyLogger := NewLogger(&Config{LogFormat: "pretty"})
	_, ok = prettyLogger.Handler().(*slog.TextHandler)
	assert.True(t, ok, "the default format selects the text handler")

	nilLogger := NewLogger(nil)
	_, ok = nilLogger.Handler().(*slog.TextHandler)
	assert.True(t, ok)
}
