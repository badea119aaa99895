package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("AUTH", "user logged in", map[string]interface{}{"user_id": "u1"})
	l.Error("POST", "toggle failed", map[string]interface{}{"error": errors.New("boom")})
	l.Debug("MOOD", "classified", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "user logged in", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "AUTH", ctx["module"])
	assert.Equal(t, map[string]interface{}{"user_id": "u1"}, ctx["details"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	assert.Equal(t, map[string]interface{}{}, entries[2].ContextMap()["details"])
}

func TestZapLogger_LevelToggle(t *testing.T) {
	dir := t.TempDir()

	quiet := NewZapLogger(Options{FilePath: dir + "/quiet.log"})
	assert.False(t, quiet.logger.Core().Enabled(zapcore.DebugLevel))

	verbose := NewZapLogger(Options{FilePath: dir + "/verbose.log", Verbose: true})
	assert.True(t, verbose.logger.Core().Enabled(zapcore.DebugLevel))
}
