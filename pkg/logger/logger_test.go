package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestConvertFields(t *testing.T) {
	fields := convertFields("game_day", 3, "error", errors.New("boom"), "dangling")

	assert.Len(t, fields, 2, "непарный ключ должен отбрасываться")
	assert.Equal(t, "game_day", fields[0].Key)
	assert.Equal(t, "error", fields[1].Key)
	assert.Equal(t, zapcore.ErrorType, fields[1].Type)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNopDoesNotPanic(t *testing.T) {
	l := Nop().Named("Test").With("k", "v")
	assert.NotPanics(t, func() {
		l.Info("hello", "n", 1)
		l.Error("bad", "error", errors.New("x"))
	})
}
