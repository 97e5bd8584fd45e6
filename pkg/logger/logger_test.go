package logger

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	log, err := New(config.LogConfig{Level: "debug", Format: "console", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	_, err = New(config.LogConfig{Level: "loud", Format: "json", OutputPath: "stdout"})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New(config.LogConfig{Level: "info", Format: "xml", OutputPath: "stdout"})
	assert.ErrorContains(t, err, "invalid log format")
}

func TestGormBridgeLogsSlowQueries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := Gorm(zap.New(core), 50*time.Millisecond)

	begin := time.Now().Add(-time.Second)
	gl.Trace(context.Background(), begin, func() (string, int64) {
		return "SELECT * FROM appointments", 3
	}, nil)
	gl.Info(context.Background(), "connected")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "gorm", entry.LoggerName)
	assert.Contains(t, entry.Message, "SLOW SQL")
}
