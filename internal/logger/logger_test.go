package logger_test

import (
	"testing"

	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" ERROR ", zapcore.ErrorLevel},
		{"warning", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "warn", Format: "json"},
		&config.AppConfig{Name: "bakery-api", Environment: "development"},
	)
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_ConsoleInDevelopment(t *testing.T) {
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "debug", Format: "console"},
		&config.AppConfig{Name: "bakery-api", Environment: "development"},
	)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
