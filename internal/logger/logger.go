package logger

import (
	"fmt"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Staging and production, or
// logging.format "json", get sampled JSON lines with ISO8601 timestamps.
// Everything else gets a colored console encoder without stack traces below error.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.Format, "json") || appCfg.IsProductionLike() {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zapCfg.DisableStacktrace = true
	}

	zapCfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	zapCfg.InitialFields = map[string]interface{}{
		"service": appCfg.Name,
		"env":     appCfg.Environment,
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// ParseLevel maps logging.level to a zap level. "warning" is accepted for warn;
// anything unknown logs at info.
func ParseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}
