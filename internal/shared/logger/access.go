package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewAccessLogger builds the zap logger used for HTTP access lines.
// It follows the same LOG_FORMAT/ENVIRONMENT switch as the application logger.
func NewAccessLogger() (*zap.Logger, error) {
	var cfg zap.Config
	if isStructuredOutput() {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stdout"}

	return cfg.Build(zap.Fields(zap.String("component", "access")))
}
