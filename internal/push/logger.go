package push

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(debug bool) *zap.Logger {
	logCfg := zap.NewProductionConfig()

	logCfg.DisableStacktrace = true
	logCfg.Encoding = "json"
	logCfg.EncoderConfig.StacktraceKey = ""
	logCfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	logCfg.EncoderConfig.LevelKey = "eventLevel"
	logCfg.EncoderConfig.TimeKey = "eventTimestamp"

	logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	if debug {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}

	return logger
}
