package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until one of the
// Init functions runs.
var Log = zap.NewNop().Sugar()

const serviceName = "storefront"

// Init picks the production or development logger for the given environment
func Init(env string) {
	if env == "production" {
		InitLogger()
		return
	}
	InitLoggerDev()
}

// InitLogger initializes the global logger
func InitLogger() {
	config := zap.NewProductionConfig()
	config.InitialFields = map[string]interface{}{"service": serviceName}

	// Set more readable time format
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	Log = logger.Sugar()
}

// InitLoggerDev initializes logger in development mode (more readable output)
func InitLoggerDev() {
	config := zap.NewDevelopmentConfig()

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	Log = logger.Sugar()
}

// Sync flushes buffered logs
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
