// Package logger builds the zap logger shared by the binaries.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger for "production" or "prod" and a colored console
// logger for any other env.
func New(env string) (*zap.Logger, error) {
	config := Config(env)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("env", env)), nil
}

func Config(env string) zap.Config {
	var config zap.Config

	if IsProduction(env) {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config
}

func IsProduction(env string) bool {
	return env == "production" || env == "prod"
}
