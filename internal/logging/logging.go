// Package logging builds the application logger.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"dodo/internal/config"
)

// New builds a logger for cfg. Debug mode writes console logs to errOut;
// a configured log file receives JSON logs at the configured level through
// a rotating writer. With neither, the logger discards everything.
func New(cfg *config.Config, errOut io.Writer) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core

	if cfg.Debug {
		if errOut == nil {
			errOut = os.Stderr
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(errOut),
			zap.DebugLevel,
		))
	}

	if cfg.Log.File != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.Log.File,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     30, // days
			}),
			level,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).With(zap.String("backend", cfg.Backend)), nil
}
