package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File names served by the API under /pinger and /app.
const (
	PingerLogName = "pinger.log"
	AppLogName    = "app.log"
)

type Options struct {
	// Console also writes entries to stderr.
	Console bool
	Level   zapcore.Level
}

// NewLogger returns a JSON logger writing to logDir/fileName through a
// rolling lumberjack file.
func NewLogger(logDir, fileName string, opts Options) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, opts.Level)
	if opts.Console {
		console := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), opts.Level)
		core = zapcore.NewTee(core, console)
	}
	return zap.New(core), nil
}
