// Package log provides the process-wide logger for skop.
//
// Console output goes to stderr at warn level by default; --verbose raises
// it to info. Setting SKOP_DEBUG=1 additionally writes debug-level output to
// a rotating file under ~/.skop/.
package log

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu          sync.Mutex
	logger      = zap.NewNop()
	sugar       = logger.Sugar()
	initialized bool
)

// Init configures the logger. Safe to call once; later calls are no-ops.
func Init(verbose bool) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return nil
	}
	initialized = true

	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		MessageKey:     "M",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(os.Stderr),
			consoleLevel,
		),
	}

	if os.Getenv("SKOP_DEBUG") == "1" {
		if fileCore, err := newFileCore(encoderConfig); err == nil {
			cores = append(cores, fileCore)
		}
	}

	logger = zap.New(zapcore.NewTee(cores...))
	sugar = logger.Sugar()
	return nil
}

// newFileCore builds a debug-level core writing to a rotating log file.
func newFileCore(cfg zapcore.EncoderConfig) (zapcore.Core, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	logDir := filepath.Join(home, ".skop")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "debug.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	})

	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), writer, zapcore.DebugLevel), nil
}

// Sugar returns the process logger.
func Sugar() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return sugar
}

// Sync flushes buffered entries. Called before process exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	_ = logger.Sync()
}
