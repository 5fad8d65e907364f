package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logger is the process-wide sugared logger. It writes to a rotated file
// only: the TUI owns the terminal, so console output would corrupt it.
var logger = zap.NewNop().Sugar()

func logPath() (string, error) {
	if configDir != "" {
		return filepath.Join(configDir, "pixelpainter.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pixelpainter", "pixelpainter.log"), nil
}

// InitLogger sets up file logging. On failure the no-op logger stays in
// place; painting must not depend on the log sink.
func InitLogger() {
	path, err := logPath()
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), zapcore.DebugLevel)
	logger = zap.New(core).Sugar()
}

// SyncLogger flushes buffered log entries. Called on shutdown.
func SyncLogger() {
	_ = logger.Sync()
}
