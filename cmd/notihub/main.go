package main

import (
	"context"
	_ "embed"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

//go:embed local.yaml
var configFile []byte

func main() {
	logger, closeLog := newLogger(os.Getenv("LOG_LEVEL"), os.Getenv("NOTIHUB_LOG_FILE"), os.Stderr)
	slog.SetDefault(logger)

	err := newRootCommand(logger, os.Stdout).ExecuteContext(context.Background())
	if err != nil {
		logger.Error("Command failed", "err", err)
	}
	_ = closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "info", "INFO":
		return slog.LevelInfo
	case "warn", "WARN":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger writes JSON logs to fallback, or to a rotated file when logFile
// is set. The returned func closes the file.
func newLogger(level, logFile string, fallback io.Writer) (*slog.Logger, func() error) {
	w := fallback
	closeFn := func() error { return nil }
	if logFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		w, closeFn = rotated, rotated.Close
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel(level),
	})).With("service", "notihub")
	return logger, closeFn
}
