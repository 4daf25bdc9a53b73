package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logging owns the process logger: text on the console and, when a log file
// is configured, JSON lines in that file. Both outputs share one level, which
// can be changed after setup without rebuilding the handlers.
type Logging struct {
	level  *slog.LevelVar
	logger *slog.Logger
	file   *os.File
}

func NewLogging(logFile string, level slog.Level, console io.Writer) *Logging {
	l := &Logging{level: &slog.LevelVar{}}
	l.level.Set(level)

	opts := &slog.HandlerOptions{Level: l.level}
	consoleHandler := slog.NewTextHandler(console, opts)
	l.logger = slog.New(consoleHandler)

	if logFile == "" {
		return l
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.logger.Warn("cannot open log file, logging to console only", "file", logFile, "error", err)
		return l
	}

	l.file = file
	l.logger = slog.New(slogmulti.Fanout(consoleHandler, slog.NewJSONHandler(file, opts)))
	return l
}

func (l *Logging) Logger() *slog.Logger {
	return l.logger
}

func (l *Logging) Level() slog.Level {
	return l.level.Level()
}

// SetLevel applies to every output, including the log file.
func (l *Logging) SetLevel(level slog.Level) {
	l.level.Set(level)
}

func (l *Logging) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
