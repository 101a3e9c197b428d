package observability

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"catalog-scraper/internal/config"
)

// Logger is a leveled key/value logger. Output goes to stderr and, when a log
// path is configured, to a size-rotated file.
type Logger struct {
	l      *log.Logger
	closer io.Closer
}

func NewLogger(cfg config.ObservabilityConfig, verbose bool) (*Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if verbose {
		level = log.DebugLevel
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)
	if cfg.LogPath != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, rotating)
		closer = rotating
	}

	formatter := log.TextFormatter
	if cfg.LogFormat == "json" {
		formatter = log.JSONFormatter
	}

	l := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
		Formatter:       formatter,
	})

	return &Logger{l: l, closer: closer}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{l: log.NewWithOptions(io.Discard, log.Options{})}
}

func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{l: l.l.With(fields...), closer: l.closer}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.l.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.l.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.l.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.l.Error(msg, fields...)
}

// Close flushes and closes the rotating file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
