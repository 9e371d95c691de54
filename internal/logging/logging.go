// Package logging builds the slog loggers used across plantsim. Output goes
// to the console, to a size-rotated file, or both; the file can also be
// rotated on a cron schedule such as "@daily" or "0 0 * * *".
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level          string `yaml:"level"`
	Format         string `yaml:"format"`
	Console        bool   `yaml:"console"`
	Filename       string `yaml:"filename"`
	Append         bool   `yaml:"append"`
	RotateSchedule string `yaml:"rotate_schedule"`
	MaxSize        int    `yaml:"max_size"`
	MaxBackups     int    `yaml:"max_backups"`
	MaxAge         int    `yaml:"max_age"`
	Compress       bool   `yaml:"compress"`
	UTC            bool   `yaml:"utc"`
}

func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Format:  "text",
		Console: true,
		Append:  true,
		MaxSize: 10,
	}
}

// Logger is a slog.Logger that owns its output file and rotation schedule.
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
	cron *cron.Cron
}

// New builds a logger from cfg. Console output is written to console,
// normally os.Stderr since stdout may carry protocol traffic.
func New(cfg Config, console io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := &Logger{}
	var writers []io.Writer
	if cfg.Console && console != nil {
		writers = append(writers, console)
	}
	if cfg.Filename != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  !cfg.UTC,
		}
		if !cfg.Append {
			if err := l.file.Rotate(); err != nil {
				return nil, fmt.Errorf("rotate %s: %w", cfg.Filename, err)
			}
		}
		if cfg.RotateSchedule != "" {
			l.cron = cron.New()
			if _, err := l.cron.AddFunc(cfg.RotateSchedule, func() { l.file.Rotate() }); err != nil {
				l.file.Close()
				return nil, fmt.Errorf("rotate schedule %q: %w", cfg.RotateSchedule, err)
			}
			l.cron.Start()
		}
		writers = append(writers, l.file)
	}

	var h slog.Handler
	switch {
	case len(writers) == 0:
		h = slog.DiscardHandler
	case strings.EqualFold(cfg.Format, "json"):
		h = slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	case cfg.Format == "" || strings.EqualFold(cfg.Format, "text"):
		h = slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	default:
		l.Close()
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	l.Logger = slog.New(h)
	return l, nil
}

// Rotate closes the current log file and starts a new one. It is a no-op
// for console-only loggers.
func (l *Logger) Rotate() error {
	if l.file == nil {
		return nil
	}
	return l.file.Rotate()
}

func (l *Logger) Close() error {
	if l.cron != nil {
		<-l.cron.Stop().Done()
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

var errUnknownLevel = errors.New("unknown log level")

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnknownLevel, s)
}
