// Package logger provides structured logging using zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var globalLogger zerolog.Logger

type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	File   string `yaml:"file"`
	// Rotation limits for File, in megabytes, backups and days.
	MaxSize    int  `yaml:"max_size"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAge     int  `yaml:"max_age"`
	Compress   bool `yaml:"compress"`
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

func init() {
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init replaces the global logger. Records go to stderr and, when cfg.File is
// set, to a rotating JSON file as well.
func Init(cfg Config) (io.Closer, error) {
	return InitWriter(cfg, os.Stderr)
}

// InitWriter is Init with an explicit terminal writer.
func InitWriter(cfg Config, out io.Writer) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var term io.Writer
	switch cfg.Format {
	case "", "console":
		term = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	case "json":
		term = out
	default:
		return nil, fmt.Errorf("invalid log format %q (want console or json)", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	sink := term
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		closer = lj
		sink = zerolog.MultiLevelWriter(term, lj)
	}

	globalLogger = zerolog.New(sink).Level(level).With().Timestamp().Logger()
	log.Logger = globalLogger
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func GetLogger() zerolog.Logger {
	return globalLogger
}

func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}
