package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sadopc/newlife/internal/structures"
)

// TypeEnum tags a log line with the subsystem that wrote it.
type TypeEnum int

const (
	TypeApp = iota
	TypeStore
	TypeGateway
)

func (t TypeEnum) String() string {
	switch t {
	case TypeStore:
		return "store"
	case TypeGateway:
		return "gateway"
	default:
		return "app"
	}
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	logger zerolog.Logger
	closer io.Closer
}

// NewLogProvider writes JSON lines to a size-rotated file. The terminal
// belongs to the UI, so nothing is logged to stdout.
func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(conf.Logger.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	out := &lumberjack.Logger{
		Filename:   conf.Logger.File,
		MaxSize:    max(conf.Logger.MaxSizeMB, 1),
		MaxBackups: conf.Logger.MaxBackups,
		MaxAge:     conf.Logger.MaxAgeDays,
	}
	return &LogProvider{
		logger: zerolog.New(out).Level(level).With().Timestamp().Str("app", conf.AppName).Logger(),
		closer: out,
	}, nil
}

func (l *LogProvider) event(e *zerolog.Event, t TypeEnum, format string, args ...interface{}) {
	e.Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.event(l.logger.Error(), t, format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.event(l.logger.Warn(), t, format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.event(l.logger.Info(), t, format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.event(l.logger.Debug(), t, format, args...)
}

func (l *LogProvider) Close() {
	_ = l.closer.Close()
}

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (NopLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (NopLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (NopLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (NopLogger) Close()                                        {}
