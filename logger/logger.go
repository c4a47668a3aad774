// Package logger wraps zerolog with lumberjack file rotation. A fresh
// Logger is a no-op until one of the Init methods is called, so library
// code can log unconditionally.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Init(path string)
	InitMultiWriter(path string)
	InitWriter(w io.Writer)

	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)

	WithStr(key, value string) Logger
	WithBool(key string, value bool) Logger
	WithInt(key string, value int) Logger
	WithAny(key string, value any) Logger
}

type logger struct {
	base zerolog.Logger
	path string
}

func New() Logger {
	return &logger{
		base: zerolog.Nop(),
		path: "./logs/kitsunet.log",
	}
}

// Init routes log output to a rotating file at path.
func (l *logger) Init(path string) {
	l.base = zerolog.New(l.rotatingWriter(path)).
		With().
		Timestamp().
		Logger()
}

// InitMultiWriter routes log output to stdout and a rotating file at
// path.
func (l *logger) InitMultiWriter(path string) {
	multi := io.MultiWriter(os.Stdout, l.rotatingWriter(path))

	l.base = zerolog.New(multi).
		With().
		Timestamp().
		Logger()
}

// InitWriter routes log output to an arbitrary writer.
func (l *logger) InitWriter(w io.Writer) {
	l.base = zerolog.New(w).
		With().
		Timestamp().
		Logger()
}

func (l *logger) rotatingWriter(path string) io.Writer {
	if path != "" {
		l.path = path
	}

	return &lumberjack.Logger{
		Filename:   l.path,
		MaxSize:    5,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}

func (l *logger) Debug(msg string) {
	l.base.Debug().Msg(msg)
}

func (l *logger) Info(msg string) {
	l.base.Info().Msg(msg)
}

func (l *logger) Warn(msg string) {
	l.base.Warn().Msg(msg)
}

func (l *logger) Error(msg string) {
	l.base.Error().Msg(msg)
}

func (l *logger) Fatal(msg string) {
	l.base.Fatal().Msg(msg)
}

func (l *logger) WithStr(key, value string) Logger {
	return &logger{base: l.base.With().Str(key, value).Logger(), path: l.path}
}

func (l *logger) WithBool(key string, value bool) Logger {
	return &logger{base: l.base.With().Bool(key, value).Logger(), path: l.path}
}

func (l *logger) WithInt(key string, value int) Logger {
	return &logger{base: l.base.With().Int(key, value).Logger(), path: l.path}
}

func (l *logger) WithAny(key string, value any) Logger {
	return &logger{base: l.base.With().Interface(key, value).Logger(), path: l.path}
}

// LogPath resolves and creates the log directory under the user's
// home, returning the log file path inside it.
func LogPath(path string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, "kitsunet", path)

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	return filepath.Join(logDir, "kitsunet.log"), nil
}
