// Package log provides a global logger with configurable logging level. Messages are always written
// to stderr because stdout carries the stdio protocol stream.

package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelNone    Level = iota // Disables logging.
	LevelError                // Logs anomalies that are not expected to occur during normal use.
	LevelWarning              // Logs anomalies that are expected to occur occasionally during normal use.
	LevelInfo                 // Logs major events.
	LevelDebug                // Logs detailed IO
)

var zapLevels = map[Level]zapcore.Level{
	LevelNone:    zapcore.FatalLevel + 1,
	LevelError:   zapcore.ErrorLevel,
	LevelWarning: zapcore.WarnLevel,
	LevelInfo:    zapcore.InfoLevel,
	LevelDebug:   zapcore.DebugLevel,
}

// output is the sink shared by every logger derived from this package. Swapping its writer
// redirects loggers that were created earlier.
type output struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

func (o *output) Sync() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if f, ok := o.w.(*os.File); ok {
		// Syncing a terminal returns EINVAL on some platforms.
		_ = f.Sync()
	}
	return nil
}

var (
	sink        = &output{w: os.Stderr}
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	std         = newLogger()

	levelMutex  sync.Mutex
	globalLevel = LevelInfo
)

func newLogger() *Logger {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, atomicLevel)
	return &Logger{sugar: zap.New(core).Sugar()}
}

// SetLevel changes the level of every logger in the process.
func SetLevel(level Level) {
	levelMutex.Lock()
	defer levelMutex.Unlock()
	zl, ok := zapLevels[level]
	if !ok {
		zl = zapcore.DebugLevel
	}
	globalLevel = level
	atomicLevel.SetLevel(zl)
}

// GetLevel returns the level last passed to SetLevel.
func GetLevel() Level {
	levelMutex.Lock()
	defer levelMutex.Unlock()
	return globalLevel
}

// SetOutput redirects log output. Intended for tests.
func SetOutput(w io.Writer) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.w = w
}

// Logger is a leveled logger that carries structured context.
type Logger struct {
	sugar *zap.SugaredLogger
}

// With returns a Logger that attaches keysAndValues to every message.
func With(keysAndValues ...interface{}) *Logger {
	return std.With(keysAndValues...)
}

// With returns a child of l that attaches keysAndValues to every message.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(format string, a ...interface{}) {
	l.sugar.Debugf(format, a...)
}

func (l *Logger) Info(format string, a ...interface{}) {
	l.sugar.Infof(format, a...)
}

func (l *Logger) Warning(format string, a ...interface{}) {
	l.sugar.Warnf(format, a...)
}

func (l *Logger) Error(format string, a ...interface{}) {
	l.sugar.Errorf(format, a...)
}

func Debug(format string, a ...interface{}) {
	std.Debug(format, a...)
}
func Info(format string, a ...interface{}) {
	std.Info(format, a...)
}
func Warning(format string, a ...interface{}) {
	std.Warning(format, a...)
}
func Error(format string, a ...interface{}) {
	std.Error(format, a...)
}
