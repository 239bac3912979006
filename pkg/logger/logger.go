package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the key-value logger handed to use-cases.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	mu     sync.RWMutex
	global *zap.SugaredLogger
)

func init() {
	global = build(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
}

// Init rebuilds the process logger once configuration is loaded.
func Init(environment, level string) {
	l := build(environment, level)

	mu.Lock()
	old := global
	global = l
	mu.Unlock()

	_ = old.Sync()
}

func build(environment, level string) *zap.SugaredLogger {
	var cfg zap.Config
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil && level != "" {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Info(format string, v ...interface{}) {
	current().Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	current().Warnf(format, v...)
}

// Fatal logs and exits the process.
func Fatal(format string, v ...interface{}) {
	current().Fatalf(format, v...)
}

func Sync() {
	_ = current().Sync()
}

type zapLogger struct {
	component string
}

// Named returns a key-value Logger that tags every entry with a component name.
func Named(component string) Logger {
	return &zapLogger{component: component}
}

func (l *zapLogger) sugar() *zap.SugaredLogger {
	return current().With("component", l.component)
}

func (l *zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar().Debugw(msg, keysAndValues...)
}

func (l *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar().Infow(msg, keysAndValues...)
}

func (l *zapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar().Warnw(msg, keysAndValues...)
}

func (l *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar().Errorw(msg, keysAndValues...)
}

type nopLogger struct{}

// Nop discards everything; handy in tests.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
