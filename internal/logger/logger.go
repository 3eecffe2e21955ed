package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger is a chainable wrapper around slog that carries the package,
// file and function context of the call site. Err/Error variants return
// the error they log so call sites can `return log.Err(...)` directly.
type Logger struct {
	logger   *slog.Logger
	pkg      string
	file     string
	function string
}

func New(pkg string) Logger {
	return Logger{
		logger: slog.Default(),
		pkg:    pkg,
	}
}

func (l Logger) File(file string) Logger {
	l.file = file
	return l
}

func (l Logger) Function(function string) Logger {
	l.function = function
	return l
}

func (l Logger) context() []any {
	args := []any{"package", l.pkg}
	if l.file != "" {
		args = append(args, "file", l.file)
	}
	if l.function != "" {
		args = append(args, "function", l.function)
	}
	return args
}

func (l Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, append(l.context(), args...)...)
}

func (l Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, append(l.context(), args...)...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, append(l.context(), args...)...)
}

// Er logs an error without returning it.
func (l Logger) Er(msg string, err error, args ...any) {
	l.logger.Error(msg, append(append(l.context(), "error", err), args...)...)
}

// ErMsg logs an error message without returning it.
func (l Logger) ErMsg(msg string, args ...any) {
	l.logger.Error(msg, append(l.context(), args...)...)
}

// Err logs and returns the error wrapped with msg.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.Er(msg, err, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Error logs and returns a new error built from msg.
func (l Logger) Error(msg string, args ...any) error {
	l.ErMsg(msg, args...)
	return fmt.Errorf("%s", msg)
}

// ErrMsg is Error without structured args.
func (l Logger) ErrMsg(msg string) error {
	l.ErMsg(msg)
	return fmt.Errorf("%s", msg)
}

// Setup installs the process-wide slog handler. Text in development,
// JSON elsewhere.
func Setup(environment string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if environment == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
