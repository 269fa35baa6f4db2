package logger

import "context"

type ctxLoggerKey struct{}

var defaultLogger = New(DefaultConfig())

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}

// FromContext returns the context logger, falling back to Default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Default()
}
