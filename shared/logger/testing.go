package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// NewTest returns a logger that records every entry, verbose included.
func NewTest() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(verboseZapLevel)
	return FromZap(zap.New(core)), logs
}

// TestContext returns a context carrying a recording logger.
func TestContext() (context.Context, *observer.ObservedLogs) {
	l, logs := NewTest()
	return WithLogger(context.Background(), l), logs
}
