// Package logger wraps zap with receipt-parser's levels, intents and pluggable handler.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FrameworkDescription prefixes every console log line.
const FrameworkDescription = "receipt-parser"

// Handler receives every enabled log entry instead of the default console output.
type Handler func(level Level, message, file, function string, line int)

// Config controls how a Logger is built.
type Config struct {
	Level   Level
	Verbose bool // include file, function and line
	JSON    bool // one JSON object per line instead of console text
	Output  io.Writer
	Handler Handler
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Logger is a leveled logger backed by zap.
type Logger struct {
	z     *zap.Logger
	level zap.AtomicLevel
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	level := zap.NewAtomicLevelAt(cfg.Level.zapLevel())

	var core zapcore.Core
	if cfg.Handler != nil {
		core = &handlerCore{LevelEnabler: level, handler: cfg.Handler}
	} else {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		core = zapcore.NewCore(newEncoder(cfg), zapcore.Lock(zapcore.AddSync(out)), level)
	}

	opts := []zap.Option{zap.AddCallerSkip(2)}
	if cfg.Verbose || cfg.Handler != nil {
		opts = append(opts, zap.AddCaller())
	}
	return &Logger{z: zap.New(core, opts...), level: level}
}

// FromZap wraps an existing zap logger, e.g. a zaptest observer.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{z: z.WithOptions(zap.AddCallerSkip(2)), level: zap.NewAtomicLevelAt(verboseZapLevel)}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

func newEncoder(cfg Config) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      encodeLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		ConsoleSeparator: " ",
		LineEnding:       zapcore.DefaultLineEnding,
	}
	if cfg.Verbose {
		encCfg.CallerKey = "caller"
		encCfg.FunctionKey = "func"
		encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	}
	if cfg.JSON {
		encCfg.TimeKey = "ts"
		encCfg.NameKey = "logger"
		encCfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(levelFromZap(l).String())
		}
		return zapcore.NewJSONEncoder(encCfg)
	}
	return zapcore.NewConsoleEncoder(encCfg)
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + FrameworkDescription + "] - " + levelFromZap(l).String() + ":")
}

// SetLevel changes the minimum enabled level.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

// Enabled reports whether messages at level would be logged.
func (l *Logger) Enabled(level Level) bool {
	return l.z.Core().Enabled(level.zapLevel())
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...), level: l.level}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func (l *Logger) Verbose(msg string, fields ...zap.Field) {
	l.log(LevelVerbose, IntentVerbose, msg, fields)
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.log(LevelDebug, IntentInfo, msg, fields)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.log(LevelInfo, IntentInfo, msg, fields)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.log(LevelWarn, IntentWarning, msg, fields)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.log(LevelError, IntentRCError, msg, fields)
}

func (l *Logger) AppleError(msg string, fields ...zap.Field) {
	l.log(LevelError, IntentAppleError, msg, fields)
}

func (l *Logger) AppleWarning(msg string, fields ...zap.Field) {
	l.log(LevelWarn, IntentAppleError, msg, fields)
}

func (l *Logger) Purchase(msg string, fields ...zap.Field) {
	l.log(LevelInfo, IntentPurchase, msg, fields)
}

func (l *Logger) RCSuccess(msg string, fields ...zap.Field) {
	l.log(LevelDebug, IntentRCSuccess, msg, fields)
}

func (l *Logger) User(msg string, fields ...zap.Field) {
	l.log(LevelDebug, IntentUser, msg, fields)
}

// Log writes msg at level, prefixed by the intent.
func (l *Logger) Log(level Level, intent Intent, msg string, fields ...zap.Field) {
	l.log(level, intent, msg, fields)
}

func (l *Logger) log(level Level, intent Intent, msg string, fields []zap.Field) {
	zl := level.zapLevel()
	if !l.z.Core().Enabled(zl) {
		return
	}
	l.z.Log(zl, intent.decorate(msg), fields...)
}
