package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is a log verbosity level. Levels are ordered from most to least verbose.
type Level int

const (
	LevelVerbose Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// verboseZapLevel sits below zap's debug level.
const verboseZapLevel = zapcore.DebugLevel - 1

// Levels lists every level in order.
var Levels = []Level{LevelVerbose, LevelDebug, LevelInfo, LevelWarn, LevelError}

func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "VERBOSE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose", "trace":
		return LevelVerbose, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelVerbose:
		return verboseZapLevel
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func levelFromZap(zl zapcore.Level) Level {
	switch {
	case zl <= verboseZapLevel:
		return LevelVerbose
	case zl == zapcore.DebugLevel:
		return LevelDebug
	case zl == zapcore.InfoLevel:
		return LevelInfo
	case zl == zapcore.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}
