package logger

import "go.uber.org/zap/zapcore"

// handlerCore forwards entries to a Handler.
type handlerCore struct {
	zapcore.LevelEnabler
	handler Handler
}

func (c *handlerCore) With([]zapcore.Field) zapcore.Core {
	return c
}

func (c *handlerCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *handlerCore) Write(ent zapcore.Entry, _ []zapcore.Field) error {
	c.handler(levelFromZap(ent.Level), ent.Message, ent.Caller.File, ent.Caller.Function, ent.Caller.Line)
	return nil
}

func (c *handlerCore) Sync() error {
	return nil
}
