package calculation

import "go.uber.org/zap"

// Logger is a minimal logging interface for the simulation engine.
// Implementations should be fast; the default is a no-op.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no output.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...any) {}
func (NopLogger) Infof(format string, args ...any)  {}
func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}

// ZapLogger adapts a zap sugared logger to the engine's Logger interface.
type ZapLogger struct {
	S *zap.SugaredLogger
}

// NewZapLogger wraps l; a nil l yields a logger that drops everything.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return &ZapLogger{S: l.Sugar()}
}

func (z *ZapLogger) Debugf(format string, args ...any) { z.S.Debugf(format, args...) }
func (z *ZapLogger) Infof(format string, args ...any)  { z.S.Infof(format, args...) }
func (z *ZapLogger) Warnf(format string, args ...any)  { z.S.Warnf(format, args...) }
func (z *ZapLogger) Errorf(format string, args ...any) { z.S.Errorf(format, args...) }
