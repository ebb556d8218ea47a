package badger

import (
	"strings"

	"go.uber.org/zap"
)

// zapLogger routes badger's internal messages into zap.
type zapLogger struct {
	s *zap.SugaredLogger
}

func newZapLogger(l *zap.Logger) *zapLogger {
	return &zapLogger{s: l.Named("badger").Sugar()}
}

// Errorf implements badger.Logger.
func (z *zapLogger) Errorf(format string, args ...any) {
	z.s.Errorf(strings.TrimSuffix(format, "\n"), args...)
}

// Warningf implements badger.Logger.
func (z *zapLogger) Warningf(format string, args ...any) {
	z.s.Warnf(strings.TrimSuffix(format, "\n"), args...)
}

// Infof implements badger.Logger.
func (z *zapLogger) Infof(format string, args ...any) {
	z.s.Infof(strings.TrimSuffix(format, "\n"), args...)
}

// Debugf implements badger.Logger.
func (z *zapLogger) Debugf(format string, args ...any) {
	z.s.Debugf(strings.TrimSuffix(format, "\n"), args...)
}
