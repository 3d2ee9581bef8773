package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm/logger"
)

// zapWriter hands gorm's formatted lines to zap. gorm filters by its own
// level first, so every line it prints is logged at that threshold.
type zapWriter struct {
	log   *zap.Logger
	level zapcore.Level
}

func (w zapWriter) Printf(format string, args ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	if ce := w.log.Check(w.level, msg); ce != nil {
		ce.Write(zap.String("component", "gorm"))
	}
}

// newLogger maps the app log level onto gorm's. Missing rows are expected
// on every 404 and unknown login, so they are not reported.
func newLogger(l *zap.Logger, logLevel string) logger.Interface {
	level, zl := logger.Warn, zapcore.WarnLevel
	switch logLevel {
	case "debug":
		level, zl = logger.Info, zapcore.DebugLevel
	case "error":
		level, zl = logger.Error, zapcore.ErrorLevel
	}

	return logger.New(zapWriter{log: l, level: zl}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
