package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// gormLogger satisfies gorm's logger.Interface. SQL traces go out at debug
// level and only when the mode is gormlogger.Info.
type gormLogger struct {
	log           *Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// GormLogger adapts l for gorm.Config. Missing records are not reported as
// errors; repositories translate them.
func (l *Logger) GormLogger(level gormlogger.LogLevel, slowThreshold time.Duration) gormlogger.Interface {
	return gormLogger{log: l, level: level, slowThreshold: slowThreshold}
}

func (g gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	g.level = level
	return g
}

func (g gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.log.Info(g.ctx(ctx), fmt.Sprintf(msg, args...))
	}
}

func (g gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(g.ctx(ctx), fmt.Sprintf(msg, args...), nil)
	}
}

func (g gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.log.Error(g.ctx(ctx), fmt.Sprintf(msg, args...), nil)
	}
}

func (g gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	statement := func() context.Context {
		sql, rows := fc()
		return g.log.WithFields(g.ctx(ctx), map[string]any{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}

	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		g.log.Error(statement(), "sql statement failed", err)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		g.log.Warn(statement(), "slow sql statement", nil)
	case g.level >= gormlogger.Info:
		g.log.Debug(statement(), "sql statement")
	}
}

func (g gormLogger) ctx(ctx context.Context) context.Context {
	return g.log.WithField(ctx, "source", "gorm")
}
