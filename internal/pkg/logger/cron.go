package logger

import (
	"context"

	"github.com/robfig/cron/v3"
)

// cronLogger satisfies cron.Logger so the scheduler's own messages go through zerolog.
type cronLogger struct {
	log *Logger
	ctx context.Context
}

// CronLogger adapts l for robfig/cron options and job wrappers.
func (l *Logger) CronLogger(component string) cron.Logger {
	return cronLogger{log: l, ctx: l.WithComponent(context.Background(), component)}
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug(c.log.WithFields(c.ctx, pairs(keysAndValues)), msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error(c.log.WithFields(c.ctx, pairs(keysAndValues)), msg, err)
}

func pairs(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
