package logger

import "github.com/robfig/cron/v3"

// cronLogger adapts Logger to cron.Logger
type cronLogger struct {
	l *Logger
}

// CronLogger returns a cron.Logger writing through l. cron logs every
// schedule and wake up at Info, so those go to debug here.
func (l *Logger) CronLogger() cron.Logger {
	return cronLogger{l: l.With("component", "cron")}
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
