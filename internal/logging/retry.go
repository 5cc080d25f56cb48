package logging

import (
	"github.com/hashicorp/go-retryablehttp"
)

// retryLogger implements the retryablehttp.LeveledLogger interface on top of Logger.
// Only warnings and errors are logged; the per-attempt info/debug lines are noise.
type retryLogger struct {
	l *Logger
}

// RetryLogger adapts l for retryablehttp.Client.Logger.
func RetryLogger(l *Logger) retryablehttp.LeveledLogger {
	return &retryLogger{l: l}
}

func (r *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	r.l.Error().Fields(keysAndValues).Msg("[RETRY] " + msg)
}

func (r *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (r *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.l.Debug().Fields(keysAndValues).Msg("[RETRY] " + msg)
}

func (r *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.l.Warn().Fields(keysAndValues).Msg("[RETRY] " + msg)
}
