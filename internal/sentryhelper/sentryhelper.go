// Package sentryhelper wraps optional sentry reporting. Every function is a
// no-op until Init succeeds with a non-empty DSN.
package sentryhelper

import (
	"log/slog"
	"sync/atomic"
	"time"

	sentry "github.com/getsentry/sentry-go"
)

var enabled atomic.Bool

func Init(dsn, release string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	}); err != nil {
		return err
	}
	enabled.Store(true)
	slog.Debug("sentry enabled")
	return nil
}

func Enabled() bool { return enabled.Load() }

// Capture reports err with the given tags.
func Capture(err error, tags map[string]string) {
	if err == nil || !enabled.Load() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

func Flush() {
	if enabled.Load() {
		sentry.Flush(2 * time.Second)
	}
}
