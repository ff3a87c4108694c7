package sentry

import (
	"time"

	sentry "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Init configures the global Sentry client. An empty dsn leaves Sentry
// disabled; capture calls then become no-ops.
func Init(dsn, release string) error {
	if dsn == "" {
		log.Debug("SENTRY_DSN not set, error reporting disabled")
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		TracesSampleRate: 1.0,
	})
}

func GetSentryGin() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{Repanic: true})
}

func ReportError(err error) {
	sentry.CaptureException(err)
}

func SetContext(name string, value map[string]interface{}) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetContext(name, value)
	})
}

// Flush waits for buffered events to be sent before the process exits.
func Flush() {
	sentry.Flush(2 * time.Second)
}
