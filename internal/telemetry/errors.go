package telemetry

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/redirector/pkg/build"
)

var log = logging.Logger("telemetry")

// SetupErrorReporting configures the Sentry SDK for error reporting. It does
// nothing when dsn is empty, leaving ReportError as a no-op.
func SetupErrorReporting(dsn string, environment string) {
	if dsn == "" {
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     build.Version,
		Transport:   sentry.NewHTTPSyncTransport(),
	})
	if err != nil {
		log.Errorf("sentry.Init: %s", err)
	}
}

// ReportError reports an error to Sentry
func ReportError(err error) {
	sentry.CaptureException(err)
}

// WrapHandler adds panic and error capture to an HTTP handler.
func WrapHandler(handler http.Handler) http.Handler {
	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return sentryHandler.Handle(handler)
}
