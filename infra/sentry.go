package infra

import (
	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

func SetupSentry(dsn, env string) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:           dsn,
		EnableTracing: true,
		Environment:   env,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			if ctx.Span.Name == "GET /liveness" {
				return 0.0
			}
			if ctx.Span.Name == "POST /audit-entries" {
				return 0.05
			}
			return 0.2
		}),
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if hint != nil && event != nil && len(event.Exception) > 0 {
				originalErr := errors.UnwrapAll(hint.OriginalException)
				event.Exception[len(event.Exception)-1].Type = originalErr.Error()
			}
			return event
		},
	}); err != nil {
		panic(err)
	}
}
