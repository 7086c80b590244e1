package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/Amund211/gamenight/internal/config"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

const flushTimeout = 5 * time.Second

// Parts of error messages that vary between otherwise identical errors
var volatileParts = []struct {
	rx          *regexp.Regexp
	placeholder string
}{
	{regexp.MustCompile(`[0-9a-f]{8}-?([0-9a-f]{4}-?){3}[0-9a-f]{12}`), "<uuid>"},
	{regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`), "<host>"},
	{regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`), "<email>"},
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "<date>"},
}

// sanitizeError strips ids out of the error so similar errors group together
func sanitizeError(err string) string {
	for _, part := range volatileParts {
		err = part.rx.ReplaceAllString(err, part.placeholder)
	}
	return err
}

// Report logs err and sends it to Sentry along with the meta stored in ctx.
func Report(ctx context.Context, err error, extras ...map[string]string) {
	if err == nil {
		err = errors.New("No error provided")
	}

	logger := logging.FromContext(ctx)
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		logger.WarnContext(ctx, "Failed to get Sentry hub from context", "error", err, "extras", extras)
		return
	}

	logger.ErrorContext(ctx, "Reporting error to Sentry", slog.String("error", err.Error()), slog.Any("extras", extras))

	hub.WithScope(func(scope *sentry.Scope) {
		applyMeta(scope, MetaFromContext(ctx))
		for _, extra := range extras {
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}
		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}

func applyMeta(scope *sentry.Scope, meta ReportingMeta) {
	scope.SetTags(meta.tags)
	for key, value := range meta.extras {
		scope.SetExtra(key, value)
	}
	if meta.userEmail != "" {
		scope.SetUser(sentry.User{Email: meta.userEmail})
	}
	if !meta.startedAt.IsZero() {
		scope.SetExtra("secondsSinceStart", time.Since(meta.startedAt).Seconds())
	}
}

// requestMetaMiddleware tags the request so reports can be traced back to the route
func requestMetaMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userAgent := r.UserAgent()
		if userAgent == "" {
			userAgent = "<missing>"
		}

		ctx := AddTagsToContext(r.Context(), map[string]string{
			"userAgent":  userAgent,
			"methodPath": fmt.Sprintf("%s %s", r.Method, r.URL.Path),
		})
		ctx = setStartedAtInContext(ctx, time.Now())

		next(w, r.WithContext(ctx))
	}
}

func initSentryMiddleware(dsn string, environment string) (func(http.HandlerFunc) http.HandlerFunc, func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		EnableTracing:    true,
		TracesSampleRate: 1.0 / 100.0,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sentry: %w", err)
	}

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})

	middleware := func(next http.HandlerFunc) http.HandlerFunc {
		return sentryHandler.HandleFunc(requestMetaMiddleware(next))
	}
	flush := func() {
		sentry.Flush(flushTimeout)
	}

	return middleware, flush, nil
}

// NewSentryMiddlewareOrMock sets up Sentry, or a no-op middleware in development without a DSN
func NewSentryMiddlewareOrMock(conf config.Config) (func(http.HandlerFunc) http.HandlerFunc, func(), error) {
	if dsn := conf.SentryDSN(); dsn != "" {
		return initSentryMiddleware(dsn, conf.Environment())
	}

	if !conf.IsDevelopment() {
		return nil, nil, fmt.Errorf("%w: SENTRY_DSN is required outside development", config.ErrMissingRequiredValue)
	}

	noop := func(next http.HandlerFunc) http.HandlerFunc {
		return next
	}
	return noop, func() {}, nil
}
