package logging

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// NewTracingLogHandler adds the active trace and span to log records.
//
// With a Google Cloud project the fields are the ones Cloud Logging links to Cloud Trace.
// Without one they are plain traceID/spanID attributes.
//
// NOTE: Only the *Context slog methods carry the span
func NewTracingLogHandler(base slog.Handler, googleCloudProject string) slog.Handler {
	return &tracingLogHandler{base: base, project: googleCloudProject}
}

type tracingLogHandler struct {
	base    slog.Handler
	project string
}

func (h *tracingLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *tracingLogHandler) Handle(ctx context.Context, r slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return h.base.Handle(ctx, r)
	}

	if h.project == "" {
		r.AddAttrs(
			slog.String("traceID", sc.TraceID().String()),
			slog.String("spanID", sc.SpanID().String()),
		)
		return h.base.Handle(ctx, r)
	}

	// https://docs.cloud.google.com/logging/docs/agent/logging/configuration#special-fields
	r.AddAttrs(
		slog.String("logging.googleapis.com/trace", fmt.Sprintf("projects/%s/traces/%s", h.project, sc.TraceID())),
		slog.String("logging.googleapis.com/spanId", sc.SpanID().String()),
		slog.Bool("logging.googleapis.com/trace_sampled", sc.TraceFlags().IsSampled()),
	)
	return h.base.Handle(ctx, r)
}

func (h *tracingLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &tracingLogHandler{base: h.base.WithAttrs(attrs), project: h.project}
}

func (h *tracingLogHandler) WithGroup(name string) slog.Handler {
	return &tracingLogHandler{base: h.base.WithGroup(name), project: h.project}
}
