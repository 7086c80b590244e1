package logging

import (
	"context"
	"log/slog"
	"os"
)

type loggerContextKey struct{}

// fallbackLogger is used when nothing added a logger to the context
var fallbackLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("logger", "fallback"))

func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallbackLogger
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// AddMetaToContext adds attributes to every line logged through the returned context
func AddMetaToContext(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return AddToContext(ctx, FromContext(ctx).With(args...))
}

// AddSessionToContext tags every line logged through the returned context with the session
func AddSessionToContext(ctx context.Context, kind, id string) context.Context {
	return AddMetaToContext(ctx, slog.String("sessionKind", kind), slog.String("sessionID", id))
}
