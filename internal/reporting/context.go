package reporting

import (
	"context"
	"maps"
	"time"
)

type reportingMetaContextKey struct{}

// ReportingMeta is what Report attaches to errors reported with the context
type ReportingMeta struct {
	tags      map[string]string
	extras    map[string]string
	userEmail string
	startedAt time.Time
}

// MetaFromContext returns a copy of the meta in the context, safe to modify
func MetaFromContext(ctx context.Context) ReportingMeta {
	meta, ok := ctx.Value(reportingMetaContextKey{}).(ReportingMeta)
	if !ok {
		return ReportingMeta{
			tags:   make(map[string]string),
			extras: make(map[string]string),
		}
	}
	meta.tags = maps.Clone(meta.tags)
	meta.extras = maps.Clone(meta.extras)
	return meta
}

func updateMeta(ctx context.Context, update func(meta *ReportingMeta)) context.Context {
	meta := MetaFromContext(ctx)
	update(&meta)
	return context.WithValue(ctx, reportingMetaContextKey{}, meta)
}

func setStartedAtInContext(ctx context.Context, startedAt time.Time) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.startedAt = startedAt
	})
}

// AddExtrasToContext attaches extras to errors reported with the returned context
func AddExtrasToContext(ctx context.Context, extras map[string]string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.extras, extras)
	})
}

// AddTagsToContext attaches searchable tags to errors reported with the returned context
func AddTagsToContext(ctx context.Context, tags map[string]string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.tags, tags)
	})
}

// SetUserEmailInContext sets the admin the reported errors happened for
func SetUserEmailInContext(ctx context.Context, email string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.userEmail = email
	})
}
