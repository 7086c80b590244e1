package subscriptionrepository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const collection = "subscriptions"

type Repository struct {
	store documentstore.Store

	tracer trace.Tracer
}

func New(store documentstore.Store) *Repository {
	tracer := otel.Tracer("gamenight/subscriptionrepository")

	return &Repository{
		store: store,

		tracer: tracer,
	}
}

type storedSubscription struct {
	PlayerIDs []string `json:"playerIds" bson:"playerIds"`
}

func (r *Repository) startSpan(ctx context.Context, name string, weekday time.Weekday) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("subscription.weekday", domain.WeekdayKey(weekday)),
	))
}

func (r *Repository) GetSubscription(ctx context.Context, weekday time.Weekday) (domain.Subscription, error) {
	ctx, span := r.startSpan(ctx, "Repository.GetSubscription", weekday)
	defer span.End()

	var stored storedSubscription
	err := r.store.Get(ctx, collection, domain.WeekdayKey(weekday), &stored)
	if errors.Is(err, documentstore.ErrNotFound) {
		return domain.Subscription{}, fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, weekday)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return domain.Subscription{}, fmt.Errorf("failed to get subscription: %w", err)
	}

	return domain.NewSubscription(weekday, stored.PlayerIDs), nil
}

// PutSubscription replaces the subscription for the weekday
func (r *Repository) PutSubscription(ctx context.Context, subscription domain.Subscription) error {
	ctx, span := r.startSpan(ctx, "Repository.PutSubscription", subscription.Weekday)
	defer span.End()

	playerIDs := subscription.PlayerIDs
	if playerIDs == nil {
		playerIDs = []string{}
	}

	err := r.store.Put(ctx, collection, subscription.Key(), storedSubscription{PlayerIDs: playerIDs})
	if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to put subscription: %w", err)
	}
	return nil
}

func (r *Repository) DeleteSubscription(ctx context.Context, weekday time.Weekday) error {
	ctx, span := r.startSpan(ctx, "Repository.DeleteSubscription", weekday)
	defer span.End()

	err := r.store.Delete(ctx, collection, domain.WeekdayKey(weekday))
	if errors.Is(err, documentstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, weekday)
	} else if err != nil {
		// NOTE: The document store handles its own error reporting
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// ListSubscriptions returns all subscriptions ordered Sunday through Saturday
func (r *Repository) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	ctx, span := r.tracer.Start(ctx, "Repository.ListSubscriptions")
	defer span.End()

	documents, err := r.store.List(ctx, collection)
	if err != nil {
		// NOTE: The document store handles its own error reporting
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subscriptions := make([]domain.Subscription, 0, len(documents))
	for _, document := range documents {
		weekday, err := domain.ParseWeekday(document.ID)
		if err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Skipping subscription with unknown weekday", "key", document.ID)
			continue
		}

		var stored storedSubscription
		if err := document.Decode(&stored); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Skipping undecodable subscription", "key", document.ID, "error", err.Error())
			continue
		}
		subscriptions = append(subscriptions, domain.NewSubscription(weekday, stored.PlayerIDs))
	}

	slices.SortFunc(subscriptions, func(a, b domain.Subscription) int {
		return int(a.Weekday) - int(b.Weekday)
	})

	return subscriptions, nil
}
