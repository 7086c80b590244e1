package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/gamenight/internal/domain"
)

type subscriptionRepository interface {
	GetSubscription(ctx context.Context, weekday time.Weekday) (domain.Subscription, error)
	PutSubscription(ctx context.Context, subscription domain.Subscription) error
	DeleteSubscription(ctx context.Context, weekday time.Weekday) error
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)
}

type ListSubscriptions func(ctx context.Context) ([]domain.Subscription, error)

func BuildListSubscriptions(repository subscriptionRepository, timeout time.Duration) ListSubscriptions {
	return func(ctx context.Context) ([]domain.Subscription, error) {
		subscriptions, err := withTimeout(ctx, timeout, repository.ListSubscriptions)
		if err != nil {
			// NOTE: The subscription repository handles its own error reporting
			return nil, fmt.Errorf("failed to list subscriptions: %w", err)
		}
		return subscriptions, nil
	}
}

type GetSubscription func(ctx context.Context, weekday string) (domain.Subscription, error)

func BuildGetSubscription(repository subscriptionRepository, timeout time.Duration) GetSubscription {
	return func(ctx context.Context, rawWeekday string) (domain.Subscription, error) {
		weekday, err := domain.ParseWeekday(rawWeekday)
		if err != nil {
			return domain.Subscription{}, err
		}

		subscription, err := withTimeout(ctx, timeout, func(ctx context.Context) (domain.Subscription, error) {
			return repository.GetSubscription(ctx, weekday)
		})
		if err != nil {
			// NOTE: The subscription repository handles its own error reporting
			return domain.Subscription{}, fmt.Errorf("failed to get subscription: %w", err)
		}
		return subscription, nil
	}
}

// PutSubscription replaces the players subscribed to a weekday. Every player must exist.
type PutSubscription func(ctx context.Context, weekday string, playerIDs []string) (domain.Subscription, error)

func BuildPutSubscription(repository subscriptionRepository, listPlayers ListPlayers, timeout time.Duration) PutSubscription {
	return func(ctx context.Context, rawWeekday string, playerIDs []string) (domain.Subscription, error) {
		weekday, err := domain.ParseWeekday(rawWeekday)
		if err != nil {
			return domain.Subscription{}, err
		}

		players, err := listPlayers(ctx)
		if err != nil {
			return domain.Subscription{}, err
		}
		names := playerNames(players)
		for _, playerID := range playerIDs {
			if _, ok := names[playerID]; !ok {
				return domain.Subscription{}, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, playerID)
			}
		}

		subscription := domain.NewSubscription(weekday, playerIDs)
		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.PutSubscription(ctx, subscription)
		})
		if err != nil {
			// NOTE: The subscription repository handles its own error reporting
			return domain.Subscription{}, fmt.Errorf("failed to put subscription: %w", err)
		}
		return subscription, nil
	}
}

type DeleteSubscription func(ctx context.Context, weekday string) error

func BuildDeleteSubscription(repository subscriptionRepository, timeout time.Duration) DeleteSubscription {
	return func(ctx context.Context, rawWeekday string) error {
		weekday, err := domain.ParseWeekday(rawWeekday)
		if err != nil {
			return err
		}

		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.DeleteSubscription(ctx, weekday)
		})
		if err != nil {
			// NOTE: The subscription repository handles its own error reporting
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	}
}
