package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/gamenight/internal/domain"
)

// withTimeout runs operation with a deadline of timeout.
//
// A deadline hit surfaces as domain.ErrTemporarilyUnavailable. The operation is not retried.
func withTimeout[T any](ctx context.Context, timeout time.Duration, operation func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := operation(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		var empty T
		return empty, fmt.Errorf("%w: %w", domain.ErrTemporarilyUnavailable, err)
	}
	return result, err
}

func withTimeoutNoResult(ctx context.Context, timeout time.Duration, operation func(ctx context.Context) error) error {
	_, err := withTimeout(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	})
	return err
}
