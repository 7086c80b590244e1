package ratelimiting

import (
	"context"
	"slices"
	"sync"
	"time"
)

// windowLimiter lets at most limit operations finish within any window of time.
//
// It keeps the finish times of the last limit operations, oldest first. A new operation
// waits until the oldest of them has left the window.
type windowLimiter struct {
	limit     int
	window    time.Duration
	nowFunc   func() time.Time
	afterFunc func(time.Duration) <-chan time.Time

	slots chan struct{}

	mu         sync.Mutex
	finishedAt []time.Time
}

func NewWindowLimitRequestLimiter(
	limit int,
	window time.Duration,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) *windowLimiter {
	slots := make(chan struct{}, limit)
	finishedAt := make([]time.Time, 0, limit)
	longAgo := nowFunc().Add(-window)
	for range limit {
		slots <- struct{}{}
		finishedAt = append(finishedAt, longAgo)
	}

	return &windowLimiter{
		limit:      limit,
		window:     window,
		nowFunc:    nowFunc,
		afterFunc:  afterFunc,
		slots:      slots,
		finishedAt: finishedAt,
	}
}

func insertSortedOrder(times []time.Time, t time.Time) []time.Time {
	i, _ := slices.BinarySearchFunc(times, t, time.Time.Compare)
	return slices.Insert(times, i, t)
}

func (l *windowLimiter) Limit(ctx context.Context, maxOperationTime time.Duration, operation func()) bool {
	return l.LimitCancelable(ctx, maxOperationTime, func() bool {
		operation()
		return true
	})
}

// LimitCancelable runs operation once the window allows it.
//
// It gives up without running operation when ctx is done, or when the deadline of ctx
// would pass before waiting plus maxOperationTime. An operation that returns false does
// not count against the window.
func (l *windowLimiter) LimitCancelable(ctx context.Context, maxOperationTime time.Duration, operation func() bool) bool {
	select {
	case <-l.slots:
		defer func() { l.slots <- struct{}{} }()
	case <-ctx.Done():
		return false
	}

	oldest, wait, ok := l.takeOldest(ctx, maxOperationTime)
	if !ok {
		return false
	}
	// Put the taken time back unless the operation finishes
	finished := oldest
	defer func() { l.record(finished) }()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-l.afterFunc(wait):
		}
	}

	if !operation() {
		return false
	}

	finished = l.nowFunc()
	return true
}

func (l *windowLimiter) takeOldest(ctx context.Context, maxOperationTime time.Duration) (time.Time, time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	oldest := l.finishedAt[0]
	now := l.nowFunc()
	wait := max(l.window-now.Sub(oldest), 0)

	if deadline, ok := ctx.Deadline(); ok && wait+maxOperationTime > deadline.Sub(now) {
		return time.Time{}, 0, false
	}

	l.finishedAt = l.finishedAt[1:]
	return oldest, wait, true
}

func (l *windowLimiter) record(finished time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.finishedAt = insertSortedOrder(l.finishedAt, finished)
}
