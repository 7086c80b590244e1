package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
)

type sessionRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, kind domain.SessionKind, id string) (domain.Session, error)
	SaveSession(ctx context.Context, session domain.Session) error
	DeleteSession(ctx context.Context, kind domain.SessionKind, id string) error
	ListSessions(ctx context.Context, kind domain.SessionKind) ([]domain.Session, error)
}

type subscriptionGetter interface {
	GetSubscription(ctx context.Context, weekday time.Weekday) (domain.Subscription, error)
}

type CreateGameDay func(ctx context.Context, date string, teamCount int) (domain.Session, error)

// BuildCreateGameDay creates the game day for a date with its participants taken
// from the subscription for that weekday
func BuildCreateGameDay(
	repository sessionRepository,
	subscriptions subscriptionGetter,
	teamCapacity int,
	nowFunc func() time.Time,
	timeout time.Duration,
) CreateGameDay {
	return func(ctx context.Context, date string, teamCount int) (domain.Session, error) {
		day, err := domain.ParseDate(date)
		if err != nil {
			return domain.Session{}, err
		}

		subscription, err := withTimeout(ctx, timeout, func(ctx context.Context) (domain.Subscription, error) {
			return subscriptions.GetSubscription(ctx, day.Weekday())
		})
		if errors.Is(err, domain.ErrSubscriptionNotFound) {
			subscription = domain.NewSubscription(day.Weekday(), nil)
		} else if err != nil {
			// NOTE: The subscription repository handles its own error reporting
			return domain.Session{}, fmt.Errorf("failed to get subscription: %w", err)
		}

		session, err := domain.NewGameDay(date, teamCount, teamCapacity, subscription.PlayerIDs)
		if err != nil {
			return domain.Session{}, err
		}
		session.UpdatedAt = nowFunc()

		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.CreateSession(ctx, session)
		})
		if err != nil {
			// NOTE: The session repository handles its own error reporting
			return domain.Session{}, fmt.Errorf("failed to create game day: %w", err)
		}

		logging.FromContext(ctx).InfoContext(ctx, "Created game day",
			"sessionID", session.ID,
			"participants", len(session.ParticipantIDs),
		)

		return session, nil
	}
}

type CreateTournament func(ctx context.Context, name, date string, teamCount int) (domain.Session, error)

func BuildCreateTournament(
	repository sessionRepository,
	newID func() string,
	teamCapacity int,
	nowFunc func() time.Time,
	timeout time.Duration,
) CreateTournament {
	return func(ctx context.Context, name, date string, teamCount int) (domain.Session, error) {
		session, err := domain.NewTournament(newID(), name, date, teamCount, teamCapacity)
		if err != nil {
			return domain.Session{}, err
		}
		session.UpdatedAt = nowFunc()

		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.CreateSession(ctx, session)
		})
		if err != nil {
			// NOTE: The session repository handles its own error reporting
			return domain.Session{}, fmt.Errorf("failed to create tournament: %w", err)
		}

		return session, nil
	}
}

type GetSession func(ctx context.Context, kind domain.SessionKind, id string) (domain.Session, error)

func BuildGetSession(repository sessionRepository, timeout time.Duration) GetSession {
	return func(ctx context.Context, kind domain.SessionKind, id string) (domain.Session, error) {
		session, err := withTimeout(ctx, timeout, func(ctx context.Context) (domain.Session, error) {
			return repository.GetSession(ctx, kind, id)
		})
		if err != nil {
			// NOTE: The session repository handles its own error reporting
			return domain.Session{}, fmt.Errorf("failed to get session: %w", err)
		}
		return session, nil
	}
}

type ListSessions func(ctx context.Context, kind domain.SessionKind) ([]domain.Session, error)

func BuildListSessions(repository sessionRepository, timeout time.Duration) ListSessions {
	return func(ctx context.Context, kind domain.SessionKind) ([]domain.Session, error) {
		sessions, err := withTimeout(ctx, timeout, func(ctx context.Context) ([]domain.Session, error) {
			return repository.ListSessions(ctx, kind)
		})
		if err != nil {
			// NOTE: The session repository handles its own error reporting
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		return sessions, nil
	}
}

// DeleteSession removes a session. Career stats applied by finalizing it are kept.
type DeleteSession func(ctx context.Context, kind domain.SessionKind, id string) error

func BuildDeleteSession(repository sessionRepository, timeout time.Duration) DeleteSession {
	return func(ctx context.Context, kind domain.SessionKind, id string) error {
		err := withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.DeleteSession(ctx, kind, id)
		})
		if err != nil {
			// NOTE: The session repository handles its own error reporting
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	}
}

// MutationEnv is what a mutation may depend on besides the session itself
type MutationEnv struct {
	Now   time.Time
	NewID func() string
}

// Mutation is a pure edit of a session
type Mutation func(session domain.Session, env MutationEnv) (domain.Session, error)

// UpdateSession loads a session, applies the mutation and saves the result.
//
// There is no concurrency control: the last save wins.
type UpdateSession func(ctx context.Context, kind domain.SessionKind, id string, mutation Mutation) (domain.Session, error)

func BuildUpdateSession(
	repository sessionRepository,
	newID func() string,
	nowFunc func() time.Time,
	timeout time.Duration,
) UpdateSession {
	return func(ctx context.Context, kind domain.SessionKind, id string, mutation Mutation) (domain.Session, error) {
		session, err := withTimeout(ctx, timeout, func(ctx context.Context) (domain.Session, error) {
			return repository.GetSession(ctx, kind, id)
		})
		if err != nil {
			// NOTE: The session repository handles its own error reporting
			return domain.Session{}, fmt.Errorf("failed to get session: %w", err)
		}

		now := nowFunc()
		updated, err := mutation(session, MutationEnv{Now: now, NewID: newID})
		if err != nil {
			return domain.Session{}, err
		}
		updated.UpdatedAt = now

		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.SaveSession(ctx, updated)
		})
		if err != nil {
			// NOTE: The session repository handles its own error reporting
			return domain.Session{}, fmt.Errorf("failed to save session: %w", err)
		}

		return updated, nil
	}
}

// SelectParticipants replaces the participants of a session. Every player must exist.
type SelectParticipants func(ctx context.Context, kind domain.SessionKind, id string, playerIDs []string) (domain.Session, error)

func BuildSelectParticipants(listPlayers ListPlayers, updateSession UpdateSession) SelectParticipants {
	return func(ctx context.Context, kind domain.SessionKind, id string, playerIDs []string) (domain.Session, error) {
		players, err := listPlayers(ctx)
		if err != nil {
			return domain.Session{}, err
		}

		names := playerNames(players)
		for _, playerID := range playerIDs {
			if _, ok := names[playerID]; !ok {
				return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, playerID)
			}
		}

		return updateSession(ctx, kind, id, func(session domain.Session, _ MutationEnv) (domain.Session, error) {
			return session.SelectParticipants(playerIDs)
		})
	}
}

// SessionStats are the stats of a session, recomputed from its mini-games
type SessionStats struct {
	Session domain.Session
	Players map[string]domain.PlayerStats
}

type GetSessionStats func(ctx context.Context, kind domain.SessionKind, id string) (SessionStats, error)

func BuildGetSessionStats(getSession GetSession, policy domain.WinCreditPolicy) GetSessionStats {
	return func(ctx context.Context, kind domain.SessionKind, id string) (SessionStats, error) {
		session, err := getSession(ctx, kind, id)
		if err != nil {
			return SessionStats{}, err
		}

		return SessionStats{
			Session: session,
			Players: session.Stats(policy),
		}, nil
	}
}
