package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/cache"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/Amund211/gamenight/internal/reporting"
)

type careerStatsAdder interface {
	AddCareerStats(ctx context.Context, deltas map[string]domain.PlayerStats) error
}

type resultsAnnouncer interface {
	AnnounceResults(ctx context.Context, session domain.Session, stats map[string]domain.PlayerStats, names map[string]string) error
}

// FinalizeSession applies the session stats to the career counters and completes the session.
//
// Finalizing again only applies the difference against what was applied last time, so
// a session can be edited and finalized any number of times.
type FinalizeSession func(ctx context.Context, kind domain.SessionKind, id string) (SessionStats, error)

func BuildFinalizeSession(
	repository sessionRepository,
	careerStats careerStatsAdder,
	playerCache cache.Cache[[]domain.Player],
	listPlayers ListPlayers,
	announcer resultsAnnouncer,
	policy domain.WinCreditPolicy,
	nowFunc func() time.Time,
	timeout time.Duration,
) FinalizeSession {
	return func(ctx context.Context, kind domain.SessionKind, id string) (SessionStats, error) {
		session, err := withTimeout(ctx, timeout, func(ctx context.Context) (domain.Session, error) {
			return repository.GetSession(ctx, kind, id)
		})
		if err != nil {
			// NOTE: The session repository handles its own error reporting
			return SessionStats{}, fmt.Errorf("failed to get session: %w", err)
		}

		if session.HasLiveMiniGame() {
			return SessionStats{}, fmt.Errorf("%w: end the live mini-game before finalizing", domain.ErrLiveGameInProgress)
		}

		stats := session.Stats(policy)
		delta := domain.CareerDelta(session.AppliedStats, stats)

		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return careerStats.AddCareerStats(ctx, delta)
		})
		// The counters may have changed even when adding failed partway
		cache.Invalidate(playerCache, playersCacheKey)
		if err != nil {
			// NOTE: The player repository handles its own error reporting
			return SessionStats{}, fmt.Errorf("failed to add career stats: %w", err)
		}

		updated, err := session.SetStatus(domain.StatusCompleted)
		if err != nil {
			return SessionStats{}, err
		}
		updated.AppliedStats = stats
		updated.UpdatedAt = nowFunc()

		err = withTimeoutNoResult(ctx, timeout, func(ctx context.Context) error {
			return repository.SaveSession(ctx, updated)
		})
		if err != nil {
			// The career stats are applied at this point. Finalizing again applies them twice.
			reporting.Report(ctx, fmt.Errorf("failed to save finalized session: %w", err), map[string]string{
				"sessionKind": string(kind),
				"sessionID":   id,
			})
			return SessionStats{}, fmt.Errorf("failed to save session: %w", err)
		}

		logger := logging.FromContext(ctx)
		logger.InfoContext(ctx, "Finalized session",
			"sessionKind", string(kind),
			"sessionID", id,
			"changedPlayers", len(delta),
		)

		players, err := listPlayers(ctx)
		if err != nil {
			logger.WarnContext(ctx, "Failed to list players for announcement", "error", err.Error())
		}
		err = announcer.AnnounceResults(ctx, updated, stats, playerNames(players))
		if err != nil {
			// NOTE: The announcer handles its own error reporting
			logger.WarnContext(ctx, "Failed to announce results", "error", err.Error())
		}

		return SessionStats{Session: updated, Players: stats}, nil
	}
}
