package app_test

import (
	"testing"

	"github.com/Amund211/gamenight/internal/adapters/cache"
	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/domaintest"
	"github.com/stretchr/testify/require"
)

type finalizeFixture struct {
	sessions  *fakeSessionRepository
	players   *fakePlayerRepository
	announcer *fakeAnnouncer

	finalize    app.FinalizeSession
	update      app.UpdateSession
	listPlayers app.ListPlayers
}

func newFinalizeFixture(t *testing.T, session domain.Session) *finalizeFixture {
	t.Helper()

	players := newFakePlayerRepository(
		domaintest.NewPlayerBuilder("p1", now).WithName("Ada").Build(),
		domaintest.NewPlayerBuilder("p2", now).WithName("Grace").Build(),
		domaintest.NewPlayerBuilder("p3", now).WithName("Linus").Build(),
	)
	sessions := newFakeSessionRepository(session)
	announcer := &fakeAnnouncer{}
	playerCache := cache.NewBasicCache[[]domain.Player]()
	listPlayers := app.BuildListPlayersWithCache(playerCache, players, testTimeout)

	return &finalizeFixture{
		sessions:  sessions,
		players:   players,
		announcer: announcer,

		finalize:    app.BuildFinalizeSession(sessions, players, playerCache, listPlayers, announcer, domain.CreditCurrentRoster, nowFunc, testTimeout),
		update:      app.BuildUpdateSession(sessions, domaintest.IDSequence("id"), nowFunc, testTimeout),
		listPlayers: listPlayers,
	}
}

func newFinalizableGameDay(t *testing.T) domain.Session {
	t.Helper()

	return domaintest.NewGameDayBuilder(t, tuesday, 2).
		WithTeam("A", "p1", "p2").
		WithTeam("B", "p3").
		WithStatus(domain.StatusLive).
		WithMiniGame("g1", "A", "B").
		WithGoal("g1", "p1", "p2").
		Build()
}

func TestBuildFinalizeSession(t *testing.T) {
	t.Parallel()

	expectedStats := map[string]domain.PlayerStats{
		"p1": {Goals: 1, Wins: 1},
		"p2": {Assists: 1, Wins: 1},
		"p3": {},
	}

	t.Run("applies stats and completes the session", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))

		result, err := f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.NoError(t, err)
		require.Equal(t, expectedStats, result.Players)
		require.Equal(t, domain.StatusCompleted, result.Session.Status)
		require.Equal(t, expectedStats, result.Session.AppliedStats)
		require.Equal(t, now, result.Session.UpdatedAt)

		require.Equal(t, map[string]domain.PlayerStats{
			"p1": {Goals: 1, Wins: 1},
			"p2": {Assists: 1, Wins: 1},
		}, f.players.career)

		require.Equal(t, result.Session, f.sessions.stored(t, domain.SessionKindGameDay, tuesday))

		require.Len(t, f.announcer.announcements, 1)
		require.Equal(t, result.Session, f.announcer.announcements[0].session)
		require.Equal(t, "Ada", f.announcer.announcements[0].names["p1"])
	})

	t.Run("listed players show the new career totals", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))

		before, err := f.listPlayers(t.Context())
		require.NoError(t, err)
		require.Equal(t, domain.PlayerStats{}, before[0].Career)

		_, err = f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.NoError(t, err)

		after, err := f.listPlayers(t.Context())
		require.NoError(t, err)
		careers := make(map[string]domain.PlayerStats, len(after))
		for _, player := range after {
			careers[player.ID] = player.Career
		}
		require.Equal(t, map[string]domain.PlayerStats{
			"p1": {Goals: 1, Wins: 1},
			"p2": {Assists: 1, Wins: 1},
			"p3": {},
		}, careers)
	})

	t.Run("finalizing again without changes applies nothing", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))

		_, err := f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.NoError(t, err)
		_, err = f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.NoError(t, err)

		require.Equal(t, domain.PlayerStats{Goals: 1, Wins: 1}, f.players.career["p1"])
		require.Len(t, f.announcer.announcements, 2)
	})

	t.Run("edits after finalizing apply only the difference", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))

		_, err := f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.NoError(t, err)

		// The only goal is removed, so the game becomes a draw
		_, err = f.update(t.Context(), domain.SessionKindGameDay, tuesday, app.RemoveGoal("g1", 0))
		require.NoError(t, err)

		result, err := f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.NoError(t, err)
		require.Equal(t, map[string]domain.PlayerStats{"p1": {}, "p2": {}, "p3": {}}, result.Players)

		require.Equal(t, domain.PlayerStats{}, f.players.career["p1"])
		require.Equal(t, domain.PlayerStats{}, f.players.career["p2"])
	})

	t.Run("live mini-game", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))
		_, err := f.update(t.Context(), domain.SessionKindGameDay, tuesday, app.StartMiniGame("g1"))
		require.NoError(t, err)

		_, err = f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.ErrorIs(t, err, domain.ErrLiveGameInProgress)
		require.Empty(t, f.players.career)
		require.Empty(t, f.announcer.announcements)
	})

	t.Run("career stats error", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))
		f.players.addErr = errStorage

		_, err := f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.ErrorIs(t, err, errStorage)

		stored := f.sessions.stored(t, domain.SessionKindGameDay, tuesday)
		require.Equal(t, domain.StatusLive, stored.Status)
		require.Empty(t, stored.AppliedStats)
	})

	t.Run("save error", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))
		f.sessions.saveErr = errStorage

		_, err := f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.ErrorIs(t, err, errStorage)
		require.Empty(t, f.announcer.announcements)
	})

	t.Run("announcement failures are not errors", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))
		f.announcer.err = domain.ErrTemporarilyUnavailable

		result, err := f.finalize(t.Context(), domain.SessionKindGameDay, tuesday)
		require.NoError(t, err)
		require.Equal(t, domain.StatusCompleted, result.Session.Status)
	})

	t.Run("missing session", func(t *testing.T) {
		t.Parallel()

		f := newFinalizeFixture(t, newFinalizableGameDay(t))

		_, err := f.finalize(t.Context(), domain.SessionKindTournament, tuesday)
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
