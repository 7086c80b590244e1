package sessionrepository_test

import (
	"testing"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/documentstore"
	"github.com/Amund211/gamenight/internal/adapters/sessionrepository"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.June, 14, 10, 0, 0, 0, time.UTC)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		repo := sessionrepository.New(documentstore.NewInMemory())

		session := domaintest.NewTournamentBuilder(t, "cup", 4).
			WithTeam("A", "a1", "a2").
			WithTeam("B", "b1").
			WithTeam("C", "c1").
			WithTeam("D", "d1").
			WithBracket([4]domain.TeamKey{"A", "B", "C", "D"}).
			WithStatus(domain.StatusLive).
			Build()
		session, err := session.MakeCaptain("a2", "A")
		require.NoError(t, err)
		session, err = session.AddKnockoutMiniGame("k1", domain.SemifinalOneID, start)
		require.NoError(t, err)
		session, err = session.StartMiniGame("k1", start)
		require.NoError(t, err)
		session, err = session.AddGoal("k1", "goal-1", "a1", "a2", start)
		require.NoError(t, err)
		session, err = session.EndMiniGame("k1", start.Add(90*time.Second), "")
		require.NoError(t, err)
		session.AppliedStats = map[string]domain.PlayerStats{"a1": {Goals: 1}}

		require.NoError(t, repo.CreateSession(t.Context(), session))

		loaded, err := repo.GetSession(t.Context(), domain.SessionKindTournament, "cup")
		require.NoError(t, err)

		require.Equal(t, session.Name, loaded.Name)
		require.Equal(t, domain.StatusLive, loaded.Status)
		require.Equal(t, session.ParticipantIDs, loaded.ParticipantIDs)
		require.Equal(t, session.Roster, loaded.Roster)
		require.Equal(t, session.Bracket, loaded.Bracket)
		require.Equal(t, session.AppliedStats, loaded.AppliedStats)
		require.Equal(t, session.NextSequence, loaded.NextSequence)
		require.Len(t, loaded.MiniGames, 1)

		game := loaded.MiniGames[0]
		require.Equal(t, session.MiniGames[0].Goals, game.Goals)
		require.Equal(t, 90*time.Second, game.Duration)
		require.True(t, game.Locked)
		require.Equal(t, domain.SemifinalOneID, game.KnockoutMatchID)
		require.Equal(t, session.Stats(domain.CreditCurrentRoster), loaded.Stats(domain.CreditCurrentRoster))
	})

	t.Run("create twice", func(t *testing.T) {
		t.Parallel()

		repo := sessionrepository.New(documentstore.NewInMemory())
		session := domaintest.NewGameDayBuilder(t, "2025-03-04", 2).Build()

		require.NoError(t, repo.CreateSession(t.Context(), session))
		require.ErrorIs(t, repo.CreateSession(t.Context(), session), domain.ErrSessionExists)
	})

	t.Run("kinds are stored separately", func(t *testing.T) {
		t.Parallel()

		repo := sessionrepository.New(documentstore.NewInMemory())
		require.NoError(t, repo.SaveSession(t.Context(), domaintest.NewGameDayBuilder(t, "2025-03-04", 2).Build()))

		_, err := repo.GetSession(t.Context(), domain.SessionKindTournament, "2025-03-04")
		require.ErrorIs(t, err, domain.ErrSessionNotFound)

		_, err = repo.GetSession(t.Context(), domain.SessionKindGameDay, "2025-03-04")
		require.NoError(t, err)
	})

	t.Run("list is newest first", func(t *testing.T) {
		t.Parallel()

		repo := sessionrepository.New(documentstore.NewInMemory())
		for _, date := range []string{"2025-03-04", "2025-03-18", "2025-03-11"} {
			require.NoError(t, repo.SaveSession(t.Context(), domaintest.NewGameDayBuilder(t, date, 2).Build()))
		}

		sessions, err := repo.ListSessions(t.Context(), domain.SessionKindGameDay)
		require.NoError(t, err)
		require.Len(t, sessions, 3)
		require.Equal(t, "2025-03-18", sessions[0].ID)
		require.Equal(t, "2025-03-11", sessions[1].ID)
		require.Equal(t, "2025-03-04", sessions[2].ID)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		repo := sessionrepository.New(documentstore.NewInMemory())
		session := domaintest.NewGameDayBuilder(t, "2025-03-04", 2).Build()
		require.NoError(t, repo.SaveSession(t.Context(), session))

		require.NoError(t, repo.DeleteSession(t.Context(), domain.SessionKindGameDay, session.ID))
		require.ErrorIs(t, repo.DeleteSession(t.Context(), domain.SessionKindGameDay, session.ID), domain.ErrSessionNotFound)
	})

	t.Run("legacy documents", func(t *testing.T) {
		t.Parallel()

		store := documentstore.NewInMemory()
		repo := sessionrepository.New(store)

		legacy := map[string]any{
			"name":           "Tuesday",
			"date":           "2024-11-05",
			"status":         "finished",
			"participantIds": []string{"p1", "p2"},
			"teams": []map[string]any{
				{"key": "A", "playerIds": []string{"p2", "p1"}},
				{"key": "B", "playerIds": []string{}},
			},
			"miniGames": []map[string]any{
				{"id": "g1", "teamA": "A", "teamB": "B", "scoreA": 0, "scoreB": 0, "goals": []any{}},
				{"id": "g2", "teamA": "B", "teamB": "A", "scoreA": 0, "scoreB": 0, "goals": []any{}, "durationMs": 60000},
			},
		}
		require.NoError(t, store.Put(t.Context(), "game_days", "2024-11-05", legacy))

		session, err := repo.GetSession(t.Context(), domain.SessionKindGameDay, "2024-11-05")
		require.NoError(t, err)
		require.Equal(t, domain.StatusCompleted, session.Status)
		require.Equal(t, domain.DefaultTeamCapacity, session.Roster.Capacity)

		team, ok := session.Roster.Team("A")
		require.True(t, ok)
		require.Equal(t, "p2", team.CaptainID)

		require.Equal(t, 1, session.MiniGames[0].Sequence)
		require.Equal(t, 2, session.MiniGames[1].Sequence)
		require.Equal(t, 2, session.NextSequence)
		require.False(t, session.MiniGames[0].Locked)
		require.True(t, session.MiniGames[1].Locked)
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		store := documentstore.NewInMemory()
		repo := sessionrepository.New(store)
		require.NoError(t, store.Put(t.Context(), "game_days", "2024-11-05", map[string]any{"status": "postponed"}))

		_, err := repo.GetSession(t.Context(), domain.SessionKindGameDay, "2024-11-05")
		require.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}
