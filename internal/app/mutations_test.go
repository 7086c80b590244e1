package app_test

import (
	"testing"

	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func TestGameDayMutations(t *testing.T) {
	t.Parallel()

	session := domaintest.NewGameDayBuilder(t, tuesday, 2).
		WithTeam("A", "p1", "p2").
		WithTeam("B", "p3", "p4").
		Build()

	repository := newFakeSessionRepository(session)
	updateSession := app.BuildUpdateSession(repository, domaintest.IDSequence("id"), nowFunc, testTimeout)

	apply := func(mutation app.Mutation) (domain.Session, error) {
		return updateSession(t.Context(), domain.SessionKindGameDay, tuesday, mutation)
	}
	mustApply := func(mutation app.Mutation) domain.Session {
		t.Helper()
		session, err := apply(mutation)
		require.NoError(t, err)
		return session
	}

	session = mustApply(app.AddMiniGame("A", "B"))
	require.Equal(t, "id-1", session.MiniGames[0].ID)

	session = mustApply(app.StartMiniGame("id-1"))
	require.Equal(t, domain.StatusLive, session.Status)
	require.True(t, session.MiniGames[0].Live)
	require.Equal(t, now, *session.MiniGames[0].StartedAt)

	session = mustApply(app.AddGoal("id-1", "p1", "p2"))
	require.Equal(t, 1, session.MiniGames[0].ScoreA)
	require.Equal(t, "id-2", session.MiniGames[0].Goals[0].ID)

	session = mustApply(app.SetScore("id-1", domain.SideB, 1))
	require.Equal(t, 1, session.MiniGames[0].ScoreB)
	require.Len(t, session.MiniGames[0].Goals, 2)

	_, err := apply(app.UnlockMiniGame("id-1"))
	require.ErrorIs(t, err, domain.ErrLiveGameInProgress)

	session = mustApply(app.EndMiniGame("id-1", ""))
	require.False(t, session.MiniGames[0].Live)
	require.True(t, session.MiniGames[0].Locked)

	_, err = apply(app.AddGoal("id-1", "p3", ""))
	require.ErrorIs(t, err, domain.ErrMiniGameLocked)

	session = mustApply(app.UnlockMiniGame("id-1"))
	require.False(t, session.MiniGames[0].Locked)

	session = mustApply(app.RemoveGoal("id-1", 0))
	require.Equal(t, 0, session.MiniGames[0].ScoreA)
	require.Equal(t, 1, session.MiniGames[0].ScoreB)

	edited := session.MiniGames[0].Clone()
	edited.ScoreA = 2
	_, err = apply(app.ReplaceMiniGame(edited))
	require.ErrorIs(t, err, domain.ErrScoreGoalMismatch)

	session = mustApply(app.LockMiniGame("id-1"))
	require.True(t, session.MiniGames[0].Locked)

	session = mustApply(app.MovePlayer("p2", "A", "B"))
	require.Equal(t, []string{"p3", "p4", "p2"}, session.Roster.Members("B"))

	session = mustApply(app.MakeCaptain("p4", "B"))
	team, ok := session.Roster.Team("B")
	require.True(t, ok)
	require.Equal(t, "p4", team.CaptainID)

	_, err = apply(app.SetStatus(domain.StatusCompleted))
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	session = mustApply(app.SetStatus(domain.StatusNotCompleted))
	require.Equal(t, domain.StatusNotCompleted, session.Status)

	session = mustApply(app.RemoveMiniGame("id-1"))
	require.Empty(t, session.MiniGames)

	require.Equal(t, session, repository.stored(t, domain.SessionKindGameDay, tuesday))
}

func TestKnockoutMutations(t *testing.T) {
	t.Parallel()

	session := domaintest.NewTournamentBuilder(t, "cup", 4).
		WithTeam("A", "a1", "a2").
		WithTeam("B", "b1", "b2").
		WithTeam("C", "c1", "c2").
		WithTeam("D", "d1", "d2").
		Build()

	repository := newFakeSessionRepository(session)
	updateSession := app.BuildUpdateSession(repository, domaintest.IDSequence("id"), nowFunc, testTimeout)

	apply := func(mutation app.Mutation) (domain.Session, error) {
		return updateSession(t.Context(), domain.SessionKindTournament, "cup", mutation)
	}
	mustApply := func(mutation app.Mutation) domain.Session {
		t.Helper()
		session, err := apply(mutation)
		require.NoError(t, err)
		return session
	}

	_, err := apply(app.AddKnockoutMiniGame(domain.SemifinalOneID))
	require.ErrorIs(t, err, domain.ErrNoBracket)

	mustApply(app.AddKnockoutBracket([4]domain.TeamKey{"A", "B", "C", "D"}))

	_, err = apply(app.AddKnockoutMiniGame(domain.FinalID))
	require.ErrorIs(t, err, domain.ErrMatchNotReady)

	// Semifinal one is played as a mini-game: A beats D
	session = mustApply(app.AddKnockoutMiniGame(domain.SemifinalOneID))
	game := session.MiniGames[0]
	require.Equal(t, domain.TeamKey("A"), game.TeamA)
	require.Equal(t, domain.TeamKey("D"), game.TeamB)
	require.Equal(t, domain.SemifinalOneID, game.KnockoutMatchID)

	mustApply(app.StartMiniGame(game.ID))
	mustApply(app.AddGoal(game.ID, "a1", ""))
	session = mustApply(app.EndMiniGame(game.ID, ""))

	final, ok := session.Bracket.Match(domain.FinalID)
	require.True(t, ok)
	require.Equal(t, domain.TeamKey("A"), final.TeamA)

	// Semifinal two is resolved directly
	session = mustApply(app.ResolveKnockoutMatch(domain.SemifinalTwoID, "C"))
	thirdPlace, ok := session.Bracket.Match(domain.ThirdPlaceID)
	require.True(t, ok)
	require.ElementsMatch(t, []domain.TeamKey{"D", "B"}, []domain.TeamKey{thirdPlace.TeamA, thirdPlace.TeamB})

	// A tied final needs an explicit winner
	session = mustApply(app.AddKnockoutMiniGame(domain.FinalID))
	finalGame := session.MiniGames[1]
	mustApply(app.StartMiniGame(finalGame.ID))

	_, err = apply(app.EndMiniGame(finalGame.ID, ""))
	require.ErrorIs(t, err, domain.ErrWinnerRequired)

	session = mustApply(app.EndMiniGame(finalGame.ID, "C"))
	champion, ok := session.Bracket.Champion()
	require.True(t, ok)
	require.Equal(t, domain.TeamKey("C"), champion)

	// Rolling back semifinal two scrubs C from the final
	session = mustApply(app.RollbackKnockoutMatch(domain.SemifinalTwoID))
	_, ok = session.Bracket.Champion()
	require.False(t, ok)
	final, ok = session.Bracket.Match(domain.FinalID)
	require.True(t, ok)
	require.False(t, final.Has("C"))
}
