package domaintest

import (
	"fmt"
	"testing"
	"time"

	"github.com/Amund211/gamenight/internal/domain"
	"github.com/stretchr/testify/require"
)

// PlayerIDs returns count distinct player ids p1, p2, ...
func PlayerIDs(count int) []string {
	ids := make([]string, count)
	for i := range count {
		ids[i] = fmt.Sprintf("p%d", i+1)
	}
	return ids
}

type sessionBuilder struct {
	t       *testing.T
	session domain.Session
}

// WithTeam selects the players and places them on the team, in order
func (sb *sessionBuilder) WithTeam(key domain.TeamKey, playerIDs ...string) *sessionBuilder {
	sb.t.Helper()

	participants := append(sb.session.ParticipantIDs, playerIDs...)
	sb.session.ParticipantIDs = participants

	for _, playerID := range playerIDs {
		var err error
		sb.session, err = sb.session.MovePlayer(playerID, "", key)
		require.NoError(sb.t, err)
	}
	return sb
}

func (sb *sessionBuilder) WithStatus(status domain.Status) *sessionBuilder {
	sb.session.Status = status
	return sb
}

func (sb *sessionBuilder) WithMiniGame(gameID string, teamA, teamB domain.TeamKey) *sessionBuilder {
	sb.t.Helper()

	var err error
	sb.session, err = sb.session.AddMiniGame(gameID, teamA, teamB, time.Time{})
	require.NoError(sb.t, err)
	return sb
}

// WithGoal adds a goal with an id derived from the game and the goal count
func (sb *sessionBuilder) WithGoal(gameID, scorerID, assisterID string) *sessionBuilder {
	sb.t.Helper()

	game, ok := sb.session.MiniGame(gameID)
	require.True(sb.t, ok)
	goalID := fmt.Sprintf("%s-g%d", gameID, len(game.Goals)+1)

	var err error
	sb.session, err = sb.session.AddGoal(gameID, goalID, scorerID, assisterID, time.Time{})
	require.NoError(sb.t, err)
	return sb
}

func (sb *sessionBuilder) WithBracket(seeds [4]domain.TeamKey) *sessionBuilder {
	sb.t.Helper()

	var err error
	sb.session, err = sb.session.AddKnockoutBracket(seeds)
	require.NoError(sb.t, err)
	return sb
}

func (sb *sessionBuilder) Build() domain.Session {
	return sb.session.Clone()
}

// NewGameDayBuilder builds a game day with teamCount empty teams of the default capacity
func NewGameDayBuilder(t *testing.T, date string, teamCount int) *sessionBuilder {
	t.Helper()

	session, err := domain.NewGameDay(date, teamCount, domain.DefaultTeamCapacity, nil)
	require.NoError(t, err)
	return &sessionBuilder{t: t, session: session}
}

func NewTournamentBuilder(t *testing.T, id string, teamCount int) *sessionBuilder {
	t.Helper()

	session, err := domain.NewTournament(id, "Cup", "2025-06-14", teamCount, domain.DefaultTeamCapacity)
	require.NoError(t, err)
	return &sessionBuilder{t: t, session: session}
}
