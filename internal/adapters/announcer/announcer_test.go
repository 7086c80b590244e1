package announcer_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Amund211/gamenight/internal/adapters/announcer"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/domaintest"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

type mockedSender struct {
	t *testing.T

	channelID string
	messages  []string
	err       error
}

func (m *mockedSender) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.t.Helper()
	require.Equal(m.t, m.channelID, channelID)

	m.messages = append(m.messages, content)
	if m.err != nil {
		return nil, m.err
	}
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func newGameDay(t *testing.T) domain.Session {
	t.Helper()

	return domaintest.NewGameDayBuilder(t, "2025-03-04", 3).
		WithTeam("A", "ada", "bob").
		WithTeam("B", "cat").
		WithTeam("C", "dan").
		WithMiniGame("g1", "A", "B").
		WithGoal("g1", "ada", "bob").
		WithGoal("g1", "ada", "").
		WithMiniGame("g2", "B", "C").
		WithGoal("g2", "cat", "").
		WithGoal("g2", "dan", "").
		WithMiniGame("g3", "C", "A").
		WithGoal("g3", "dan", "").
		Build()
}

var names = map[string]string{
	"ada": "Ada",
	"bob": "Bob",
	"cat": "Cat",
}

func TestFormatResults(t *testing.T) {
	t.Parallel()

	t.Run("game day", func(t *testing.T) {
		t.Parallel()

		session := newGameDay(t)
		message := announcer.FormatResults(session, session.Stats(domain.CreditCurrentRoster), names)

		require.Equal(t, "**Tuesday 2025-03-04** results (3 mini-games)\n"+
			"Team Ada: 1 W / 0 D / 1 L\n"+
			"Team C: 1 W / 1 D / 0 L\n"+
			"Team Cat: 0 W / 1 D / 1 L\n"+
			"Top scorers: Ada 2, dan 2, Cat 1", message)
	})

	t.Run("tournament champion", func(t *testing.T) {
		t.Parallel()

		session := domaintest.NewTournamentBuilder(t, "cup", 4).
			WithTeam("A", "ada").
			WithTeam("B", "bob").
			WithTeam("C", "cat").
			WithTeam("D", "dan").
			WithBracket([4]domain.TeamKey{"A", "B", "C", "D"}).
			WithStatus(domain.StatusLive).
			Build()

		session, err := session.ResolveKnockoutMatch(domain.SemifinalOneID, "A")
		require.NoError(t, err)
		session, err = session.ResolveKnockoutMatch(domain.SemifinalTwoID, "B")
		require.NoError(t, err)
		session, err = session.ResolveKnockoutMatch(domain.FinalID, "B")
		require.NoError(t, err)

		message := announcer.FormatResults(session, session.Stats(domain.CreditCurrentRoster), names)
		require.Contains(t, message, "Champion: Team Bob")
		require.NotContains(t, message, "Top scorers")
	})
}

func TestDiscord(t *testing.T) {
	t.Parallel()

	t.Run("sends the results", func(t *testing.T) {
		t.Parallel()

		sender := &mockedSender{t: t, channelID: "channel-1"}
		d := announcer.NewDiscord(sender, "channel-1", time.Now, time.After)

		session := newGameDay(t)
		stats := session.Stats(domain.CreditCurrentRoster)
		err := d.AnnounceResults(t.Context(), session, stats, names)
		require.NoError(t, err)

		require.Equal(t, []string{announcer.FormatResults(session, stats, names)}, sender.messages)
	})

	t.Run("send error", func(t *testing.T) {
		t.Parallel()

		sender := &mockedSender{t: t, channelID: "channel-1", err: errors.New("discord is down")}
		d := announcer.NewDiscord(sender, "channel-1", time.Now, time.After)

		err := d.AnnounceResults(t.Context(), newGameDay(t), nil, names)
		require.ErrorContains(t, err, "discord is down")
	})

	t.Run("rate limited past the deadline", func(t *testing.T) {
		t.Parallel()

		sender := &mockedSender{t: t, channelID: "channel-1"}
		d := announcer.NewDiscord(sender, "channel-1", time.Now, time.After)

		session := newGameDay(t)
		for range 5 {
			require.NoError(t, d.AnnounceResults(t.Context(), session, nil, names))
		}

		ctx, cancel := context.WithTimeout(t.Context(), time.Second)
		defer cancel()
		err := d.AnnounceResults(ctx, session, nil, names)
		require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
		require.Len(t, sender.messages, 5)
	})
}

func TestLogOnly(t *testing.T) {
	t.Parallel()

	l := announcer.NewLogOnly(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	session := newGameDay(t)
	require.NoError(t, l.AnnounceResults(t.Context(), session, session.Stats(domain.CreditCurrentRoster), names))
}
