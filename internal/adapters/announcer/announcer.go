package announcer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Amund211/gamenight/internal/config"
	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
	"github.com/Amund211/gamenight/internal/ratelimiting"
	"github.com/Amund211/gamenight/internal/reporting"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Discord allows 5 messages per 5 seconds per channel
const (
	messageLimit  = 5
	messageWindow = 5 * time.Second
	maxSendTime   = 5 * time.Second
)

type Announcer interface {
	AnnounceResults(ctx context.Context, session domain.Session, stats map[string]domain.PlayerStats, names map[string]string) error
}

// MessageSender is the part of *discordgo.Session used to post messages
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type requestLimiter interface {
	LimitCancelable(ctx context.Context, maxOperationTime time.Duration, operation func() bool) bool
}

type discord struct {
	sender    MessageSender
	channelID string
	limiter   requestLimiter

	tracer trace.Tracer
}

func NewDiscord(sender MessageSender, channelID string, nowFunc func() time.Time, afterFunc func(time.Duration) <-chan time.Time) *discord {
	tracer := otel.Tracer("gamenight/announcer")

	return &discord{
		sender:    sender,
		channelID: channelID,
		limiter:   ratelimiting.NewWindowLimitRequestLimiter(messageLimit, messageWindow, nowFunc, afterFunc),

		tracer: tracer,
	}
}

func (d *discord) AnnounceResults(ctx context.Context, session domain.Session, stats map[string]domain.PlayerStats, names map[string]string) error {
	ctx, span := d.tracer.Start(ctx, "Discord.AnnounceResults", trace.WithAttributes(
		attribute.String("session.kind", string(session.Kind)),
		attribute.String("session.id", session.ID),
	))
	defer span.End()

	message := FormatResults(session, stats, names)

	var sendErr error
	ran := d.limiter.LimitCancelable(ctx, maxSendTime, func() bool {
		_, sendErr = d.sender.ChannelMessageSend(d.channelID, message, discordgo.WithContext(ctx))
		return true
	})
	if !ran {
		err := fmt.Errorf("%w: announcement rate limit", domain.ErrTemporarilyUnavailable)
		logging.FromContext(ctx).WarnContext(ctx, "Skipping announcement", "sessionID", session.ID, "error", err.Error())
		return err
	}
	if sendErr != nil {
		err := fmt.Errorf("failed to send announcement: %w", sendErr)
		reporting.Report(ctx, err, map[string]string{
			"sessionKind": string(session.Kind),
			"sessionID":   session.ID,
		})
		return err
	}

	return nil
}

type logOnly struct {
	logger *slog.Logger
}

// NewLogOnly returns an announcer that only logs the message
func NewLogOnly(logger *slog.Logger) *logOnly {
	return &logOnly{logger: logger}
}

func (l *logOnly) AnnounceResults(ctx context.Context, session domain.Session, stats map[string]domain.PlayerStats, names map[string]string) error {
	l.logger.InfoContext(ctx, "Announcement", "sessionID", session.ID, "message", FormatResults(session, stats, names))
	return nil
}

func NewDiscordOrLogOnly(conf config.Config, logger *slog.Logger) (Announcer, error) {
	if !conf.AnnouncementsEnabled() {
		logger.Info("Discord announcements disabled")
		return NewLogOnly(logger), nil
	}

	session, err := discordgo.New("Bot " + conf.DiscordBotToken())
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return NewDiscord(session, conf.DiscordChannelID(), time.Now, time.After), nil
}
