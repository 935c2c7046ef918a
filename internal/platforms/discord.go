package platforms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"hyperion/internal/cache"
	"hyperion/internal/core"
)

// MessageSender is the subset of *discordgo.Session used to post and look up
// channels.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

type DiscordPlatform struct {
	botToken string
	logger   *slog.Logger
	session  *discordgo.Session
	sender   MessageSender

	readyOnce sync.Once
	readyCh   chan struct{}

	channels *cache.Cache[string, *discordgo.Channel]
}

const channelCacheTTL = 10 * time.Minute

func NewDiscordPlatform(botToken string, logger *slog.Logger) (*DiscordPlatform, error) {
	if botToken == "" {
		return nil, errors.New("discord platform: bot token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DiscordPlatform{
		botToken: botToken,
		logger:   logger,
		readyCh:  make(chan struct{}),
		channels: cache.NewCache[string, *discordgo.Channel](cache.CacheConfig{TTL: channelCacheTTL}, func(id string) string { return id }),
	}, nil
}

// Initialize opens the gateway session. Ready is signalled asynchronously
// once the gateway confirms the login.
func (p *DiscordPlatform) Initialize(ctx context.Context) error {
	session, err := discordgo.New("Bot " + p.botToken)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		p.logger.Info("Discord session ready", "user", r.User.String(), "guilds", len(r.Guilds))
		p.markReady()
	})

	p.session = session
	p.sender = session

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	return nil
}

func (p *DiscordPlatform) markReady() {
	p.readyOnce.Do(func() { close(p.readyCh) })
}

func (p *DiscordPlatform) Ready() bool {
	select {
	case <-p.readyCh:
		return true
	default:
		return false
	}
}

// WaitReady blocks until the session is ready or ctx is done.
func (p *DiscordPlatform) WaitReady(ctx context.Context) error {
	select {
	case <-p.readyCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("discord platform: waiting for ready: %w", ctx.Err())
	}
}

// Channel resolves id from the gateway state cache, falling back to a REST
// lookup. Only text channels can receive notifications.
func (p *DiscordPlatform) Channel(id string) (core.Channel, bool) {
	ch := p.lookupChannel(id)
	if ch == nil {
		return nil, false
	}
	if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews {
		p.logger.Warn("Configured channel is not a text channel", "channel_id", id, "type", ch.Type)
		return nil, false
	}

	return &discordChannel{id: ch.ID, sender: p.sender, platform: p}, true
}

func (p *DiscordPlatform) lookupChannel(id string) *discordgo.Channel {
	if p.session != nil && p.session.State != nil {
		if ch, err := p.session.State.Channel(id); err == nil {
			return ch
		}
	}

	if ch, ok := p.channels.Get(id); ok {
		return ch
	}

	if p.sender == nil {
		return nil
	}

	ch, err := p.sender.Channel(id)
	if err != nil {
		p.logger.Debug("Channel lookup failed", "channel_id", id, "error", err)
		return nil
	}

	p.channels.Set(id, ch)
	return ch
}

func (p *DiscordPlatform) Close(ctx context.Context) error {
	if p.session != nil {
		if err := p.session.Close(); err != nil {
			return fmt.Errorf("failed to close discord session: %w", err)
		}
	}
	return nil
}

func (p *DiscordPlatform) Session() *discordgo.Session {
	return p.session
}

type discordChannel struct {
	id       string
	sender   MessageSender
	platform *DiscordPlatform
}

func (c *discordChannel) ID() string {
	return c.id
}

func (c *discordChannel) Send(ctx context.Context, text string) error {
	if _, err := c.sender.ChannelMessageSend(c.id, text, discordgo.WithContext(ctx)); err != nil {
		// Re-resolve on the next lookup in case the channel was deleted or
		// its permissions changed.
		c.platform.channels.InvalidateKey(c.id)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
