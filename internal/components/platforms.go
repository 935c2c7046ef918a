package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hyperion/internal/platforms"
)

type PlatformComponent struct {
	token        string
	readyTimeout time.Duration
	logger       *slog.Logger
	discord      *platforms.DiscordPlatform
}

func NewPlatformComponent(token string, readyTimeout time.Duration, logger *slog.Logger) *PlatformComponent {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlatformComponent{
		token:        token,
		readyTimeout: readyTimeout,
		logger:       logger,
	}
}

func (c *PlatformComponent) Name() string {
	return PlatformComponentName
}

func (c *PlatformComponent) Dependencies() []string {
	return []string{}
}

func (c *PlatformComponent) Validate() error {
	if c.token == "" {
		return fmt.Errorf("platforms: discord token is required")
	}
	return nil
}

// Initialize opens the Discord session and blocks until the gateway reports
// ready, so components that depend on it start only after login.
func (c *PlatformComponent) Initialize(ctx context.Context) error {
	discord, err := platforms.NewDiscordPlatform(c.token, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create discord platform: %w", err)
	}
	if err := discord.Initialize(ctx); err != nil {
		return fmt.Errorf("discord platform initialization failed: %w", err)
	}
	c.discord = discord

	readyCtx := ctx
	if c.readyTimeout > 0 {
		var cancel context.CancelFunc
		readyCtx, cancel = context.WithTimeout(ctx, c.readyTimeout)
		defer cancel()
	}

	if err := discord.WaitReady(readyCtx); err != nil {
		if closeErr := discord.Close(ctx); closeErr != nil {
			c.logger.Warn("Failed to close discord session after ready timeout", "error", closeErr)
		}
		c.discord = nil
		return err
	}
	return nil
}

func (c *PlatformComponent) Close(ctx context.Context) error {
	if c.discord != nil {
		return c.discord.Close(ctx)
	}
	return nil
}

func (c *PlatformComponent) Discord() *platforms.DiscordPlatform {
	return c.discord
}
