package loader

import (
	"context"
	"fmt"
	"log/slog"

	"hyperion/internal/components"
	"hyperion/internal/config"
	"hyperion/internal/core"
	"hyperion/internal/sources"
	"hyperion/internal/state"
	"hyperion/internal/targets/discord"
	"hyperion/internal/types"
)

type Loader struct {
	config *config.Config
	logger *slog.Logger
}

func NewLoader(cfg *config.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		config: cfg,
		logger: logger,
	}
}

// Initialize registers the components and assembles the bot. Nothing is
// connected until the bot starts.
func (l *Loader) Initialize() (*state.State, error) {
	registry := components.NewRegistry(l.logger)

	storageComp := components.NewStorageComponent(
		l.config.Storage.Type,
		l.config.Storage.Path,
		l.config.Storage.Retention.Duration,
		l.logger,
	)
	if err := registry.Register(storageComp); err != nil {
		return nil, fmt.Errorf("failed to register storage component: %w", err)
	}

	platformComp := components.NewPlatformComponent(l.config.Discord.Token, l.config.Discord.ReadyTimeout.Duration, l.logger)
	if err := registry.Register(platformComp); err != nil {
		return nil, fmt.Errorf("failed to register platform component: %w", err)
	}

	httpComp := components.NewHTTPComponent(l.config.HTTP.UserAgent, l.config.HTTP.Timeout.Duration, l.logger)
	if err := registry.Register(httpComp); err != nil {
		return nil, fmt.Errorf("failed to register http component: %w", err)
	}

	bot := core.NewBot(core.BotConfig{
		Name:      l.config.Bot.Name,
		Lifecycle: registry,
		Build: func(ctx context.Context) (*core.Scheduler, error) {
			return l.buildScheduler(registry)
		},
		RunOnce: l.config.Bot.RunOnce,
		Logger:  l.logger,
	})

	return state.NewState(l.config, registry, bot), nil
}

func (l *Loader) buildScheduler(registry *components.Registry) (*core.Scheduler, error) {
	chat := registry.Get(components.PlatformComponentName).(*components.PlatformComponent).Discord()
	client := registry.Get(components.HTTPComponentName).(*components.HTTPComponent).Client()
	deliveries := registry.Get(components.StorageComponentName).(*components.StorageComponent).Deliveries()

	plans := PlanGroups(l.config)

	var all []types.Source
	for _, p := range plans {
		all = append(all, p.Sources...)
	}

	notifier, err := discord.NewNotifier(discord.NotifierConfig{
		Sources:    all,
		Deliveries: deliveries,
		Logger:     l.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	groups := make([]core.Group, 0, len(plans))
	for _, p := range plans {
		group := core.Group{Name: p.Name, Interval: p.Interval, Stagger: p.Stagger}
		for _, src := range p.Sources {
			extractor, err := sources.NewExtractor(src)
			if err != nil {
				return nil, fmt.Errorf("failed to create extractor for %s: %w", src.Name, err)
			}
			group.Watchers = append(group.Watchers, core.NewWatcher(core.WatcherConfig{
				Source:    src,
				Fetcher:   client,
				Extractor: extractor,
				Notifier:  notifier,
				Logger:    l.logger,
			}))
		}
		groups = append(groups, group)
	}

	l.logger.Info("Watchers configured", "groups", len(groups), "sources", len(all))

	return core.NewScheduler(core.SchedulerConfig{
		Chat:      chat,
		ChannelID: l.config.Discord.ChannelID,
		Groups:    groups,
		Logger:    l.logger,
	}), nil
}
