package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// BuildFunc assembles the scheduler once the lifecycle resources are up.
type BuildFunc func(ctx context.Context) (*Scheduler, error)

type Bot struct {
	name      string
	lifecycle Lifecycle
	build     BuildFunc
	runOnce   bool
	logger    *slog.Logger

	mu        sync.RWMutex
	running   bool
	scheduler *Scheduler
	stopCh    chan struct{}
	stopOnce  sync.Once
	// done is closed when the current Start call returns.
	done chan struct{}
}

type BotConfig struct {
	Name      string
	Lifecycle Lifecycle
	Build     BuildFunc
	RunOnce   bool
	Logger    *slog.Logger
}

func NewBot(config BotConfig) *Bot {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Bot{
		name:      config.Name,
		lifecycle: config.Lifecycle,
		build:     config.Build,
		runOnce:   config.RunOnce,
		logger:    config.Logger,
		stopCh:    make(chan struct{}),
	}
}

// Start brings up the lifecycle resources, then runs the scheduler until ctx
// is cancelled or Stop is called. Initialization only observes ctx, so a
// caller stopping the bot mid-startup must cancel ctx as well.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("bot already running")
	}
	b.running = true
	done := make(chan struct{})
	b.done = done
	b.mu.Unlock()
	defer close(done)
	defer b.markStopped()

	if err := b.lifecycle.InitializeAll(ctx); err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}

	scheduler, err := b.build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}

	b.mu.Lock()
	b.scheduler = scheduler
	b.mu.Unlock()

	if b.runOnce {
		b.logger.Info("Running all watchers once", "bot", b.name)
		return scheduler.RunOnce(ctx)
	}

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	b.logger.Info("Background watchers started", "bot", b.name)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopCh:
		return nil
	}
}

func (b *Bot) Stop(ctx context.Context) error {
	b.stopOnce.Do(func() { close(b.stopCh) })

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	b.mu.RLock()
	done := b.done
	b.mu.RUnlock()

	// CloseAll must not run while Start is still initializing.
	if done != nil {
		select {
		case <-done:
		case <-shutdownCtx.Done():
			return fmt.Errorf("waiting for start to return: %w", shutdownCtx.Err())
		}
	}

	b.mu.RLock()
	scheduler := b.scheduler
	b.mu.RUnlock()

	var schedErr error
	if scheduler != nil {
		schedErr = scheduler.Stop(shutdownCtx)
	}

	if err := b.lifecycle.CloseAll(shutdownCtx); err != nil {
		return fmt.Errorf("component shutdown failed: %w", err)
	}

	if schedErr != nil {
		return fmt.Errorf("scheduler shutdown failed: %w", schedErr)
	}
	return nil
}

func (b *Bot) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

func (b *Bot) Name() string {
	return b.name
}

func (b *Bot) markStopped() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}
