package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"hyperion/internal/utils"
)

const DefaultStagger = 1500 * time.Millisecond

// Group is a set of watchers polled together on one timer. Watchers run in
// declared order with Stagger between consecutive fetches.
type Group struct {
	Name     string
	Interval time.Duration
	Stagger  time.Duration
	Watchers []*Watcher
}

type SchedulerConfig struct {
	Chat      Chat
	ChannelID string
	Groups    []Group
	Logger    *slog.Logger
	Sleep     func(ctx context.Context, d time.Duration) error
}

type Scheduler struct {
	chat      Chat
	channelID string
	groups    []Group
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = utils.Sleep
	}

	return &Scheduler{
		chat:      cfg.Chat,
		channelID: cfg.ChannelID,
		groups:    cfg.Groups,
		logger:    cfg.Logger,
		sleep:     cfg.Sleep,
	}
}

// Start arms one repeating timer per group and fires the first run of each
// immediately. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("Scheduler already running, ignoring start")
		return nil
	}
	if s.chat == nil || !s.chat.Ready() {
		return errors.New("scheduler: chat session is not ready")
	}
	if len(s.groups) == 0 {
		return errors.New("scheduler: no watcher groups configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	logger := cronLogger{logger: s.logger}
	c := cron.New(cron.WithLogger(logger))

	for _, g := range s.groups {
		group := g
		if group.Interval <= 0 {
			cancel()
			return fmt.Errorf("scheduler: group %s has no interval", group.Name)
		}

		job := cron.NewChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		).Then(cron.FuncJob(func() {
			s.RunGroup(runCtx, group)
		}))

		c.Schedule(cron.Every(group.Interval), job)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.Run()
		}()

		s.logger.Info("Scheduled watcher group", "group", group.Name, "interval", group.Interval, "watchers", len(group.Watchers))
	}

	c.Start()

	s.cron = c
	s.cancel = cancel
	s.running = true
	return nil
}

// RunGroup polls every watcher of g once. The output channel is resolved
// once per run; if it cannot be found the whole run is skipped.
func (s *Scheduler) RunGroup(ctx context.Context, g Group) []Outcome {
	logger := s.logger.With("group", g.Name)

	ch, ok := s.chat.Channel(s.channelID)
	if !ok {
		logger.Error("Channel not found, skipping tick", "channel_id", s.channelID)
		return nil
	}

	outcomes := make([]Outcome, 0, len(g.Watchers))
	for i, w := range g.Watchers {
		if ctx.Err() != nil {
			return outcomes
		}

		if i > 0 && g.Stagger > 0 {
			if err := s.sleep(ctx, g.Stagger); err != nil {
				return outcomes
			}
		}

		outcomes = append(outcomes, s.tick(ctx, w, ch))
	}

	logger.Debug("Watcher group run complete", "outcomes", outcomes)
	return outcomes
}

// RunOnce runs every group a single time, sequentially.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.chat == nil || !s.chat.Ready() {
		return errors.New("scheduler: chat session is not ready")
	}
	for _, g := range s.groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.RunGroup(ctx, g)
	}
	return nil
}

func (s *Scheduler) tick(ctx context.Context, w *Watcher, ch Channel) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Watcher panicked", "source", w.Name(), "panic", r)
			outcome = OutcomeFailed
		}
	}()
	return w.Tick(ctx, ch)
}

// Stop cancels in-flight ticks and waits for running jobs to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	c := s.cron
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	stopped := c.Stop()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: waiting for running jobs: %w", ctx.Err())
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
