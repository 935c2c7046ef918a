package core

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"hyperion/internal/types"
)

type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseFetching
)

func (p Phase) String() string {
	if p == PhaseFetching {
		return "fetching"
	}
	return "idle"
}

// Outcome is how a single tick ended.
type Outcome int

const (
	OutcomeNoChange Outcome = iota
	OutcomeChanged
	OutcomeRateLimited
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeChanged:
		return "changed"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFailed:
		return "failed"
	default:
		return "no_change"
	}
}

// WatcherState is the last item id a watcher has announced. It lives for the
// process lifetime only.
type WatcherState struct {
	lastSeenID string
	seen       bool
}

func (s *WatcherState) LastSeen() (string, bool) {
	return s.lastSeenID, s.seen
}

// observe records id and reports whether it differs from the last one.
func (s *WatcherState) observe(id string) bool {
	if s.seen && s.lastSeenID == id {
		return false
	}
	s.lastSeenID = id
	s.seen = true
	return true
}

type WatcherConfig struct {
	Source    types.Source
	Fetcher   Fetcher
	Extractor Extractor
	Notifier  Notifier
	Logger    *slog.Logger
}

// Watcher polls one source and announces its newest item whenever it changes.
type Watcher struct {
	source    types.Source
	fetcher   Fetcher
	extractor Extractor
	notifier  Notifier
	logger    *slog.Logger

	mu    sync.Mutex
	state WatcherState
	phase atomic.Int32
}

func NewWatcher(cfg WatcherConfig) *Watcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		source:    cfg.Source,
		fetcher:   cfg.Fetcher,
		extractor: cfg.Extractor,
		notifier:  cfg.Notifier,
		logger:    logger.With("source", cfg.Source.Name),
	}
}

func (w *Watcher) Name() string {
	return w.source.Name
}

func (w *Watcher) Source() types.Source {
	return w.source
}

func (w *Watcher) Phase() Phase {
	return Phase(w.phase.Load())
}

func (w *Watcher) LastSeen() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.LastSeen()
}

// Tick runs one poll-and-compare cycle and posts to ch on change. Errors are
// logged here and never returned; the outcome says how the tick ended.
func (w *Watcher) Tick(ctx context.Context, ch Channel) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.phase.Store(int32(PhaseFetching))
	defer w.phase.Store(int32(PhaseIdle))

	raw, err := w.fetcher.Fetch(ctx, w.source)
	if err != nil {
		if types.IsRateLimited(err) {
			w.logger.Warn("Source rate limited, skipping tick", "error", err)
			return OutcomeRateLimited
		}
		if ctx.Err() != nil {
			w.logger.Debug("Fetch cancelled", "error", err)
			return OutcomeFailed
		}
		w.logger.Error("Fetch failed", "error", err)
		return OutcomeFailed
	}

	item, err := w.extractor.Extract(raw)
	if err != nil {
		w.logger.Error("Extract failed", "url", raw.URL, "error", err)
		return OutcomeFailed
	}
	if item == nil {
		w.logger.Debug("Source has no items")
		return OutcomeNoChange
	}

	if !w.state.observe(item.ID) {
		w.logger.Debug("No new item", "item_id", item.ID)
		return OutcomeNoChange
	}

	w.logger.Info("New item detected", "item_id", item.ID, "title", item.Title)

	// state is already updated: a failed send is not retried on the next tick
	n := types.Notification{Source: w.source, Item: *item}
	if err := w.notifier.Notify(ctx, ch, n); err != nil {
		w.logger.Error("Notification delivery failed", "item_id", item.ID, "error", err)
	}

	return OutcomeChanged
}
