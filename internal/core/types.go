package core

import (
	"context"

	"hyperion/internal/types"
)

type Fetcher interface {
	Fetch(ctx context.Context, src types.Source) (*types.Raw, error)
}

type Extractor interface {
	Extract(raw *types.Raw) (*types.Item, error)
}

// Channel is the single output channel notifications are posted to.
type Channel interface {
	ID() string
	Send(ctx context.Context, text string) error
}

// Chat is the chat platform session as seen by the scheduler.
type Chat interface {
	Ready() bool
	Channel(id string) (Channel, bool)
}

type Notifier interface {
	Notify(ctx context.Context, ch Channel, n types.Notification) error
}

// Lifecycle initializes and tears down the shared resources a Bot runs on.
type Lifecycle interface {
	InitializeAll(ctx context.Context) error
	CloseAll(ctx context.Context) error
}
