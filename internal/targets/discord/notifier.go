package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"hyperion/internal/core"
	"hyperion/internal/storage"
	"hyperion/internal/types"
	"hyperion/internal/utils"
)

// MaxMessageLength is Discord's limit for a plain message body.
const MaxMessageLength = 2000

type NotifierConfig struct {
	// Sources with a Template or TemplateFile get that template instead of
	// the default for their mode.
	Sources    []types.Source
	Deliveries storage.DeliveryStore
	Logger     *slog.Logger
}

// Notifier formats notifications and posts them to a channel. Each post is
// attempted once.
type Notifier struct {
	overrides  map[string]*template.Template
	deliveries storage.DeliveryStore
	logger     *slog.Logger
}

func NewNotifier(cfg NotifierConfig) (*Notifier, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	overrides := make(map[string]*template.Template)
	for _, src := range cfg.Sources {
		var (
			tmpl *template.Template
			err  error
		)
		switch {
		case src.Template != "":
			tmpl, err = utils.ParseTemplate(src.Name, src.Template)
		case src.TemplateFile != "":
			tmpl, err = utils.LoadTemplate(src.TemplateFile)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("discord: source %s: %w", src.Name, err)
		}
		overrides[src.Name] = tmpl
	}

	return &Notifier{
		overrides:  overrides,
		deliveries: cfg.Deliveries,
		logger:     cfg.Logger,
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, ch core.Channel, note types.Notification) error {
	text, err := n.Format(note)
	if err != nil {
		n.record(ctx, ch, note, err)
		return &types.DeliveryError{Source: note.Source.Name, ItemID: note.Item.ID, ChannelID: ch.ID(), Err: err}
	}

	err = ch.Send(ctx, text)
	n.record(ctx, ch, note, err)
	if err != nil {
		return &types.DeliveryError{Source: note.Source.Name, ItemID: note.Item.ID, ChannelID: ch.ID(), Err: err}
	}

	n.logger.Info("Notification sent", "source", note.Source.Name, "item_id", note.Item.ID, "channel_id", ch.ID())
	return nil
}

// Format renders the message for note, truncated to MaxMessageLength.
func (n *Notifier) Format(note types.Notification) (string, error) {
	tmpl, ok := n.overrides[note.Source.Name]
	if !ok {
		tmpl, ok = defaultTemplates[note.Source.Mode]
		if !ok {
			return "", fmt.Errorf("no message template for mode %q", note.Source.Mode)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newMessageData(note)); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}

	return utils.Truncate(strings.TrimSpace(buf.String()), MaxMessageLength), nil
}

func (n *Notifier) record(ctx context.Context, ch core.Channel, note types.Notification, sendErr error) {
	if n.deliveries == nil {
		return
	}

	d := storage.Delivery{
		Source:    note.Source.Name,
		ItemID:    note.Item.ID,
		Title:     note.Item.Title,
		URL:       note.Item.URL,
		ChannelID: ch.ID(),
	}
	if sendErr != nil {
		d.Error = sendErr.Error()
	}

	if err := n.deliveries.Record(context.WithoutCancel(ctx), d); err != nil {
		n.logger.Warn("Failed to record delivery", "source", note.Source.Name, "item_id", note.Item.ID, "error", err)
	}
}
