package platforms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

type fakeSender struct {
	channels map[string]*discordgo.Channel
	lookups  int
	sent     []string
	sendErr  error
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, channelID+":"+content)
	return &discordgo.Message{ID: "m1", ChannelID: channelID, Content: content}, nil
}

func (f *fakeSender) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.lookups++
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found, {\"message\": \"Unknown Channel\"}")
	}
	return ch, nil
}

func newTestPlatform(t *testing.T, sender *fakeSender) *DiscordPlatform {
	t.Helper()
	p, err := NewDiscordPlatform("token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewDiscordPlatform: %v", err)
	}
	p.sender = sender
	return p
}

func TestNewDiscordPlatform_RequiresToken(t *testing.T) {
	if _, err := NewDiscordPlatform("", nil); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestDiscordPlatform_Ready(t *testing.T) {
	p := newTestPlatform(t, &fakeSender{})
	if p.Ready() {
		t.Fatal("platform should not be ready before the gateway confirms")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := p.WaitReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitReady = %v, want deadline exceeded", err)
	}

	p.markReady()
	p.markReady()
	if !p.Ready() {
		t.Error("platform should be ready")
	}
	if err := p.WaitReady(context.Background()); err != nil {
		t.Errorf("WaitReady: %v", err)
	}
}

func TestDiscordPlatform_ChannelLookup(t *testing.T) {
	sender := &fakeSender{channels: map[string]*discordgo.Channel{
		"100": {ID: "100", Type: discordgo.ChannelTypeGuildText},
		"200": {ID: "200", Type: discordgo.ChannelTypeGuildVoice},
	}}
	p := newTestPlatform(t, sender)

	ch, ok := p.Channel("100")
	if !ok {
		t.Fatal("expected text channel to resolve")
	}
	if ch.ID() != "100" {
		t.Errorf("ID = %q, want 100", ch.ID())
	}

	if _, ok := p.Channel("100"); !ok {
		t.Fatal("expected cached channel to resolve")
	}
	if sender.lookups != 1 {
		t.Errorf("REST lookups = %d, want 1", sender.lookups)
	}

	if _, ok := p.Channel("200"); ok {
		t.Error("voice channel should not resolve")
	}
	if _, ok := p.Channel("404"); ok {
		t.Error("unknown channel should not resolve")
	}
}

func TestDiscordChannel_Send(t *testing.T) {
	sender := &fakeSender{channels: map[string]*discordgo.Channel{
		"100": {ID: "100", Type: discordgo.ChannelTypeGuildText},
	}}
	p := newTestPlatform(t, sender)

	ch, ok := p.Channel("100")
	if !ok {
		t.Fatal("expected channel")
	}
	if err := ch.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if diff := cmp.Diff([]string{"100:hello"}, sender.sent); diff != "" {
		t.Errorf("sent mismatch (-want +got):\n%s", diff)
	}

	sender.sendErr = errors.New("HTTP 403 Forbidden")
	if err := ch.Send(context.Background(), "again"); err == nil {
		t.Error("expected send error")
	}
}

func TestDiscordChannel_SendFailureForgetsChannel(t *testing.T) {
	sender := &fakeSender{channels: map[string]*discordgo.Channel{
		"100": {ID: "100", Type: discordgo.ChannelTypeGuildText},
	}}
	p := newTestPlatform(t, sender)

	ch, ok := p.Channel("100")
	if !ok {
		t.Fatal("expected channel")
	}
	if _, ok := p.Channel("100"); !ok || sender.lookups != 1 {
		t.Fatalf("cached lookup: ok=%v lookups=%d, want one REST lookup", ok, sender.lookups)
	}

	sender.sendErr = errors.New("HTTP 404 Not Found")
	if err := ch.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected send error")
	}

	delete(sender.channels, "100")
	if _, ok := p.Channel("100"); ok {
		t.Error("deleted channel should not resolve after a failed send")
	}
	if sender.lookups != 2 {
		t.Errorf("REST lookups = %d, want 2", sender.lookups)
	}
}
