package discord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"hyperion/internal/storage"
	"hyperion/internal/types"
)

type fakeChannel struct {
	id   string
	sent []string
	err  error
}

func (f *fakeChannel) ID() string { return f.id }

func (f *fakeChannel) Send(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type memoryDeliveries struct {
	records []storage.Delivery
}

func (m *memoryDeliveries) Record(ctx context.Context, d storage.Delivery) error {
	m.records = append(m.records, d)
	return nil
}

func (m *memoryDeliveries) Recent(ctx context.Context, limit int) ([]storage.Delivery, error) {
	return m.records, nil
}

func (m *memoryDeliveries) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return 0, nil
}

func newTestNotifier(t *testing.T, cfg NotifierConfig) *Notifier {
	t.Helper()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := NewNotifier(cfg)
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}
	return n
}

func TestNotifier_DefaultFormats(t *testing.T) {
	tests := []struct {
		name string
		note types.Notification
		want string
	}{
		{
			name: "feed",
			note: types.Notification{
				Source: types.Source{Name: "AncientCivilizations", Mode: types.ModeFeed},
				Item:   types.Item{ID: "111", Title: "Minoan frescoes", Author: "historian", URL: "https://www.reddit.com/r/AncientCivilizations/comments/111/"},
			},
			want: "🔔 **r/AncientCivilizations** — **Minoan frescoes**\n👤 u/historian\n🔗 https://www.reddit.com/r/AncientCivilizations/comments/111/",
		},
		{
			name: "html with label",
			note: types.Notification{
				Source: types.Source{Name: "hypixel-off-topic", Mode: types.ModeHTML, Label: "Hypixel Off Topic"},
				Item:   types.Item{ID: "abc", Title: "Skyblock drama", URL: "https://hypixel.net/threads/skyblock-drama.1/"},
			},
			want: "💬 **Hypixel Off Topic:** Skyblock drama\nhttps://hypixel.net/threads/skyblock-drama.1/",
		},
		{
			name: "html without label uses source name",
			note: types.Notification{
				Source: types.Source{Name: "forum", Mode: types.ModeHTML},
				Item:   types.Item{ID: "abc", Title: "t", URL: "https://example.com/t"},
			},
			want: "💬 **forum:** t\nhttps://example.com/t",
		},
		{
			name: "rss without author",
			note: types.Notification{
				Source: types.Source{Name: "golang-blog", Mode: types.ModeRSS},
				Item:   types.Item{ID: "g1", Title: "Go 1.25", URL: "https://go.dev/blog/go1.25"},
			},
			want: "📰 **golang-blog** — **Go 1.25**\n🔗 https://go.dev/blog/go1.25",
		},
		{
			name: "rss with author",
			note: types.Notification{
				Source: types.Source{Name: "golang-blog", Mode: types.ModeRSS},
				Item:   types.Item{ID: "g1", Title: "Go 1.25", Author: "Go Team", URL: "https://go.dev/blog/go1.25"},
			},
			want: "📰 **golang-blog** — **Go 1.25**\n👤 Go Team\n🔗 https://go.dev/blog/go1.25",
		},
	}

	n := newTestNotifier(t, NotifierConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Format(tt.note)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNotifier_TemplateOverride(t *testing.T) {
	src := types.Source{Name: "eu4", Mode: types.ModeFeed, Template: "[{{.Source}}] {{.Title}} by {{.Author}} {{json .ItemID}}"}
	n := newTestNotifier(t, NotifierConfig{Sources: []types.Source{src}})

	got, err := n.Format(types.Notification{Source: src, Item: types.Item{ID: "x9", Title: "Byzantium", Author: "basileus"}})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if want := `[eu4] Byzantium by basileus "x9"`; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestNotifier_TemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forum.tmpl")
	if err := os.WriteFile(path, []byte("New thread: {{.Title}} <{{.URL}}>\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	src := types.Source{Name: "forum", Mode: types.ModeHTML, TemplateFile: path}
	n := newTestNotifier(t, NotifierConfig{Sources: []types.Source{src}})

	got, err := n.Format(types.Notification{Source: src, Item: types.Item{Title: "Hello", URL: "https://hypixel.net/threads/1"}})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if want := "New thread: Hello <https://hypixel.net/threads/1>"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	if _, err := NewNotifier(NotifierConfig{Sources: []types.Source{{Name: "x", TemplateFile: filepath.Join(t.TempDir(), "missing.tmpl")}}}); err == nil {
		t.Error("expected error for missing template file")
	}
}

func TestNewNotifier_InvalidTemplate(t *testing.T) {
	_, err := NewNotifier(NotifierConfig{Sources: []types.Source{{Name: "bad", Mode: types.ModeFeed, Template: "{{.Title"}}})
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNotifier_TruncatesLongMessages(t *testing.T) {
	n := newTestNotifier(t, NotifierConfig{})
	note := types.Notification{
		Source: types.Source{Name: "Asmongold", Mode: types.ModeFeed},
		Item:   types.Item{ID: "long", Title: strings.Repeat("é", 5000), Author: "a", URL: "https://example.com"},
	}

	ch := &fakeChannel{id: "1"}
	if err := n.Notify(context.Background(), ch, note); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(ch.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(ch.sent))
	}
	msg := ch.sent[0]
	if got := utf8.RuneCountInString(msg); got != MaxMessageLength {
		t.Errorf("message length = %d, want %d", got, MaxMessageLength)
	}
	if !strings.HasSuffix(msg, "...") {
		t.Error("truncated message should end with ...")
	}
}

func TestNotifier_RecordsDeliveries(t *testing.T) {
	log := &memoryDeliveries{}
	n := newTestNotifier(t, NotifierConfig{Deliveries: log})
	note := types.Notification{
		Source: types.Source{Name: "eu4", Mode: types.ModeFeed},
		Item:   types.Item{ID: "1", Title: "Ottomans", Author: "a", URL: "https://example.com/1"},
	}

	if err := n.Notify(context.Background(), &fakeChannel{id: "42"}, note); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	sendErr := errors.New("HTTP 403 Forbidden")
	err := n.Notify(context.Background(), &fakeChannel{id: "42", err: sendErr}, note)
	if !types.IsDeliveryError(err) {
		t.Fatalf("error = %v, want DeliveryError", err)
	}
	if !errors.Is(err, sendErr) {
		t.Errorf("DeliveryError should wrap the send error")
	}

	want := []storage.Delivery{
		{Source: "eu4", ItemID: "1", Title: "Ottomans", URL: "https://example.com/1", ChannelID: "42"},
		{Source: "eu4", ItemID: "1", Title: "Ottomans", URL: "https://example.com/1", ChannelID: "42", Error: "HTTP 403 Forbidden"},
	}
	if diff := cmp.Diff(want, log.records, cmpopts.IgnoreFields(storage.Delivery{}, "DeliveredAt")); diff != "" {
		t.Errorf("deliveries mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifier_UnknownMode(t *testing.T) {
	n := newTestNotifier(t, NotifierConfig{})
	err := n.Notify(context.Background(), &fakeChannel{id: "1"}, types.Notification{Source: types.Source{Name: "x", Mode: "gopher"}})
	if !types.IsDeliveryError(err) {
		t.Errorf("error = %v, want DeliveryError", err)
	}
}
