package discord

import (
	"text/template"

	"hyperion/internal/types"
	"hyperion/internal/utils"
)

const (
	feedTemplate = "🔔 **r/{{.Source}}** — **{{.Title}}**\n👤 u/{{.Author}}\n🔗 {{.URL}}"
	htmlTemplate = "💬 **{{.Label}}:** {{.Title}}\n{{.URL}}"
	rssTemplate  = "📰 **{{.Source}}** — **{{.Title}}**{{if .Author}}\n👤 {{.Author}}{{end}}\n🔗 {{.URL}}"
)

// MessageData is what message templates are executed against.
type MessageData struct {
	Source string
	Label  string
	Mode   string
	ItemID string
	Title  string
	Author string
	URL    string
}

func newMessageData(n types.Notification) MessageData {
	label := n.Source.Label
	if label == "" {
		label = n.Source.Name
	}

	return MessageData{
		Source: n.Source.Name,
		Label:  label,
		Mode:   string(n.Source.Mode),
		ItemID: n.Item.ID,
		Title:  n.Item.Title,
		Author: n.Item.Author,
		URL:    n.Item.URL,
	}
}

var defaultTemplates = map[types.FetchMode]*template.Template{
	types.ModeFeed: mustParse("feed", feedTemplate),
	types.ModeHTML: mustParse("html", htmlTemplate),
	types.ModeRSS:  mustParse("rss", rssTemplate),
}

func mustParse(name, text string) *template.Template {
	tmpl, err := utils.ParseTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return tmpl
}
