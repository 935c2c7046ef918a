package types

import (
	"strings"
	"time"
)

type FetchMode string

const (
	ModeFeed FetchMode = "feed"
	ModeHTML FetchMode = "html"
	ModeRSS  FetchMode = "rss"
)

func (m FetchMode) Valid() bool {
	switch m {
	case ModeFeed, ModeHTML, ModeRSS:
		return true
	}
	return false
}

// Source is one watched origin. It is built once from configuration and
// never mutated afterwards.
type Source struct {
	Name         string
	Mode         FetchMode
	Endpoint     string
	BaseURL      string
	Selector     string
	Label        string
	Interval     time.Duration
	Group        string
	Template     string
	TemplateFile string
}

// URL expands the {name} placeholder in the endpoint.
func (s Source) URL() string {
	return strings.ReplaceAll(s.Endpoint, "{name}", s.Name)
}

// Raw is the body of a successful fetch.
type Raw struct {
	Source      string
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

type Item struct {
	ID     string
	Title  string
	Author string
	URL    string
}

type Notification struct {
	Source Source
	Item   Item
}
