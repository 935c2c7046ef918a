package sources

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hyperion/internal/types"
	"hyperion/internal/utils"
)

// htmlExtractor reads the first element matching selector. The source
// exposes no stable id, so the link and title pair is fingerprinted instead.
type htmlExtractor struct {
	source   types.Source
	selector string
}

func (h *htmlExtractor) Extract(raw *types.Raw) (*types.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, types.NewParseError(h.source.Name, types.ModeHTML, fmt.Errorf("failed to parse HTML: %w", err))
	}

	selection := doc.Find(h.selector).First()
	if selection.Length() == 0 {
		return nil, nil
	}

	href, ok := selection.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, types.NewParseError(h.source.Name, types.ModeHTML, errors.New("matched element has no href"))
	}

	title := strings.TrimSpace(selection.Text())
	if title == "" {
		title = defaultTitle
	}
	link := resolveURL(h.source.BaseURL, href)

	return &types.Item{
		ID:    utils.Fingerprint(link, title),
		Title: title,
		URL:   link,
	}, nil
}
