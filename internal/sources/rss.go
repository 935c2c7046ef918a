package sources

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"

	"hyperion/internal/types"
	"hyperion/internal/utils"
)

type rssExtractor struct {
	source types.Source
	parser *gofeed.Parser
}

func newRSSExtractor(src types.Source) *rssExtractor {
	return &rssExtractor{
		source: src,
		parser: gofeed.NewParser(),
	}
}

func (r *rssExtractor) Extract(raw *types.Raw) (*types.Item, error) {
	feed, err := r.parser.Parse(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, types.NewParseError(r.source.Name, types.ModeRSS, fmt.Errorf("failed to parse feed: %w", err))
	}

	if len(feed.Items) == 0 {
		return nil, nil
	}
	feedItem := feed.Items[0]

	link := resolveURL(r.source.BaseURL, feedItem.Link)

	itemID := feedItem.GUID
	if itemID == "" {
		itemID = link
	}
	if itemID == "" {
		return nil, nil
	}

	title := utils.StripHTML(feedItem.Title)
	if title == "" {
		title = defaultTitle
	}

	author := ""
	if feedItem.Author != nil {
		author = feedItem.Author.Name
		if author == "" {
			author = feedItem.Author.Email
		}
	} else if len(feedItem.Authors) > 0 && feedItem.Authors[0] != nil {
		author = feedItem.Authors[0].Name
	}

	return &types.Item{
		ID:     itemID,
		Title:  title,
		Author: author,
		URL:    link,
	}, nil
}
