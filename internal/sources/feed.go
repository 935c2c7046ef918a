package sources

import (
	"encoding/json"
	"errors"

	"hyperion/internal/types"
	"hyperion/internal/utils"
)

type feedExtractor struct {
	source types.Source
}

type listing struct {
	Data *struct {
		Children *[]listingChild `json:"children"`
	} `json:"data"`
}

type listingChild struct {
	Data listingPost `json:"data"`
}

type listingPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
	Author    string `json:"author"`
}

func (f *feedExtractor) Extract(raw *types.Raw) (*types.Item, error) {
	var l listing
	if err := json.Unmarshal(raw.Body, &l); err != nil {
		return nil, types.NewParseError(f.source.Name, types.ModeFeed, err)
	}
	if l.Data == nil || l.Data.Children == nil {
		return nil, types.NewParseError(f.source.Name, types.ModeFeed, errors.New("missing data.children"))
	}

	children := *l.Data.Children
	if len(children) == 0 {
		return nil, nil
	}

	post := children[0].Data
	if post.ID == "" {
		return nil, nil
	}

	title := utils.UnescapeText(post.Title)
	if title == "" {
		title = defaultTitle
	}
	author := post.Author
	if author == "" {
		author = defaultAuthor
	}

	return &types.Item{
		ID:     post.ID,
		Title:  title,
		Author: author,
		URL:    resolveURL(f.source.BaseURL, post.Permalink),
	}, nil
}
