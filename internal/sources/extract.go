package sources

import (
	"fmt"
	"net/url"
	"strings"

	"hyperion/internal/types"
)

const (
	DefaultSelector = "div.structItem-title a"
	defaultTitle    = "(no title)"
	defaultAuthor   = "unknown"
)

// Extractor turns a raw response into the newest Item. A nil Item with a
// nil error means the source has nothing to report yet.
type Extractor interface {
	Extract(raw *types.Raw) (*types.Item, error)
}

func NewExtractor(src types.Source) (Extractor, error) {
	switch src.Mode {
	case types.ModeFeed:
		return &feedExtractor{source: src}, nil
	case types.ModeHTML:
		selector := src.Selector
		if selector == "" {
			selector = DefaultSelector
		}
		return &htmlExtractor{source: src, selector: selector}, nil
	case types.ModeRSS:
		return newRSSExtractor(src), nil
	default:
		return nil, fmt.Errorf("unsupported fetch mode: %q", src.Mode)
	}
}

// resolveURL makes ref absolute against base. Unparseable refs are returned as-is.
func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == "" {
		return ref
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if refURL.IsAbs() {
		return ref
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
