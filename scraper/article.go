// Package scraper harvests raw article listings from Google News search
// results, either from the HTML search page or from the RSS search feed.
package scraper

import (
	"context"
	"fmt"
	"net/url"
)

// RawArticle is one listing as scraped. Any field may be empty.
type RawArticle struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// Scraper produces at most limit raw articles, in page order.
type Scraper interface {
	Scrape(ctx context.Context, limit int) ([]RawArticle, error)
}

// New returns the scraper selected by cfg.Mode.
func New(cfg Config) (Scraper, error) {
	switch cfg.Mode {
	case ModeHTML, "":
		return NewHTMLScraper(cfg), nil
	case ModeRSS:
		return NewRSSScraper(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}

// resolveLink resolves href against base. Google News emits hrefs such as
// "./read/CBMi..." relative to the site root.
func resolveLink(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if base == nil {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}
