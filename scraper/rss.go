package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSScraper reads the Google News RSS search feed.
type RSSScraper struct {
	cfg    Config
	client *http.Client
}

// NewRSSScraper creates an RSS scraper.
func NewRSSScraper(cfg Config) *RSSScraper {
	return &RSSScraper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.timeout()},
	}
}

// Scrape fetches and parses the feed, returning up to limit articles.
func (s *RSSScraper) Scrape(ctx context.Context, limit int) ([]RawArticle, error) {
	body, err := fetch(ctx, s.client, s.cfg.SearchURL(), s.cfg.userAgent())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	articles := []RawArticle{}
	for _, item := range feed.Items {
		if limit > 0 && len(articles) >= limit {
			break
		}
		articles = append(articles, FeedItemToArticle(item))
	}

	return articles, nil
}

// FeedItemToArticle converts a feed item. Google News RSS titles end with
// " - Publisher"; that suffix becomes the source.
func FeedItemToArticle(item *gofeed.Item) RawArticle {
	title := normalizeSpace(item.Title)
	var source string
	if i := strings.LastIndex(title, " - "); i > 0 {
		source = strings.TrimSpace(title[i+3:])
		title = strings.TrimSpace(title[:i])
	}

	var publishedAt string
	switch {
	case item.PublishedParsed != nil:
		publishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		publishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
	default:
		publishedAt = strings.TrimSpace(item.Published)
	}

	return RawArticle{
		Title:       title,
		Link:        strings.TrimSpace(item.Link),
		Source:      source,
		PublishedAt: publishedAt,
	}
}
