package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLScraper reads result cards from the Google News search page.
type HTMLScraper struct {
	cfg    Config
	client *http.Client
}

// NewHTMLScraper creates an HTML scraper.
func NewHTMLScraper(cfg Config) *HTMLScraper {
	if cfg.Selectors == (Selectors{}) {
		cfg.Selectors = DefaultSelectors()
	}
	return &HTMLScraper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.timeout()},
	}
}

// Scrape fetches the search page and extracts up to limit articles.
func (s *HTMLScraper) Scrape(ctx context.Context, limit int) ([]RawArticle, error) {
	body, err := fetch(ctx, s.client, s.cfg.SearchURL(), s.cfg.userAgent())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(s.baseURL())
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return ExtractArticles(doc, s.cfg.Selectors, base, limit), nil
}

func (s *HTMLScraper) baseURL() string {
	if s.cfg.BaseURL != "" {
		return s.cfg.BaseURL
	}
	return DefaultBaseURL
}

// ExtractArticles reads result cards from doc in page order. Cards without
// a title or href are dropped. A limit below 1 means no limit.
func ExtractArticles(doc *goquery.Document, sel Selectors, base *url.URL, limit int) []RawArticle {
	articles := []RawArticle{}

	doc.Find(sel.Card).EachWithBreak(func(i int, card *goquery.Selection) bool {
		titleTag := card.Find(sel.Title).First()
		if titleTag.Length() == 0 {
			return true
		}

		title := normalizeSpace(titleTag.Text())
		href, _ := titleTag.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" {
			return true
		}

		link, err := resolveLink(base, href)
		if err != nil {
			return true
		}

		article := RawArticle{Title: title, Link: link}

		if sel.Source != "" {
			article.Source = normalizeSpace(card.Find(sel.Source).First().Text())
		}

		if sel.Time != "" {
			timeTag := card.Find(sel.Time).First()
			if dt, ok := timeTag.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
				article.PublishedAt = strings.TrimSpace(dt)
			} else {
				article.PublishedAt = normalizeSpace(timeTag.Text())
			}
		}

		articles = append(articles, article)
		return limit < 1 || len(articles) < limit
	})

	return articles
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
