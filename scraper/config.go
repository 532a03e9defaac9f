package scraper

import (
	"errors"
	"net/url"
	"time"
)

// Scraping modes.
const (
	ModeHTML = "html"
	ModeRSS  = "rss"
)

// ErrUnknownMode is returned for an unsupported scraping mode.
var ErrUnknownMode = errors.New("unknown scraper mode")

const (
	DefaultBaseURL   = "https://news.google.com"
	DefaultQuery     = "bank"
	DefaultUserAgent = "Mozilla/5.0 (compatible; MVP-Scraper/1.0)"
	DefaultTimeout   = 15 * time.Second
)

// Selectors locate the parts of a result card on the search page.
type Selectors struct {
	Card   string `yaml:"card"`
	Title  string `yaml:"title"`
	Source string `yaml:"source"`
	Time   string `yaml:"time"`
}

// DefaultSelectors returns the selectors for the current Google News markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:   "article",
		Title:  "a.JtKRv",
		Source: ".vr1PYe",
		Time:   "time.hvbAAd",
	}
}

// Config defines where and how to scrape.
type Config struct {
	Mode      string        `yaml:"mode" validate:"omitempty,oneof=html rss"`
	Query     string        `yaml:"query"`
	URL       string        `yaml:"url" validate:"omitempty,url"`
	BaseURL   string        `yaml:"base_url" validate:"omitempty,url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	Limit     int           `yaml:"limit" validate:"gte=1"`
	Selectors Selectors     `yaml:"selectors"`
}

// DefaultConfig returns the configuration for scraping Indonesian Google
// News results for "bank".
func DefaultConfig() Config {
	return Config{
		Mode:      ModeHTML,
		Query:     DefaultQuery,
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		Limit:     100,
		Selectors: DefaultSelectors(),
	}
}

// SearchURL returns the URL to fetch: the explicit URL if set, otherwise
// the Google News search page or RSS feed for Query.
func (c Config) SearchURL() string {
	if c.URL != "" {
		return c.URL
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	query := c.Query
	if query == "" {
		query = DefaultQuery
	}

	path := "/search"
	if c.Mode == ModeRSS {
		path = "/rss/search"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "id")
	params.Set("gl", "ID")
	params.Set("ceid", "ID:id")
	return base + path + "?" + params.Encode()
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}
