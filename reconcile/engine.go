// Package reconcile decides which scraped articles become new sheet rows
// and which refresh existing ones, and applies the resulting plan.
package reconcile

import (
	"net/url"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/pevans/banknews/classify"
	"github.com/pevans/banknews/scraper"
	"github.com/pevans/banknews/temporal"
)

// Skip reasons.
const (
	ReasonMissingLink   = "missing link"
	ReasonMissingTitle  = "missing title"
	ReasonInvalidLink   = "invalid link"
	ReasonDuplicateLink = "duplicate link in batch"
)

// Engine turns a scraped batch into a write plan.
type Engine struct {
	classifier *classify.Classifier
	loc        *time.Location
}

// NewEngine creates an engine that classifies titles with classifier and
// normalizes timestamps into loc.
func NewEngine(classifier *classify.Classifier, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{classifier: classifier, loc: loc}
}

// Reconcile builds the plan for articles, in scraped order. Links found in
// index become updates, other valid articles become inserts stamped with
// now. A link is written at most once per batch; later repeats are skipped.
func (e *Engine) Reconcile(
	articles []scraper.RawArticle,
	index LinkIndex,
	issuers *classify.IssuerMatcher,
	now time.Time,
) *Plan {
	plan := &Plan{}
	stamp := temporal.Format(now, e.loc)
	seen := make(map[string]struct{}, len(articles))

	for i, raw := range articles {
		link := strings.TrimSpace(raw.Link)
		title := strings.TrimSpace(raw.Title)

		if reason := validate(link, title); reason != "" {
			plan.Skipped = append(plan.Skipped, Skip{Position: i, Link: link, Reason: reason})
			log.Debug().Int("position", i).Str("link", link).Str("reason", reason).Msg("skipping article")
			continue
		}

		if _, dup := seen[link]; dup {
			plan.Skipped = append(plan.Skipped, Skip{Position: i, Link: link, Reason: ReasonDuplicateLink})
			log.Debug().Int("position", i).Str("link", link).Msg("skipping repeated link")
			continue
		}
		seen[link] = struct{}{}

		article := e.normalize(raw, link, title, issuers)

		if row, ok := index.Lookup(link); ok {
			plan.Updates = append(plan.Updates, Update{
				Row:        row,
				Link:       link,
				LastSeenAt: stamp,
				Published:  article.Published,
				Symbol:     article.Symbol,
			})
			continue
		}

		plan.Inserts = append(plan.Inserts, Insert{
			FirstSeenAt: stamp,
			LastSeenAt:  stamp,
			Article:     article,
		})
	}

	return plan
}

// normalize derives the classified, time-bucketed form of raw. A timestamp
// that cannot be parsed leaves Published nil.
func (e *Engine) normalize(raw scraper.RawArticle, link, title string, issuers *classify.IssuerMatcher) Article {
	source := strings.TrimSpace(raw.Source)
	article := Article{
		Link:   link,
		Title:  title,
		Source: source,
	}

	if e.classifier != nil {
		article.IsNegative, article.NegKeyword = e.classifier.Classify(title)
	}
	if issuers != nil {
		article.Symbol = issuers.Detect(title, source)
	}

	if raw.PublishedAt != "" {
		published, err := temporal.Normalize(raw.PublishedAt, e.loc)
		if err != nil {
			log.Debug().Str("link", link).Str("published_at", raw.PublishedAt).Err(err).Msg("unparseable publication time")
		} else {
			article.Published = &published
		}
	}

	return article
}

// validate returns the skip reason for an article, or "" if it is usable.
func validate(link, title string) string {
	if link == "" {
		return ReasonMissingLink
	}
	if title == "" {
		return ReasonMissingTitle
	}

	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ReasonInvalidLink
	}
	return ""
}
