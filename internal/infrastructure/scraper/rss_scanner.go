package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"newspulse/internal/config"
	"newspulse/internal/domain"
)

// RSSScanner fetches articles from RSS/Atom feeds.
type RSSScanner struct {
	parser *gofeed.Parser
}

// NewRSSScanner builds a scanner with a default feed parser.
func NewRSSScanner() *RSSScanner {
	return &RSSScanner{parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan parses the feed and converts items to raw articles, newest first as
// the feed orders them.
func (s *RSSScanner) Scan(ctx context.Context, site config.SiteConfig) ([]domain.RawArticle, error) {
	if site.URL == "" {
		return nil, fmt.Errorf("site %s has no url", site.Name)
	}

	feed, err := s.parser.ParseURLWithContext(site.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", site.Name, err)
	}

	articles := make([]domain.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if site.Limit > 0 && len(articles) >= site.Limit {
			break
		}
		if item.Title == "" {
			continue
		}

		content := item.Description
		if content == "" {
			content = item.Content
		}

		article := domain.RawArticle{
			Title:   strings.TrimSpace(item.Title),
			Content: stripHTML(content),
			Source:  site.Name,
			URL:     item.Link,
		}
		if item.PublishedParsed != nil {
			article.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			article.Published = *item.UpdatedParsed
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// stripHTML drops tags and collapses whitespace in feed descriptions, which
// frequently carry markup.
func stripHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
