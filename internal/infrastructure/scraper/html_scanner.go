package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newspulse/internal/config"
	"newspulse/internal/domain"
)

// Default selectors cover the common article-listing markup; sites override
// them per config.
const (
	defaultItemSelector    = "article"
	defaultTitleSelector   = "h2"
	defaultLinkSelector    = "a"
	defaultContentSelector = "p"
)

// HTMLScanner scrapes article listings using configurable CSS selectors.
type HTMLScanner struct {
	client *http.Client
}

// NewHTMLScanner wires an HTTP client; a nil client gets a 20s timeout default.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (s *HTMLScanner) Name() string {
	return "html"
}

// Scan fetches the site page and extracts one raw article per matched item.
// Items without a title are skipped.
func (s *HTMLScanner) Scan(ctx context.Context, site config.SiteConfig) ([]domain.RawArticle, error) {
	if site.URL == "" {
		return nil, fmt.Errorf("site %s has no url", site.Name)
	}

	doc, err := s.fetchDocument(ctx, site.URL)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Name, err)
	}

	sel := site.Selectors
	if sel.Item == "" {
		sel.Item = defaultItemSelector
	}
	if sel.Title == "" {
		sel.Title = defaultTitleSelector
	}
	if sel.Link == "" {
		sel.Link = defaultLinkSelector
	}
	if sel.Content == "" {
		sel.Content = defaultContentSelector
	}

	var articles []domain.RawArticle
	doc.Find(sel.Item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if site.Limit > 0 && len(articles) >= site.Limit {
			return false
		}

		title := strings.TrimSpace(item.Find(sel.Title).First().Text())
		if title == "" {
			return true
		}
		content := strings.TrimSpace(item.Find(sel.Content).First().Text())
		link, _ := item.Find(sel.Link).First().Attr("href")

		articles = append(articles, domain.RawArticle{
			Title:   title,
			Content: content,
			Source:  site.Name,
			URL:     resolveLink(site.URL, link),
		})
		return true
	})

	return articles, nil
}

func (s *HTMLScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "newspulse/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// resolveLink makes relative article links absolute against the page URL.
func resolveLink(pageURL, link string) string {
	if link == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
