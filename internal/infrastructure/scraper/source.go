package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"newspulse/internal/config"
	"newspulse/internal/domain"
	"newspulse/internal/ports"
)

// MultiSource implements ports.ArticleSource over configured sites, each
// handled by a registered scanner strategy. A single failing site is logged
// and skipped; FetchAll fails only when every site fails.
type MultiSource struct {
	registry *Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*MultiSource)(nil)

// NewMultiSource wires the scanner registry with config-defined sites.
func NewMultiSource(reg *Registry, sites []config.SiteConfig, logger *slog.Logger) *MultiSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSource{
		registry: reg,
		sites:    sites,
		logger:   logger,
	}
}

// FetchAll aggregates raw articles across all configured sites.
func (s *MultiSource) FetchAll(ctx context.Context) ([]domain.RawArticle, error) {
	if s.registry == nil || len(s.sites) == 0 {
		return nil, fmt.Errorf("no sites configured")
	}

	var (
		aggregated []domain.RawArticle
		lastErr    error
	)
	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			s.logger.Warn("skipping site", "site", site.Name, "error", err)
			lastErr = err
			continue
		}

		results, err := strategy.Scan(ctx, site)
		if err != nil {
			s.logger.Warn("site fetch failed", "site", site.Name, "scanner", site.Scanner, "error", err)
			lastErr = err
			continue
		}

		// Scanners may reuse their backing arrays across calls; copy before
		// backfilling the source name so one site never taints another.
		for _, article := range results {
			if article.Source == "" {
				article.Source = site.Name
			}
			aggregated = append(aggregated, article)
		}
		s.logger.Debug("site produced articles", "site", site.Name, "count", len(results))
	}

	if len(aggregated) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all sites failed: %w", lastErr)
	}

	s.logger.Debug("fetch complete", "sites", len(s.sites), "total_articles", len(aggregated))
	return aggregated, nil
}

// TrendingTopics aggregates topic signals over the fetched batch.
func (s *MultiSource) TrendingTopics(_ context.Context, articles []domain.RawArticle) ([]domain.TrendingTopic, error) {
	return ExtractTrending(articles, maxTrendingTopics), nil
}
