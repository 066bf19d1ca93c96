package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newspulse/internal/domain"
	"newspulse/internal/ports"
)

const (
	// maxBatchSize bounds how many raw articles one cycle will process.
	maxBatchSize = 20

	fallbackCategory   = "Technology"
	fallbackSentiment  = "Neutral"
	fallbackSummaryLen = 200
)

// PipelineDeps wires the external collaborators into the enrichment pipeline.
type PipelineDeps struct {
	Source   ports.ArticleSource
	Enricher ports.Enricher
	Logger   *slog.Logger
	Now      func() time.Time
}

// Pipeline drives one fetch-enrich cycle and assembles the resulting snapshot.
type Pipeline struct {
	source   ports.ArticleSource
	enricher ports.Enricher
	logger   *slog.Logger
	now      func() time.Time
}

// NewPipeline constructs the enrichment pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{
		source:   deps.Source,
		enricher: deps.Enricher,
		logger:   deps.Logger,
		now:      deps.Now,
	}
}

// RunCycle executes one complete cycle: fetch raw articles, enrich each one,
// and assemble the snapshot. Fetch failures fall back to the built-in sample
// set and per-article enrichment failures skip that article, so the returned
// snapshot is always publishable; the only error path is interruption.
func (p *Pipeline) RunCycle(ctx context.Context) (domain.Snapshot, error) {
	raw, trending := p.fetch(ctx)

	// One availability probe per cycle; the result covers the whole batch.
	available := p.enricher != nil && p.enricher.IsAvailable(ctx)

	if len(raw) > maxBatchSize {
		raw = raw[:maxBatchSize]
	}

	processed := make([]domain.ProcessedArticle, 0, len(raw))
	for _, article := range raw {
		if err := ctx.Err(); err != nil {
			return domain.Snapshot{}, fmt.Errorf("cycle interrupted: %w", err)
		}

		enriched, err := p.enrich(ctx, article, available)
		if err != nil {
			p.logger.Warn("skipping article", "title", article.Title, "source", article.Source, "error", err)
			continue
		}
		enriched.ID = len(processed) + 1
		processed = append(processed, enriched)
	}

	return domain.Snapshot{
		Articles:  processed,
		Trending:  trending,
		CreatedAt: p.now(),
	}, nil
}

// fetch returns the raw batch and trending topics for this cycle. A failed or
// empty fetch substitutes the sample set with empty trending.
func (p *Pipeline) fetch(ctx context.Context) ([]domain.RawArticle, []domain.TrendingTopic) {
	if p.source == nil {
		return domain.SampleArticles(), nil
	}

	raw, err := p.source.FetchAll(ctx)
	if err != nil {
		p.logger.Warn("fetch failed, substituting sample articles", "error", err)
		return domain.SampleArticles(), nil
	}
	if len(raw) == 0 {
		p.logger.Warn("no articles fetched, substituting sample articles")
		return domain.SampleArticles(), nil
	}

	trending, err := p.source.TrendingTopics(ctx, raw)
	if err != nil {
		p.logger.Warn("trending aggregation failed", "error", err)
		trending = nil
	}
	return raw, trending
}

func (p *Pipeline) enrich(ctx context.Context, raw domain.RawArticle, available bool) (domain.ProcessedArticle, error) {
	now := p.now()
	published := raw.Published
	if published.IsZero() {
		published = now
	}

	article := domain.ProcessedArticle{
		Title:       raw.Title,
		Content:     raw.Content,
		Source:      raw.Source,
		URL:         raw.URL,
		Published:   published,
		ProcessedAt: now,
	}

	if !available {
		article.Category = fallbackCategory
		article.Summary = fallbackSummary(raw.Content)
		article.Sentiment = fallbackSentiment
		article.Keywords = []string{}
		return article, nil
	}

	category, err := p.enricher.Categorize(ctx, raw.Title, raw.Content)
	if err != nil {
		return domain.ProcessedArticle{}, fmt.Errorf("categorize: %w", err)
	}
	summary, err := p.enricher.Summarize(ctx, raw.Title, raw.Content)
	if err != nil {
		return domain.ProcessedArticle{}, fmt.Errorf("summarize: %w", err)
	}
	sentiment, err := p.enricher.Sentiment(ctx, raw.Content)
	if err != nil {
		return domain.ProcessedArticle{}, fmt.Errorf("sentiment: %w", err)
	}
	keywords, err := p.enricher.Keywords(ctx, raw.Content)
	if err != nil {
		return domain.ProcessedArticle{}, fmt.Errorf("keywords: %w", err)
	}

	article.Category = category
	article.Summary = summary
	article.Sentiment = sentiment
	article.Keywords = keywords
	return article, nil
}

// fallbackSummary is the deterministic summary used while the enricher is
// offline: the first 200 characters of content plus an ellipsis marker.
func fallbackSummary(content string) string {
	runes := []rune(content)
	if len(runes) > fallbackSummaryLen {
		runes = runes[:fallbackSummaryLen]
	}
	return string(runes) + "..."
}
