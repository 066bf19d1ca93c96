package ports

import (
	"context"

	"newspulse/internal/domain"
)

// ArticleSource pulls fresh articles from the configured upstream providers.
type ArticleSource interface {
	// FetchAll returns the raw batch for one cycle. It fails only when every
	// provider is unreachable; partial provider failures are absorbed.
	FetchAll(ctx context.Context) ([]domain.RawArticle, error)

	// TrendingTopics aggregates topic signals over the fetched batch.
	TrendingTopics(ctx context.Context, articles []domain.RawArticle) ([]domain.TrendingTopic, error)
}

// Enricher derives AI metadata for a single article. Each call may fail
// independently for a given article.
type Enricher interface {
	IsAvailable(ctx context.Context) bool
	Categorize(ctx context.Context, title, content string) (string, error)
	Summarize(ctx context.Context, title, content string) (string, error)
	Sentiment(ctx context.Context, content string) (string, error)
	Keywords(ctx context.Context, content string) ([]string, error)
}
