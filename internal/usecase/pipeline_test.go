package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"newspulse/internal/domain"
)

type fakeSource struct {
	articles    []domain.RawArticle
	fetchErr    error
	trending    []domain.TrendingTopic
	trendingErr error
}

func (f *fakeSource) FetchAll(_ context.Context) ([]domain.RawArticle, error) {
	return f.articles, f.fetchErr
}

func (f *fakeSource) TrendingTopics(_ context.Context, _ []domain.RawArticle) ([]domain.TrendingTopic, error) {
	return f.trending, f.trendingErr
}

type fakeEnricher struct {
	mu         sync.Mutex
	available  bool
	probes     int
	failTitles map[string]bool
}

func (f *fakeEnricher) IsAvailable(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	return f.available
}

func (f *fakeEnricher) Categorize(_ context.Context, title, _ string) (string, error) {
	return "Science", nil
}

func (f *fakeEnricher) Summarize(_ context.Context, title, _ string) (string, error) {
	if f.failTitles[title] {
		return "", fmt.Errorf("model refused")
	}
	return "summary of " + title, nil
}

func (f *fakeEnricher) Sentiment(_ context.Context, _ string) (string, error) {
	return "Positive", nil
}

func (f *fakeEnricher) Keywords(_ context.Context, _ string) ([]string, error) {
	return []string{"ai"}, nil
}

func rawBatch(n int) []domain.RawArticle {
	batch := make([]domain.RawArticle, 0, n)
	for i := 1; i <= n; i++ {
		batch = append(batch, domain.RawArticle{
			Title:   fmt.Sprintf("Article %02d", i),
			Content: fmt.Sprintf("content for article %02d", i),
			Source:  "test",
		})
	}
	return batch
}

func TestRunCycleEnrichesBatch(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		articles: rawBatch(3),
		trending: []domain.TrendingTopic{{Topic: "ai", Mentions: 3}},
	}
	enricher := &fakeEnricher{available: true}
	p := NewPipeline(PipelineDeps{Source: source, Enricher: enricher})

	snap, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle error: %v", err)
	}

	if len(snap.Articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(snap.Articles))
	}
	for i, article := range snap.Articles {
		if article.ID != i+1 {
			t.Fatalf("expected id %d, got %d", i+1, article.ID)
		}
		if article.Category != "Science" || article.Sentiment != "Positive" {
			t.Fatalf("unexpected enrichment: %+v", article)
		}
		if article.Summary != "summary of "+article.Title {
			t.Fatalf("unexpected summary: %s", article.Summary)
		}
	}
	if len(snap.Trending) != 1 || snap.Trending[0].Topic != "ai" {
		t.Fatalf("unexpected trending: %+v", snap.Trending)
	}
}

func TestRunCycleProbesAvailabilityOnce(t *testing.T) {
	t.Parallel()

	enricher := &fakeEnricher{available: true}
	p := NewPipeline(PipelineDeps{Source: &fakeSource{articles: rawBatch(10)}, Enricher: enricher})

	if _, err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle error: %v", err)
	}
	if enricher.probes != 1 {
		t.Fatalf("expected a single availability probe, got %d", enricher.probes)
	}
}

func TestRunCycleFallbackWhenEnricherOffline(t *testing.T) {
	t.Parallel()

	longContent := strings.Repeat("x", 450)
	source := &fakeSource{articles: []domain.RawArticle{
		{Title: "Offline Test", Content: longContent, Source: "test"},
	}}
	p := NewPipeline(PipelineDeps{Source: source, Enricher: &fakeEnricher{available: false}})

	snap, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle error: %v", err)
	}
	if len(snap.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(snap.Articles))
	}

	article := snap.Articles[0]
	if article.Category != "Technology" {
		t.Fatalf("expected fallback category, got %s", article.Category)
	}
	if article.Sentiment != "Neutral" {
		t.Fatalf("expected neutral sentiment, got %s", article.Sentiment)
	}
	if len(article.Keywords) != 0 {
		t.Fatalf("expected no keywords, got %v", article.Keywords)
	}
	want := longContent[:200] + "..."
	if article.Summary != want {
		t.Fatalf("unexpected fallback summary: %q", article.Summary)
	}
}

func TestRunCycleSampleFallbackOnEmptyFetch(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{Source: &fakeSource{}, Enricher: &fakeEnricher{available: false}})

	snap, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle error: %v", err)
	}

	samples := domain.SampleArticles()
	if len(snap.Articles) != len(samples) {
		t.Fatalf("expected %d sample articles, got %d", len(samples), len(snap.Articles))
	}
	for i, article := range snap.Articles {
		if article.ID != i+1 {
			t.Fatalf("expected id %d, got %d", i+1, article.ID)
		}
		if article.Title != samples[i].Title {
			t.Fatalf("expected sample title %q, got %q", samples[i].Title, article.Title)
		}
	}
	if len(snap.Trending) != 0 {
		t.Fatalf("expected empty trending with sample fallback, got %+v", snap.Trending)
	}
}

func TestRunCycleSampleFallbackOnFetchError(t *testing.T) {
	t.Parallel()

	source := &fakeSource{fetchErr: fmt.Errorf("all sources down")}
	p := NewPipeline(PipelineDeps{Source: source, Enricher: &fakeEnricher{available: false}})

	snap, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle error: %v", err)
	}
	if len(snap.Articles) != 3 {
		t.Fatalf("expected 3 sample articles, got %d", len(snap.Articles))
	}
}

func TestRunCycleBoundsBatch(t *testing.T) {
	t.Parallel()

	source := &fakeSource{articles: rawBatch(25)}
	p := NewPipeline(PipelineDeps{Source: source, Enricher: &fakeEnricher{available: true}})

	snap, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle error: %v", err)
	}
	if len(snap.Articles) != 20 {
		t.Fatalf("expected 20 articles, got %d", len(snap.Articles))
	}
	for i, article := range snap.Articles {
		if article.Title != fmt.Sprintf("Article %02d", i+1) {
			t.Fatalf("batch order broken at %d: %s", i, article.Title)
		}
	}
}

func TestRunCycleSkipsFailedArticles(t *testing.T) {
	t.Parallel()

	source := &fakeSource{articles: rawBatch(5)}
	enricher := &fakeEnricher{
		available:  true,
		failTitles: map[string]bool{"Article 02": true, "Article 04": true},
	}
	p := NewPipeline(PipelineDeps{Source: source, Enricher: enricher})

	snap, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle error: %v", err)
	}

	if len(snap.Articles) != 3 {
		t.Fatalf("expected 3 surviving articles, got %d", len(snap.Articles))
	}
	wantTitles := []string{"Article 01", "Article 03", "Article 05"}
	for i, article := range snap.Articles {
		if article.ID != i+1 {
			t.Fatalf("ids must stay contiguous, got %d at position %d", article.ID, i)
		}
		if article.Title != wantTitles[i] {
			t.Fatalf("expected %s, got %s", wantTitles[i], article.Title)
		}
	}
}

func TestRunCycleAllSkippedStillPublishable(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		articles: rawBatch(2),
		trending: []domain.TrendingTopic{{Topic: "outage", Mentions: 2}},
	}
	enricher := &fakeEnricher{
		available:  true,
		failTitles: map[string]bool{"Article 01": true, "Article 02": true},
	}
	p := NewPipeline(PipelineDeps{Source: source, Enricher: enricher})

	snap, err := p.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("an all-skipped batch must not be a cycle failure: %v", err)
	}
	if len(snap.Articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(snap.Articles))
	}
	if len(snap.Trending) != 1 {
		t.Fatalf("trending from the fetch step must survive, got %+v", snap.Trending)
	}
}

func TestRunCycleInterrupted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(PipelineDeps{
		Source:   &fakeSource{articles: rawBatch(2)},
		Enricher: &fakeEnricher{available: false},
		Now:      func() time.Time { return time.Unix(0, 0) },
	})

	if _, err := p.RunCycle(ctx); err == nil {
		t.Fatal("expected error when the cycle context is cancelled")
	}
}
