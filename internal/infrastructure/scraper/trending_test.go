package scraper

import (
	"testing"

	"newspulse/internal/domain"
)

func TestExtractTrendingCountsAndOrders(t *testing.T) {
	t.Parallel()

	articles := []domain.RawArticle{
		{Title: "Quantum computing and the quantum future"},
		{Title: "Quantum networks arrive"},
		{Title: "Computing budgets for the cloud"},
	}

	topics := ExtractTrending(articles, 10)
	if len(topics) == 0 {
		t.Fatal("expected topics")
	}

	if topics[0].Topic != "Quantum" || topics[0].Mentions != 3 {
		t.Fatalf("expected Quantum x3 first, got %+v", topics[0])
	}
	if topics[1].Topic != "Computing" || topics[1].Mentions != 2 {
		t.Fatalf("expected Computing x2 second, got %+v", topics[1])
	}

	for _, topic := range topics {
		if topic.Topic == "and" || topic.Topic == "the" || topic.Topic == "for" {
			t.Fatalf("stopword leaked into trending: %+v", topic)
		}
	}
}

func TestExtractTrendingPrefersCommonCasing(t *testing.T) {
	t.Parallel()

	articles := []domain.RawArticle{
		{Title: "RUST rewrites everywhere"},
		{Title: "RUST adoption grows"},
		{Title: "why rust keeps winning"},
	}

	topics := ExtractTrending(articles, 10)
	if len(topics) == 0 || topics[0].Topic != "RUST" || topics[0].Mentions != 3 {
		t.Fatalf("expected majority casing RUST x3, got %+v", topics)
	}

	// Equal casing counts break lexicographically.
	tied := ExtractTrending([]domain.RawArticle{
		{Title: "Kernel news"},
		{Title: "kernel news"},
	}, 10)
	if len(tied) == 0 || tied[0].Topic != "Kernel" {
		t.Fatalf("expected tie to break to Kernel, got %+v", tied)
	}
}

func TestExtractTrendingDeterministicTieBreak(t *testing.T) {
	t.Parallel()

	articles := []domain.RawArticle{
		{Title: "zebra alpha"},
		{Title: "alpha zebra"},
	}

	first := ExtractTrending(articles, 10)
	second := ExtractTrending(articles, 10)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 topics, got %d and %d", len(first), len(second))
	}
	if first[0].Topic != "alpha" {
		t.Fatalf("ties must order alphabetically, got %+v", first)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ordering not deterministic: %+v vs %+v", first, second)
		}
	}
}

func TestExtractTrendingLimitAndShortTokens(t *testing.T) {
	t.Parallel()

	articles := []domain.RawArticle{
		{Title: "go ai ml database database kernel kernel compiler runtime network storage queue cache"},
	}

	topics := ExtractTrending(articles, 3)
	if len(topics) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(topics))
	}
	for _, topic := range topics {
		if topic.Topic == "go" || topic.Topic == "ai" || topic.Topic == "ml" {
			t.Fatalf("tokens under 3 runes must be dropped: %+v", topic)
		}
	}
}

func TestExtractTrendingEmptyBatch(t *testing.T) {
	t.Parallel()

	if topics := ExtractTrending(nil, 10); len(topics) != 0 {
		t.Fatalf("expected no topics, got %+v", topics)
	}
}
