package domain

import "time"

// RawArticle is an article as fetched from an upstream provider, before any
// enrichment. Immutable once fetched; consumed within a single cycle.
type RawArticle struct {
	Title     string
	Content   string
	Source    string
	URL       string
	Published time.Time // zero value means unknown; the pipeline stamps ingestion time
}

// ProcessedArticle is an enriched article inside one snapshot. The ID is
// 1-based and unique within its snapshot only; it is reassigned every cycle.
type ProcessedArticle struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	Category    string    `json:"category"`
	Sentiment   string    `json:"sentiment"`
	Keywords    []string  `json:"keywords"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Published   time.Time `json:"published"`
	ProcessedAt time.Time `json:"processed_at"`
}

// TrendingTopic is one aggregated topic signal for a cycle.
type TrendingTopic struct {
	Topic    string `json:"topic"`
	Mentions int    `json:"mentions"`
}

// Snapshot is the immutable pair of article and trending data produced by one
// cycle. Article and trending lists always come from the same cycle; the
// version is assigned at publish time and only ever increases.
type Snapshot struct {
	Version   uint64             `json:"version"`
	Articles  []ProcessedArticle `json:"articles"`
	Trending  []TrendingTopic    `json:"trending"`
	CreatedAt time.Time          `json:"created_at"`
}
