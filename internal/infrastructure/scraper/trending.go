package scraper

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"newspulse/internal/domain"
)

const maxTrendingTopics = 10

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "with", "from", "this", "that", "how", "why",
		"what", "when", "where", "who", "new", "its", "into", "your", "are",
		"has", "have", "had", "will", "can", "could", "should", "would",
		"after", "before", "over", "under", "more", "most", "not", "but",
		"you", "about", "their", "them", "they", "was", "were", "been",
		"being", "out", "now", "get", "gets", "says", "said", "just", "here",
		"all", "may", "one", "two", "his", "her", "our", "via", "amid",
	} {
		stopwords[w] = struct{}{}
	}
}

// ExtractTrending counts title tokens across the batch and returns the most
// mentioned topics, capped at limit. Ordering is deterministic: mentions
// descending, then topic ascending. Each topic is labeled with its most
// common casing across the batch; casing ties break lexicographically.
func ExtractTrending(articles []domain.RawArticle, limit int) []domain.TrendingTopic {
	counts := map[string]int{}
	casings := map[string]map[string]int{}

	for _, article := range articles {
		for _, token := range tokenize(article.Title) {
			key := strings.ToLower(token)
			if _, skip := stopwords[key]; skip {
				continue
			}
			if utf8.RuneCountInString(key) < 3 {
				continue
			}
			counts[key]++
			if casings[key] == nil {
				casings[key] = map[string]int{}
			}
			casings[key][token]++
		}
	}

	topics := make([]domain.TrendingTopic, 0, len(counts))
	for key, mentions := range counts {
		topics = append(topics, domain.TrendingTopic{Topic: bestCasing(casings[key]), Mentions: mentions})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Mentions != topics[j].Mentions {
			return topics[i].Mentions > topics[j].Mentions
		}
		return strings.ToLower(topics[i].Topic) < strings.ToLower(topics[j].Topic)
	})

	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

func bestCasing(options map[string]int) string {
	var best string
	bestCount := -1
	for casing, n := range options {
		if n > bestCount || (n == bestCount && casing < best) {
			best = casing
			bestCount = n
		}
	}
	return best
}

func tokenize(title string) []string {
	return strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
