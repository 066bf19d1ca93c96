package domain

// SampleArticles returns the fixed fallback batch substituted when no upstream
// source yields articles. The pipeline enriches these like any fetched batch.
func SampleArticles() []RawArticle {
	return []RawArticle{
		{
			Title:   "AI Breakthrough: Quantum Computing Advances",
			Content: "Scientists achieve new milestone in quantum AI processing with revolutionary algorithms.",
			Source:  "Tech News",
			URL:     "#",
		},
		{
			Title:   "Machine Learning Revolutionizes Healthcare",
			Content: "New AI models predict diseases with 99% accuracy, transforming medical diagnosis.",
			Source:  "Medical Journal",
			URL:     "#",
		},
		{
			Title:   "Autonomous Vehicles Hit the Streets",
			Content: "Self-driving cars begin commercial deployment in major cities worldwide.",
			Source:  "Auto News",
			URL:     "#",
		},
	}
}
