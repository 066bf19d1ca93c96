package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newspulse/internal/config"
	"newspulse/internal/ports"
)

const (
	healthTimeout  = 3 * time.Second
	requestTimeout = 30 * time.Second

	// Prompts are bounded by clipping article content before interpolation.
	maxPromptContent = 2000
	maxKeywords      = 5
)

const categorizePrompt = `Classify this news article into exactly one category: Technology, Business, Science, Healthcare, Sports, Politics, Entertainment, or World.

Title: %s
Content: %s

Respond with ONLY the category name, nothing else.`

const summarizePrompt = `Summarize this news article in 2-3 sentences. Respond with ONLY the summary.

Title: %s
Content: %s`

const sentimentPrompt = `Classify the overall sentiment of this article as Positive, Negative, or Neutral.

%s

Respond with ONLY one word.`

const keywordsPrompt = `Extract up to 5 keywords from this article.

%s

Respond with the keywords separated by commas, nothing else.`

// Client implements ports.Enricher against an LM Studio / OpenAI-compatible
// chat completion API.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Enricher = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// IsAvailable probes the models endpoint with a short timeout. The result is
// valid for one batch; callers must not treat it as a long-lived guarantee.
func (c *Client) IsAvailable(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Categorize returns a single category label for the article.
func (c *Client) Categorize(ctx context.Context, title, content string) (string, error) {
	reply, err := c.chat(ctx, fmt.Sprintf(categorizePrompt, title, clip(content)))
	if err != nil {
		return "", err
	}
	return firstLine(reply), nil
}

// Summarize returns a short model-written summary.
func (c *Client) Summarize(ctx context.Context, title, content string) (string, error) {
	reply, err := c.chat(ctx, fmt.Sprintf(summarizePrompt, title, clip(content)))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Sentiment returns one of Positive, Negative, or Neutral. Unrecognized model
// replies normalize to Neutral.
func (c *Client) Sentiment(ctx context.Context, content string) (string, error) {
	reply, err := c.chat(ctx, fmt.Sprintf(sentimentPrompt, clip(content)))
	if err != nil {
		return "", err
	}
	return normalizeSentiment(reply), nil
}

// Keywords returns up to five keywords parsed from a comma-separated reply.
func (c *Client) Keywords(ctx context.Context, content string) ([]string, error) {
	reply, err := c.chat(ctx, fmt.Sprintf(keywordsPrompt, clip(content)))
	if err != nil {
		return nil, err
	}
	return parseKeywords(reply), nil
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	if c.baseURL == "" || c.model == "" {
		return "", fmt.Errorf("llm client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}

	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func clip(content string) string {
	runes := []rune(content)
	if len(runes) > maxPromptContent {
		return string(runes[:maxPromptContent])
	}
	return content
}

func firstLine(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.IndexByte(reply, '\n'); i >= 0 {
		reply = reply[:i]
	}
	return strings.TrimSpace(reply)
}

func normalizeSentiment(reply string) string {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "positive"):
		return "Positive"
	case strings.Contains(lower, "negative"):
		return "Negative"
	default:
		return "Neutral"
	}
}

func parseKeywords(reply string) []string {
	var keywords []string
	for _, part := range strings.Split(firstLine(reply), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keywords = append(keywords, part)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
