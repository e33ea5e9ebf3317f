package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	aiClientTimeout      = 30 * time.Second
	aiMaxResponseBytes   = 256 * 1024
	aiMaxSummaryFallback = 500
)

const aiSystemPrompt = "You are a financial analyst specializing in private markets, venture capital, and M&A. Provide concise, insightful summaries."

const aiUserPrompt = `Analyze this news article and provide:
1. A concise 2-3 sentence summary focusing on private market implications
2. Extract 3-5 relevant keywords related to private equity, venture capital, M&A, or investments

Article headline: %s
Article content: %s

Respond in JSON format:
{
  "summary": "your summary here",
  "keywords": ["keyword1", "keyword2", "keyword3"]
}`

var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// openAIGateway talks to an OpenAI-compatible chat-completions endpoint.
type openAIGateway struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewAIGateway builds the gateway client, or nil when the endpoint or key
// is missing so callers can tell "not configured" from "call failed".
func NewAIGateway(endpoint, apiKey, model string) AIGateway {
	if endpoint == "" || apiKey == "" {
		return nil
	}
	return &openAIGateway{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: aiClientTimeout},
	}
}

func (g *openAIGateway) Summarize(ctx context.Context, headline, body string) (string, []string, error) {
	if body == "" {
		body = "No content available"
	}

	payload, err := json.Marshal(map[string]any{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "system", "content": aiSystemPrompt},
			{"role": "user", "content": fmt.Sprintf(aiUserPrompt, headline, body)},
		},
		"temperature": 0.3,
		"max_tokens":  500,
	})
	if err != nil {
		return "", nil, fmt.Errorf("marshal ai payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("build ai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("ai gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", nil, fmt.Errorf("ai gateway %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, aiMaxResponseBytes)).Decode(&out); err != nil {
		return "", nil, fmt.Errorf("decode ai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil, fmt.Errorf("ai gateway returned no choices")
	}

	summary, keywords := parseSummaryReply(out.Choices[0].Message.Content)
	return summary, keywords, nil
}

// parseSummaryReply extracts the {summary, keywords} object the prompt
// asks for. Models sometimes wrap it in prose or markdown fences, so the
// raw content (truncated) is the fallback summary.
func parseSummaryReply(content string) (string, []string) {
	if m := reJSONObject.FindString(content); m != "" {
		var parsed struct {
			Summary  string   `json:"summary"`
			Keywords []string `json:"keywords"`
		}
		if err := json.Unmarshal([]byte(m), &parsed); err == nil && parsed.Summary != "" {
			return parsed.Summary, parsed.Keywords
		}
	}

	content = strings.TrimSpace(content)
	if rs := []rune(content); len(rs) > aiMaxSummaryFallback {
		content = string(rs[:aiMaxSummaryFallback])
	}
	return content, nil
}
