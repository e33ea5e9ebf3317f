package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	renderMaxChars         = 8000
	renderMaxResponseBytes = 1 << 20 // 1MB
	renderClientTimeout    = 30 * time.Second
)

// RenderRequest is the wire format of the render sidecar's POST /render.
type RenderRequest struct {
	URL      string `json:"url"`
	MaxChars int    `json:"maxChars"`
}

// RenderResponse mirrors the sidecar's reply.
type RenderResponse struct {
	OK          bool     `json:"ok"`
	Title       string   `json:"title,omitempty"`
	Text        string   `json:"text,omitempty"`
	Links       []string `json:"links,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ServiceRenderer renders pages through the headless-browser sidecar
// (cmd/render-service).
type ServiceRenderer struct {
	baseURL string
	client  *http.Client
}

func NewServiceRenderer(baseURL string) *ServiceRenderer {
	return &ServiceRenderer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: renderClientTimeout},
	}
}

func (r *ServiceRenderer) Name() string {
	return "render-service"
}

func (r *ServiceRenderer) Render(ctx context.Context, pageURL string) (*RenderedPage, error) {
	payload, err := json.Marshal(RenderRequest{URL: pageURL, MaxChars: renderMaxChars})
	if err != nil {
		return nil, fmt.Errorf("render: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("render: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render: unexpected status %d", resp.StatusCode)
	}

	var out RenderResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, renderMaxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("render: decode response: %w", err)
	}
	if !out.OK {
		return nil, fmt.Errorf("render: %s", out.Error)
	}

	return &RenderedPage{
		Title:       out.Title,
		Content:     out.Text,
		Links:       out.Links,
		PublishedAt: out.PublishedAt,
	}, nil
}
