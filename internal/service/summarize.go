package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/marketpulse/newsradar/internal/storage"
)

const (
	defaultSummarizeBatch = 5
	summarizeItemDelay    = 200 * time.Millisecond
)

// ErrAINotConfigured is returned when summarization is requested without
// a configured AI gateway.
var ErrAINotConfigured = errors.New("AI gateway not configured")

// AIGateway is the external summarization collaborator. Its semantics are
// outside this system; the contract is headline+body in, summary and
// keywords out.
type AIGateway interface {
	Summarize(ctx context.Context, headline, body string) (summary string, keywords []string, err error)
}

// SummarizeStore exposes pending matching records and accepts the AI
// fields back.
type SummarizeStore interface {
	PendingArticles(ids []string, limit int) ([]storage.PendingArticle, error)
	SaveSummary(id, summary string, keywords []string) error
}

type SummarizeOutcome struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type SummarizeResult struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Processed int                `json:"processed"`
	Failed    int                `json:"failed"`
	Results   []SummarizeOutcome `json:"results"`
}

// Summarizer feeds pending articles through the AI gateway one at a time
// with a short pause, writing summaries back as they land.
type Summarizer struct {
	gateway AIGateway
	store   SummarizeStore
}

func NewSummarizer(gateway AIGateway, store SummarizeStore) *Summarizer {
	return &Summarizer{gateway: gateway, store: store}
}

// Run summarizes a batch of pending articles, or an explicit id subset.
func (s *Summarizer) Run(ctx context.Context, ids []string, batchSize int) (*SummarizeResult, error) {
	if s.gateway == nil {
		return nil, ErrAINotConfigured
	}
	if batchSize <= 0 {
		batchSize = defaultSummarizeBatch
	}

	pending, err := s.store.PendingArticles(ids, batchSize)
	if err != nil {
		return nil, fmt.Errorf("load pending articles: %w", err)
	}
	if len(pending) == 0 {
		return &SummarizeResult{Success: true, Message: "No pending articles to process", Results: []SummarizeOutcome{}}, nil
	}
	log.Printf("[summarize] processing %d articles", len(pending))

	result := &SummarizeResult{Success: true}
	for i, article := range pending {
		outcome := SummarizeOutcome{ID: article.ID}

		summary, keywords, err := s.gateway.Summarize(ctx, article.Headline, article.BodyText)
		if err != nil {
			log.Printf("[summarize] %s: %v", article.ID, err)
			outcome.Error = "summarization failed"
		} else if err := s.store.SaveSummary(article.ID, summary, keywords); err != nil {
			log.Printf("[summarize] save %s: %v", article.ID, err)
			outcome.Error = "failed to save summary"
		} else {
			outcome.Success = true
		}

		if outcome.Success {
			result.Processed++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, outcome)

		if i < len(pending)-1 {
			select {
			case <-time.After(summarizeItemDelay):
			case <-ctx.Done():
				result.Message = fmt.Sprintf("Processed %d/%d articles (interrupted)", result.Processed, len(pending))
				return result, nil
			}
		}
	}

	result.Message = fmt.Sprintf("Processed %d/%d articles", result.Processed, len(pending))
	log.Printf("[summarize] done: %d processed, %d failed", result.Processed, result.Failed)
	return result, nil
}
