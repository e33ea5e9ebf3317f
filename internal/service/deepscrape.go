package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/marketpulse/newsradar/internal/batch"
	"github.com/marketpulse/newsradar/internal/collector"
	"github.com/marketpulse/newsradar/internal/storage"
)

const (
	maxDeepScrapeIDs = 10
	deepChunkSize    = 3
	deepChunkDelay   = 500 * time.Millisecond
)

// ErrRenderUnavailable is returned when deep scraping is requested but no
// render capability is configured. There is no feed fallback here: a feed
// cannot serve an arbitrary stored URL.
var ErrRenderUnavailable = errors.New("render capability not configured")

// DeepScrapeStore is the persistence surface of the deep-scrape path. It
// touches body_text only.
type DeepScrapeStore interface {
	ArticleRefs(ids []string) ([]storage.ArticleRef, error)
	UpdateBodyText(id, body string) error
}

// Outcome of one requested id; outcomes are independent of each other.
type DeepScrapeOutcome struct {
	ID       string  `json:"id"`
	BodyText *string `json:"body_text"`
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
}

type DeepScrapeResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Results []DeepScrapeOutcome `json:"results"`
	Stats   struct {
		Success int `json:"success"`
		Failed  int `json:"failed"`
	} `json:"stats"`
}

// DeepScraper re-fetches stored articles to replace truncated bodies with
// longer extracted ones.
type DeepScraper struct {
	renderer collector.Renderer
	store    DeepScrapeStore
}

func NewDeepScraper(renderer collector.Renderer, store DeepScrapeStore) *DeepScraper {
	return &DeepScraper{renderer: renderer, store: store}
}

// Run deep-scrapes up to ten articles in throttled chunks. Validation
// happens before any fetch; after that every failure is isolated to its
// own outcome record.
func (d *DeepScraper) Run(ctx context.Context, ids []string) (*DeepScrapeResult, error) {
	if len(ids) == 0 {
		return nil, validationf("articleIds are required")
	}
	if len(ids) > maxDeepScrapeIDs {
		return nil, validationf("maximum %d articles can be deep scraped at once", maxDeepScrapeIDs)
	}
	if d.renderer == nil {
		return nil, ErrRenderUnavailable
	}

	refs, err := d.store.ArticleRefs(ids)
	if err != nil {
		return nil, fmt.Errorf("resolve article urls: %w", err)
	}
	log.Printf("[deepscrape] processing %d of %d requested articles", len(refs), len(ids))

	outcomes := batch.Run(ctx, refs, deepChunkSize, deepChunkDelay, func(ctx context.Context, ref storage.ArticleRef) DeepScrapeOutcome {
		page, err := d.renderer.Render(ctx, ref.URL)
		if err != nil {
			log.Printf("[deepscrape] %s: %v", ref.URL, err)
			return DeepScrapeOutcome{ID: ref.ID, Error: "failed to scrape article"}
		}
		body := collector.DeepBodyFromPage(page)
		if body == "" {
			return DeepScrapeOutcome{ID: ref.ID, Error: "failed to scrape article"}
		}
		if err := d.store.UpdateBodyText(ref.ID, body); err != nil {
			log.Printf("[deepscrape] update %s: %v", ref.ID, err)
			return DeepScrapeOutcome{ID: ref.ID, Error: "failed to update store"}
		}
		return DeepScrapeOutcome{ID: ref.ID, BodyText: &body, Success: true}
	})

	result := &DeepScrapeResult{Success: true, Results: outcomes}
	for _, o := range outcomes {
		if o.Success {
			result.Stats.Success++
		} else {
			result.Stats.Failed++
		}
	}

	result.Message = fmt.Sprintf("Deep scraped %d articles successfully", result.Stats.Success)
	if result.Stats.Failed > 0 {
		result.Message += fmt.Sprintf(", %d failed", result.Stats.Failed)
	}
	log.Printf("[deepscrape] done: %d success, %d failed", result.Stats.Success, result.Stats.Failed)
	return result, nil
}
