// Package service implements the three externally triggered operations:
// crawl, deep-scrape and summarize. Each validates its input up front,
// degrades per-unit failures to reported partial results and never takes
// the process down.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/marketpulse/newsradar/internal/collector"
	"github.com/marketpulse/newsradar/internal/processor"
	"github.com/marketpulse/newsradar/internal/source"
)

const (
	dateLayout        = "2006-01-02"
	MaxCrawlRangeDays = 90
)

// MinCrawlDate is the earliest accepted crawl start. Sources have no
// useful archive coverage before it.
var MinCrawlDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// ValidationError marks input the caller must fix; handlers map it to a
// 400 rather than a 500.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a request-validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// SourceCrawler is what the crawl run needs from the collector.
type SourceCrawler interface {
	Crawl(ctx context.Context, src source.Source) ([]collector.Candidate, error)
	RendererName() string
}

// CrawlStore is the persistence surface of the crawl run.
type CrawlStore interface {
	UpsertArticles(cands []collector.Candidate) (int, error)
	UpsertBacklog(cands []collector.Candidate) (int, error)
}

// InsertCounts reports per-partition persistence results. Errors carries
// one message per failed partition; a failure on one never blocks the
// other.
type InsertCounts struct {
	Matching    int      `json:"matching"`
	NonMatching int      `json:"nonMatching"`
	Errors      []string `json:"errors"`
}

// CrawlStats is the funnel: everything fetched, in the window, and how
// the window split.
type CrawlStats struct {
	Total           int `json:"total"`
	WithinDateRange int `json:"withinDateRange"`
	Matching        int `json:"matching"`
	NonMatching     int `json:"nonMatching"`
}

type CrawlResult struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Inserted InsertCounts `json:"inserted"`
	Stats    CrawlStats   `json:"stats"`
}

// Crawler runs the full ingest: fetch every source concurrently, filter
// by date window, classify, and route both partitions to the store.
type Crawler struct {
	sources   []source.Source
	collector SourceCrawler
	store     CrawlStore
}

func NewCrawler(col SourceCrawler, store CrawlStore) *Crawler {
	return &Crawler{
		sources:   source.All(),
		collector: col,
		store:     store,
	}
}

// ValidateRange parses and checks a crawl window. Returned times are UTC
// calendar days.
func ValidateRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, validationf("startDate and endDate are required")
	}
	start, err := time.ParseInLocation(dateLayout, startDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("invalid date format, use YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(dateLayout, endDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("invalid date format, use YYYY-MM-DD")
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, validationf("startDate must be before endDate")
	}
	if end.Sub(start) > MaxCrawlRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, validationf("date range cannot exceed %d days", MaxCrawlRangeDays)
	}
	if start.Before(MinCrawlDate) {
		return time.Time{}, time.Time{}, validationf("startDate cannot be before %s", MinCrawlDate.Format(dateLayout))
	}
	return start, end, nil
}

// Run executes one crawl over [startDate, endDate]. The error is non-nil
// only for validation failures; everything downstream degrades into the
// result's counts and error list.
func (c *Crawler) Run(ctx context.Context, startDate, endDate string) (*CrawlResult, error) {
	start, end, err := ValidateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	log.Printf("[crawl] starting, window %s..%s, %d sources", startDate, endDate, len(c.sources))

	// All sources fetch concurrently and all settle; a slow or broken
	// source costs only its own articles.
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		all []collector.Candidate
	)
	for _, src := range c.sources {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()
			cands, err := c.collector.Crawl(ctx, src)
			if err != nil {
				log.Printf("[crawl] %v", err)
				return
			}
			mu.Lock()
			all = append(all, cands...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	inRange := processor.FilterByRange(all, start, end)
	matching, nonMatching := processor.Partition(inRange)

	result := &CrawlResult{
		Success: true,
		Stats: CrawlStats{
			Total:           len(all),
			WithinDateRange: len(inRange),
			Matching:        len(matching),
			NonMatching:     len(nonMatching),
		},
	}
	result.Inserted.Errors = []string{}

	if len(matching) > 0 {
		n, err := c.store.UpsertArticles(matching)
		result.Inserted.Matching = n
		if err != nil {
			log.Printf("[crawl] insert matching: %v", err)
			result.Inserted.Errors = append(result.Inserted.Errors, "failed to insert matching articles")
		}
	}
	if len(nonMatching) > 0 {
		n, err := c.store.UpsertBacklog(nonMatching)
		result.Inserted.NonMatching = n
		if err != nil {
			log.Printf("[crawl] insert backlog: %v", err)
			result.Inserted.Errors = append(result.Inserted.Errors, "failed to insert backlog references")
		}
	}

	result.Message = fmt.Sprintf("Crawled %d articles (render: %s)", len(all), c.renderDesc())
	log.Printf("[crawl] done: total=%d inRange=%d matching=%d nonMatching=%d errors=%d",
		len(all), len(inRange), len(matching), len(nonMatching), len(result.Inserted.Errors))
	return result, nil
}

func (c *Crawler) renderDesc() string {
	if name := c.collector.RendererName(); name != "" {
		return name
	}
	return "unavailable, feeds only"
}
