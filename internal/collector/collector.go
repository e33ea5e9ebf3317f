package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/marketpulse/newsradar/internal/batch"
	"github.com/marketpulse/newsradar/internal/source"
)

const (
	maxPrimaryLinks = 15
	maxFeedItems    = 20

	// Per-link article fetches hit the same site back to back, so they run
	// in small chunks with a pause in between.
	linkChunkSize  = 3
	linkChunkDelay = 250 * time.Millisecond

	userAgent = "Mozilla/5.0 (compatible; NewsRadarBot/1.0)"
)

// Candidate is an unfiltered article record produced by a fetch, before
// classification. A nil PublishedAt means the date is unknown.
type Candidate struct {
	URL         string
	SourceName  string
	PublishedAt *time.Time
	Headline    string
	BodyText    string
}

// RenderedPage is what a Renderer extracts from one URL.
type RenderedPage struct {
	Title       string
	Content     string
	Links       []string
	PublishedAt string
}

// Renderer turns a URL into readable content plus discovered links. It is
// the primary scrape capability; implementations are the remote chromedp
// sidecar client and the in-process static fetcher.
type Renderer interface {
	Name() string
	Render(ctx context.Context, pageURL string) (*RenderedPage, error)
}

// Collector fetches candidate articles for one source at a time, trying
// the render/scrape strategy first and falling back to the syndication
// feed when it yields nothing.
type Collector struct {
	renderer  Renderer
	parseFeed func(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

// New builds a Collector. renderer may be nil, which disables the primary
// strategy and makes every source feed-only.
func New(renderer Renderer) *Collector {
	return &Collector{
		renderer: renderer,
		parseFeed: func(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
			fp := gofeed.NewParser()
			fp.UserAgent = userAgent
			return fp.ParseURLWithContext(feedURL, ctx)
		},
	}
}

// RendererName reports the active primary capability, "" when feed-only.
func (c *Collector) RendererName() string {
	if c.renderer == nil {
		return ""
	}
	return c.renderer.Name()
}

// Crawl runs the strategy chain for one source. The returned error is
// non-nil only when every strategy failed outright; an empty result with a
// nil error means the source simply had nothing to offer.
func (c *Collector) Crawl(ctx context.Context, src source.Source) ([]Candidate, error) {
	primary, primaryErr := c.crawlPrimary(ctx, src)
	if len(primary) > 0 {
		return primary, nil
	}
	if c.renderer != nil {
		log.Printf("[crawl] %s: primary path yielded nothing, trying feed", src.Name)
	}

	fallback, fallbackErr := c.crawlFeed(ctx, src)
	if len(fallback) > 0 {
		return fallback, nil
	}

	if primaryErr != nil && fallbackErr != nil {
		return nil, fmt.Errorf("%s: primary: %v; feed: %v", src.Name, primaryErr, fallbackErr)
	}
	if primaryErr != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, primaryErr)
	}
	if fallbackErr != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, fallbackErr)
	}
	return nil, nil
}

// crawlPrimary renders the listing page, filters discovered links through
// the source's acceptance patterns and fetches each surviving link for a
// proper headline/body/date. Individual link failures only cost that link.
func (c *Collector) crawlPrimary(ctx context.Context, src source.Source) ([]Candidate, error) {
	if c.renderer == nil {
		return nil, nil
	}

	page, err := c.renderer.Render(ctx, src.URL)
	if err != nil {
		log.Printf("[render] %s: %v", src.Name, err)
		return nil, err
	}

	links := src.FilterLinks(page.Links)
	if len(links) > maxPrimaryLinks {
		links = links[:maxPrimaryLinks]
	}
	if len(links) == 0 {
		return nil, nil
	}

	results := batch.Run(ctx, links, linkChunkSize, linkChunkDelay, func(ctx context.Context, link string) *Candidate {
		article, err := c.renderer.Render(ctx, link)
		if err != nil {
			log.Printf("[render] %s: %s: %v", src.Name, link, err)
			return nil
		}
		cand, ok := CandidateFromPage(src.Name, link, article, maxListBody)
		if !ok {
			return nil
		}
		return &cand
	})

	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	log.Printf("[render] %s: %d candidates from %d links", src.Name, len(out), len(links))
	return out, nil
}

// crawlFeed parses the source's syndication feed. Feed items without a
// parsable date keep a nil PublishedAt; the date filter treats them as
// in range.
func (c *Collector) crawlFeed(ctx context.Context, src source.Source) ([]Candidate, error) {
	if src.FeedURL == "" {
		log.Printf("[rss] %s: no feed configured", src.Name)
		return nil, nil
	}

	feed, err := c.parseFeed(ctx, src.FeedURL)
	if err != nil {
		log.Printf("[rss] %s: %v", src.Name, err)
		return nil, err
	}

	items := feed.Items
	if len(items) > maxFeedItems {
		items = items[:maxFeedItems]
	}

	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		cand, ok := CandidateFromFeedItem(src.Name, item)
		if !ok {
			continue
		}
		out = append(out, cand)
	}
	log.Printf("[rss] %s: %d candidates from %d items", src.Name, len(out), len(items))
	return out, nil
}
