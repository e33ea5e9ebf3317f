package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
)

const staticRequestTimeout = 15 * time.Second

// StaticRenderer fetches pages with a plain HTTP crawl and extracts the
// readable body in-process. It stands in for the headless sidecar when no
// render service is configured; JS-only sites will come back thin and the
// feed fallback covers them.
type StaticRenderer struct{}

func NewStaticRenderer() *StaticRenderer {
	return &StaticRenderer{}
}

func (r *StaticRenderer) Name() string {
	return "static"
}

func (r *StaticRenderer) Render(ctx context.Context, pageURL string) (*RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("static render: parse url: %w", err)
	}

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(staticRequestTimeout)

	var body []byte
	c.OnResponse(func(resp *colly.Response) {
		body = resp.Body
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("static render: visit %s: %w", pageURL, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("static render: empty response from %s", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("static render: parse html: %w", err)
	}

	page := &RenderedPage{
		Title:       pageTitle(doc),
		Links:       pageLinks(doc, base),
		PublishedAt: pagePublishedAt(doc),
	}

	article, err := readability.FromReader(bytes.NewReader(body), base)
	if err == nil {
		page.Content = article.TextContent
		if page.Title == "" {
			page.Title = article.Title
		}
	} else {
		// Readability gives up on some layouts; the raw body text is still
		// better than nothing.
		page.Content = strings.TrimSpace(doc.Find("body").Text())
	}

	return page, nil
}

func pageTitle(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func pagePublishedAt(doc *goquery.Document) string {
	selectors := []string{
		`meta[property="article:published_time"]`,
		`meta[name="article:published_time"]`,
		`meta[name="date"]`,
		`meta[itemprop="datePublished"]`,
	}
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func pageLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		links = append(links, abs.String())
	})
	return links
}
